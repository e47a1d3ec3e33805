package redditool

import (
	"encoding/json"
	"fmt"
	"strings"
)

const descriptionTruncateLen = 150

// PostListing is the full result of a top-posts run, in the shape the
// utility emits as JSON.
type PostListing struct {
	Subreddit    string        `json:"subreddit"`
	TimeFilter   string        `json:"time_filter"`
	Limit        int           `json:"limit"`
	TitleFilter  string        `json:"title_filter,omitempty"`
	TotalFetched int           `json:"total_fetched"`
	TotalMatched int           `json:"total_matched"`
	Posts        []*PostRecord `json:"posts"`
}

// SubredditListing is the full result of a subreddit discovery run.
type SubredditListing struct {
	Method       string             `json:"method"`
	Query        string             `json:"query,omitempty"`
	TotalFetched int                `json:"total_fetched"`
	TotalMatched int                `json:"total_matched"`
	Subreddits   []*SubredditRecord `json:"subreddits"`
}

// FormatJSON renders any output value as two-space-indented JSON.
func FormatJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return string(data), nil
}

// FormatThreadText renders a post and its comment tree as indented text.
func FormatThreadText(thread *ThreadRecord) string {
	var out []string

	out = append(out, fmt.Sprintf("Post: %s", thread.PostTitle))
	out = append(out, fmt.Sprintf("Source: [%s](%s) by u/%s (%d upvotes)",
		thread.PostTitle, thread.PostPermalink, thread.PostAuthor, thread.PostScore))
	out = append(out, fmt.Sprintf("Subreddit: r/%s | Type: %s | Total Comments: %d",
		thread.PostSubreddit, thread.PostType, thread.TotalComments))
	out = append(out, fmt.Sprintf("Original URL: %s", thread.PostURL))

	if thread.MaxDepth != nil {
		out = append(out, fmt.Sprintf("Max Depth: %d", *thread.MaxDepth))
	}
	if thread.MaxCommentsLevel != nil {
		out = append(out, fmt.Sprintf("Max Comments per Level: %d", *thread.MaxCommentsLevel))
	}

	if thread.PostContent != nil && *thread.PostContent != "" {
		out = append(out, "", "Post Content:", strings.Repeat("-", 20), *thread.PostContent)
	}

	out = append(out, "")

	if len(thread.Comments) == 0 {
		out = append(out, "No comments found.")
	} else {
		total := CountComments(thread.Comments)
		out = append(out, fmt.Sprintf("Comments (%d top-level, %d total fetched):", len(thread.Comments), total))
		out = append(out, strings.Repeat("=", 50))
		for i, comment := range thread.Comments {
			out = append(out, formatCommentTree(comment, i+1)...)
		}
	}

	return strings.Join(out, "\n")
}

// formatCommentTree renders one comment and its replies recursively.
// commentNum labels top-level comments only; replies get a generic header.
func formatCommentTree(comment *CommentRecord, commentNum int) []string {
	var out []string

	indent := strings.Repeat("  ", comment.Depth)
	var header string
	if comment.Depth == 0 && commentNum > 0 {
		header = fmt.Sprintf("\n%sComment %d by %s (Score: %d, Depth: %d):",
			indent, commentNum, comment.Author, comment.Score, comment.Depth)
	} else {
		header = fmt.Sprintf("\n%sReply by %s (Score: %d, Depth: %d):",
			indent, comment.Author, comment.Score, comment.Depth)
	}

	out = append(out, header)
	out = append(out, indent+strings.Repeat("-", 40))

	for _, line := range strings.Split(comment.Body, "\n") {
		out = append(out, indent+line)
	}

	for _, reply := range comment.Replies {
		out = append(out, formatCommentTree(reply, 0)...)
	}

	return out
}

// FormatThreadsText renders multiple threads with separator banners.
func FormatThreadsText(threads []*ThreadRecord) string {
	var out []string
	for i, thread := range threads {
		if i > 0 {
			out = append(out, "\n"+strings.Repeat("=", 80))
			out = append(out, fmt.Sprintf("POST %d OF %d", i+1, len(threads)))
			out = append(out, strings.Repeat("=", 80)+"\n")
		}
		out = append(out, FormatThreadText(thread))
	}
	return strings.Join(out, "\n")
}

// postFlags renders the bracketed flag suffix for a post line.
func postFlags(record *PostRecord) string {
	var flags []string
	if record.Over18 {
		flags = append(flags, "NSFW")
	}
	if record.Spoiler {
		flags = append(flags, "SPOILER")
	}
	if len(flags) == 0 {
		return ""
	}
	return fmt.Sprintf(" [%s]", strings.Join(flags, ", "))
}

// FormatPostStreamLine renders one post in the streaming format emitted as
// results arrive.
func FormatPostStreamLine(record *PostRecord, count, limit int) string {
	var out []string
	out = append(out, fmt.Sprintf("[%d/%d] %s | Score: %d | Comments: %d | u/%s",
		count, limit, record.CreatedDate, record.Score, record.NumComments, record.Author))
	out = append(out, fmt.Sprintf("         [%s] %s%s (%s)",
		record.ID, record.Title, postFlags(record), record.PostType))
	// Self posts whose url is just the permalink add no information.
	if record.URL != "" && !(record.IsSelf && record.URL == record.Permalink) {
		out = append(out, "         "+record.URL)
	}
	out = append(out, "")
	return strings.Join(out, "\n")
}

// FormatPostListingText renders a complete top-posts listing.
func FormatPostListingText(listing *PostListing) string {
	var out []string

	out = append(out, fmt.Sprintf("Subreddit: r/%s (Top %d posts from %s)",
		listing.Subreddit, listing.Limit, listing.TimeFilter))
	if listing.TitleFilter != "" {
		out = append(out, fmt.Sprintf("Title filter: %q (showing %d of %d posts)",
			listing.TitleFilter, len(listing.Posts), listing.TotalFetched))
	} else {
		out = append(out, fmt.Sprintf("Total posts: %d", len(listing.Posts)))
	}
	out = append(out, "")

	if len(listing.Posts) == 0 {
		out = append(out, "No posts found matching criteria.")
	} else {
		for i, post := range listing.Posts {
			out = append(out, fmt.Sprintf("%d. %s | Score: %d | Comments: %d | u/%s",
				i+1, post.CreatedDate, post.Score, post.NumComments, post.Author))
			out = append(out, fmt.Sprintf("   [%s] %s%s", post.ID, post.Title, postFlags(post)))
			out = append(out, fmt.Sprintf("   Type: %s | %s", post.PostType, post.URL))
			out = append(out, "")
		}
	}

	return strings.Join(out, "\n")
}

// FormatSubredditListingText renders a subreddit discovery listing.
func FormatSubredditListingText(listing *SubredditListing) string {
	var out []string

	switch listing.Method {
	case "search":
		out = append(out, fmt.Sprintf("Subreddit Search Results for: %q", listing.Query))
	case "popular":
		out = append(out, "Popular Subreddits")
	case "new":
		out = append(out, "Newly Created Subreddits")
	case "recommendations":
		out = append(out, "Recommended Subreddits")
	}

	out = append(out, fmt.Sprintf("Found %d subreddits", len(listing.Subreddits)))
	if listing.TotalFetched != len(listing.Subreddits) {
		out = append(out, fmt.Sprintf("(showing %d of %d after filtering)",
			len(listing.Subreddits), listing.TotalFetched))
	}
	out = append(out, "")

	if len(listing.Subreddits) == 0 {
		out = append(out, "No subreddits found matching criteria.")
		return strings.Join(out, "\n")
	}

	for i, sub := range listing.Subreddits {
		var flags []string
		if sub.Over18 {
			flags = append(flags, "NSFW")
		}
		if sub.Quarantined {
			flags = append(flags, "QUARANTINED")
		}
		flagStr := ""
		if len(flags) > 0 {
			flagStr = fmt.Sprintf(" [%s]", strings.Join(flags, ", "))
		}

		activeStr := ""
		if sub.ActiveUsers > 0 {
			activeStr = fmt.Sprintf(" | Active: %s", FormatCount(int64(sub.ActiveUsers)))
		}

		out = append(out, fmt.Sprintf("%d. r/%s%s", i+1, sub.Name, flagStr))
		out = append(out, fmt.Sprintf("   Subscribers: %s%s | Created: %s",
			FormatCount(sub.Subscribers), activeStr, sub.CreatedDate))

		if sub.Title != "" {
			out = append(out, "   Title: "+sub.Title)
		}
		if sub.Description != "" {
			out = append(out, "   Description: "+truncateDescription(sub.Description))
		}
		out = append(out, "   URL: "+sub.URL)
		out = append(out, "")
	}

	return strings.Join(out, "\n")
}

func truncateDescription(desc string) string {
	desc = strings.TrimSpace(strings.ReplaceAll(desc, "\n", " "))
	runes := []rune(desc)
	if len(runes) > descriptionTruncateLen {
		return string(runes[:descriptionTruncateLen-3]) + "..."
	}
	return desc
}
