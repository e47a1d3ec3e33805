package redditool

import (
	"time"

	"github.com/redditool/redditool/pkg/types"
)

// DeletedAuthor is the sentinel used when a post or comment author has been
// removed.
const DeletedAuthor = "[deleted]"

// PostRecord is the fixed shape a wire Post is mapped into at the boundary.
// Field names follow the JSON the utilities emit.
type PostRecord struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	CreatedDate string  `json:"created_date"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	IsSelf      bool    `json:"is_self"`
	PostType    string  `json:"post_type"`
	Over18      bool    `json:"over_18"`
	Spoiler     bool    `json:"spoiler"`
	SelfText    string  `json:"selftext,omitempty"`
	Subreddit   string  `json:"subreddit,omitempty"`
}

// CommentRecord is one node of a comment tree. Depth is 0 for top-level
// comments and increases by one per reply level.
type CommentRecord struct {
	ID         string           `json:"id"`
	Author     string           `json:"author"`
	Score      int              `json:"score"`
	Body       string           `json:"body"`
	CreatedUTC float64          `json:"created_utc"`
	Depth      int              `json:"depth"`
	Replies    []*CommentRecord `json:"replies"`
}

// ThreadRecord is a post together with its bounded comment tree, in the
// shape the fetch-comments utility emits.
type ThreadRecord struct {
	PostID           string           `json:"post_id"`
	PostTitle        string           `json:"post_title"`
	PostContent      *string          `json:"post_content"`
	PostType         string           `json:"post_type"`
	PostScore        int              `json:"post_score"`
	PostURL          string           `json:"post_url"`
	PostAuthor       string           `json:"post_author"`
	PostPermalink    string           `json:"post_permalink"`
	PostSubreddit    string           `json:"post_subreddit"`
	PostCreatedUTC   float64          `json:"post_created_utc"`
	TotalComments    int              `json:"total_comments"`
	MaxDepth         *int             `json:"max_depth"`
	MaxCommentsLevel *int             `json:"max_comments_per_level"`
	Comments         []*CommentRecord `json:"comments"`
}

// SubredditRecord is the fixed shape a wire SubredditData is mapped into.
type SubredditRecord struct {
	Name        string  `json:"name"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Subscribers int64   `json:"subscribers"`
	ActiveUsers int     `json:"active_users"`
	CreatedUTC  float64 `json:"created_utc"`
	CreatedDate string  `json:"created_date"`
	Over18      bool    `json:"over_18"`
	URL         string  `json:"url"`
	Quarantined bool    `json:"quarantined"`
}

// NewPostRecord maps a wire Post into a PostRecord.
func NewPostRecord(post *types.Post) *PostRecord {
	record := &PostRecord{
		ID:          post.ID,
		Title:       post.Title,
		Author:      authorOrDeleted(post.Author),
		Score:       post.Score,
		NumComments: post.NumComments,
		CreatedUTC:  post.CreatedUTC,
		CreatedDate: formatDate(post.CreatedUTC),
		URL:         post.URL,
		Permalink:   "https://reddit.com" + post.Permalink,
		IsSelf:      post.IsSelf,
		PostType:    postType(post.IsSelf),
		Over18:      post.Over18,
		Spoiler:     post.Spoiler,
		Subreddit:   post.Subreddit,
	}
	if post.IsSelf {
		record.SelfText = post.SelfText
	}
	return record
}

// NewSubredditRecord maps a wire SubredditData into a SubredditRecord.
func NewSubredditRecord(sub *types.SubredditData) *SubredditRecord {
	createdDate := "Unknown"
	if sub.CreatedUTC > 0 {
		createdDate = formatDate(sub.CreatedUTC)
	}
	return &SubredditRecord{
		Name:        sub.DisplayName,
		Title:       sub.Title,
		Description: sub.PublicDescription,
		Subscribers: sub.Subscribers,
		ActiveUsers: sub.ActiveUserCount,
		CreatedUTC:  sub.CreatedUTC,
		CreatedDate: createdDate,
		Over18:      sub.Over18,
		URL:         "https://reddit.com/r/" + sub.DisplayName,
		Quarantined: sub.Quarantine,
	}
}

// newCommentRecord maps a wire Comment into a CommentRecord at the given
// depth, without descending into replies; the tree builder owns recursion.
func newCommentRecord(comment *types.Comment, depth int) *CommentRecord {
	return &CommentRecord{
		ID:         comment.ID,
		Author:     authorOrDeleted(comment.Author),
		Score:      comment.Score,
		Body:       comment.Body,
		CreatedUTC: comment.CreatedUTC,
		Depth:      depth,
		Replies:    []*CommentRecord{},
	}
}

// CountComments returns the total number of records in a comment forest,
// including nested replies.
func CountComments(comments []*CommentRecord) int {
	total := len(comments)
	for _, comment := range comments {
		total += CountComments(comment.Replies)
	}
	return total
}

func authorOrDeleted(author string) string {
	if author == "" {
		return DeletedAuthor
	}
	return author
}

func postType(isSelf bool) string {
	if isSelf {
		return "text"
	}
	return "link"
}

func formatDate(createdUTC float64) string {
	return time.Unix(int64(createdUTC), 0).UTC().Format("2006-01-02")
}
