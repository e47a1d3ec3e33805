package redditool

import (
	"context"
	"io"
	"log/slog"

	"github.com/redditool/redditool/pkg/types"
)

// MoreResolver resolves a comment pagination marker into the additional
// sibling comments it stands for. *Client satisfies it; tests substitute a
// fake.
type MoreResolver interface {
	GetMoreComments(ctx context.Context, request *types.MoreCommentsRequest) ([]*types.Comment, error)
}

// TreeOptions bounds a comment tree traversal.
type TreeOptions struct {
	// MaxDepth limits how deep replies are expanded. Negative means
	// unlimited; 0 means top-level comments only.
	MaxDepth int

	// MaxPerLevel caps how many sibling records are emitted at each tree
	// level independently. Zero or negative means unlimited.
	MaxPerLevel int

	// LinkID is the post fullname (or bare ID) markers are resolved
	// against.
	LinkID string

	// Logger receives warnings for markers that fail to resolve. Optional.
	Logger *slog.Logger
}

// Unlimited marks MaxDepth or MaxPerLevel as unbounded.
const Unlimited = -1

func (o TreeOptions) depthLimited() bool { return o.MaxDepth >= 0 }
func (o TreeOptions) levelCapped() bool  { return o.MaxPerLevel > 0 }

func (o TreeOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// BuildThread maps a comments response into a ThreadRecord whose comment
// tree honors the traversal bounds in opts. Pagination markers are resolved
// through resolver; a resolution failure is logged as a warning and the
// marker is skipped rather than aborting the fetch.
func BuildThread(ctx context.Context, resolver MoreResolver, resp *types.CommentsResponse, opts TreeOptions) *ThreadRecord {
	record := &ThreadRecord{
		Comments: []*CommentRecord{},
	}

	if resp.Post != nil {
		post := resp.Post
		record.PostID = post.ID
		record.PostTitle = post.Title
		record.PostType = postType(post.IsSelf)
		record.PostScore = post.Score
		record.PostURL = post.URL
		record.PostAuthor = authorOrDeleted(post.Author)
		record.PostPermalink = "https://reddit.com" + post.Permalink
		record.PostSubreddit = post.Subreddit
		record.PostCreatedUTC = post.CreatedUTC
		record.TotalComments = post.NumComments
		if post.IsSelf {
			content := post.SelfText
			record.PostContent = &content
		}
		if opts.LinkID == "" {
			opts.LinkID = post.ID
		}
	}

	if opts.depthLimited() {
		maxDepth := opts.MaxDepth
		record.MaxDepth = &maxDepth
	}
	if opts.levelCapped() {
		maxPerLevel := opts.MaxPerLevel
		record.MaxCommentsLevel = &maxPerLevel
	}

	record.Comments = BuildCommentForest(ctx, resolver, resp.Comments, resp.MoreIDs, opts)
	return record
}

// BuildCommentForest walks a starting collection of reply handles (ordinary
// comments plus the IDs of a pagination marker) and produces an ordered
// record forest rooted at depth 0.
func BuildCommentForest(ctx context.Context, resolver MoreResolver, comments []*types.Comment, moreIDs []string, opts TreeOptions) []*CommentRecord {
	return buildLevel(ctx, resolver, comments, moreIDs, 0, opts)
}

// buildLevel emits sibling records at one tree level. The per-level cap
// bounds each level independently; the marker is resolved only while the
// cap has room, and resolved comments count against the same level.
func buildLevel(ctx context.Context, resolver MoreResolver, siblings []*types.Comment, moreIDs []string, depth int, opts TreeOptions) []*CommentRecord {
	records := make([]*CommentRecord, 0, len(siblings))

	capReached := func() bool {
		return opts.levelCapped() && len(records) >= opts.MaxPerLevel
	}

	emit := func(comment *types.Comment) {
		record := newCommentRecord(comment, depth)
		if !opts.depthLimited() || depth < opts.MaxDepth {
			record.Replies = buildLevel(ctx, resolver, comment.Replies, comment.MoreChildrenIDs, depth+1, opts)
		}
		records = append(records, record)
	}

	for _, comment := range siblings {
		if capReached() {
			break
		}
		emit(comment)
	}

	// The marker is resolved even when the depth limit stops reply
	// expansion: resolved comments are siblings at this level, not
	// descendants.
	if !capReached() && len(moreIDs) > 0 && resolver != nil {
		more, err := resolver.GetMoreComments(ctx, &types.MoreCommentsRequest{
			LinkID:     opts.LinkID,
			CommentIDs: moreIDs,
		})
		if err != nil {
			opts.logger().Warn("could not expand more comments", "link_id", opts.LinkID, "depth", depth, "err", err)
		} else {
			for _, comment := range more {
				if capReached() {
					break
				}
				emit(comment)
			}
		}
	}

	return records
}
