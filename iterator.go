package redditool

import (
	"context"
	"fmt"

	"github.com/redditool/redditool/pkg/types"
)

const iteratorPageSize = 100

// ErrExhausted is returned by Next when the listing has no more items.
var ErrExhausted = fmt.Errorf("no more items available")

// PostIterator pages through a post listing one item at a time, fetching
// batches behind the scenes. It stops early when its context is cancelled,
// so partially collected results survive an interrupt.
type PostIterator struct {
	listFunc  func(context.Context, *types.Pagination) (*types.PostsResponse, error)
	ctx       context.Context
	buffer    []*types.Post
	bufferIdx int
	after     string
	pageSize  int
	hasMore   bool
	err       error
}

// NewTopIterator returns an iterator over a subreddit's top posts within
// the given time window.
func (c *Client) NewTopIterator(ctx context.Context, subreddit string, timeFilter types.TimeFilter) *PostIterator {
	return &PostIterator{
		listFunc: func(ctx context.Context, pagination *types.Pagination) (*types.PostsResponse, error) {
			return c.GetTop(ctx, &types.TopPostsRequest{
				Subreddit:  subreddit,
				TimeFilter: timeFilter,
				Pagination: *pagination,
			})
		},
		ctx:      ctx,
		pageSize: iteratorPageSize,
		hasMore:  true,
	}
}

// NewHotIterator returns an iterator over a subreddit's hot posts.
func (c *Client) NewHotIterator(ctx context.Context, subreddit string) *PostIterator {
	return c.newSortIterator(ctx, subreddit, c.GetHot)
}

// NewNewIterator returns an iterator over a subreddit's newest posts.
func (c *Client) NewNewIterator(ctx context.Context, subreddit string) *PostIterator {
	return c.newSortIterator(ctx, subreddit, c.GetNew)
}

func (c *Client) newSortIterator(ctx context.Context, subreddit string, list func(context.Context, *types.PostsRequest) (*types.PostsResponse, error)) *PostIterator {
	return &PostIterator{
		listFunc: func(ctx context.Context, pagination *types.Pagination) (*types.PostsResponse, error) {
			return list(ctx, &types.PostsRequest{Subreddit: subreddit, Pagination: *pagination})
		},
		ctx:      ctx,
		pageSize: iteratorPageSize,
		hasMore:  true,
	}
}

// WithPageSize sets the batch size per request, clamped to Reddit's
// per-request maximum.
func (it *PostIterator) WithPageSize(n int) *PostIterator {
	if n > iteratorPageSize {
		n = iteratorPageSize
	}
	if n < 1 {
		n = 1
	}
	it.pageSize = n
	return it
}

// HasNext reports whether the iteration can yield another post.
func (it *PostIterator) HasNext() bool {
	if it.err != nil {
		return false
	}
	return it.bufferIdx < len(it.buffer) || it.hasMore
}

// Next returns the next post. It returns ErrExhausted when the listing is
// finished and the context's error when cancelled mid-listing.
func (it *PostIterator) Next() (*types.Post, error) {
	if it.err != nil {
		return nil, it.err
	}
	if err := it.ctx.Err(); err != nil {
		it.err = err
		return nil, err
	}

	if it.bufferIdx >= len(it.buffer) {
		if !it.hasMore {
			return nil, ErrExhausted
		}

		resp, err := it.listFunc(it.ctx, &types.Pagination{Limit: it.pageSize, After: it.after})
		if err != nil {
			it.err = err
			return nil, err
		}

		it.buffer = resp.Posts
		it.bufferIdx = 0
		it.after = resp.AfterFullname

		if len(it.buffer) == 0 || resp.AfterFullname == "" {
			it.hasMore = false
			if len(it.buffer) == 0 {
				return nil, ErrExhausted
			}
		}
	}

	post := it.buffer[it.bufferIdx]
	it.bufferIdx++

	if post == nil {
		return it.Next()
	}
	return post, nil
}

// Err returns the first error encountered during iteration, if any.
func (it *PostIterator) Err() error {
	return it.err
}

// SubredditIterator pages through a subreddit listing the same way
// PostIterator pages through posts.
type SubredditIterator struct {
	listFunc  func(context.Context, *types.Pagination) (*types.SubredditsResponse, error)
	ctx       context.Context
	buffer    []*types.SubredditData
	bufferIdx int
	after     string
	pageSize  int
	hasMore   bool
	err       error
}

// NewSubredditSearchIterator returns an iterator over subreddit search
// results for the query.
func (c *Client) NewSubredditSearchIterator(ctx context.Context, query string) *SubredditIterator {
	return c.newSubredditIterator(ctx, func(ctx context.Context, pagination *types.Pagination) (*types.SubredditsResponse, error) {
		return c.SearchSubreddits(ctx, query, pagination)
	})
}

// NewPopularSubredditIterator returns an iterator over popular subreddits.
func (c *Client) NewPopularSubredditIterator(ctx context.Context) *SubredditIterator {
	return c.newSubredditIterator(ctx, c.GetPopularSubreddits)
}

// NewNewSubredditIterator returns an iterator over newly created subreddits.
func (c *Client) NewNewSubredditIterator(ctx context.Context) *SubredditIterator {
	return c.newSubredditIterator(ctx, c.GetNewSubreddits)
}

func (c *Client) newSubredditIterator(ctx context.Context, listFunc func(context.Context, *types.Pagination) (*types.SubredditsResponse, error)) *SubredditIterator {
	return &SubredditIterator{
		listFunc: listFunc,
		ctx:      ctx,
		pageSize: iteratorPageSize,
		hasMore:  true,
	}
}

// WithPageSize sets the batch size per request, clamped to Reddit's
// per-request maximum.
func (it *SubredditIterator) WithPageSize(n int) *SubredditIterator {
	if n > iteratorPageSize {
		n = iteratorPageSize
	}
	if n < 1 {
		n = 1
	}
	it.pageSize = n
	return it
}

// HasNext reports whether the iteration can yield another subreddit.
func (it *SubredditIterator) HasNext() bool {
	if it.err != nil {
		return false
	}
	return it.bufferIdx < len(it.buffer) || it.hasMore
}

// Next returns the next subreddit, ErrExhausted at the end of the listing,
// or the context's error when cancelled.
func (it *SubredditIterator) Next() (*types.SubredditData, error) {
	if it.err != nil {
		return nil, it.err
	}
	if err := it.ctx.Err(); err != nil {
		it.err = err
		return nil, err
	}

	if it.bufferIdx >= len(it.buffer) {
		if !it.hasMore {
			return nil, ErrExhausted
		}

		resp, err := it.listFunc(it.ctx, &types.Pagination{Limit: it.pageSize, After: it.after})
		if err != nil {
			it.err = err
			return nil, err
		}

		it.buffer = resp.Subreddits
		it.bufferIdx = 0
		it.after = resp.AfterFullname

		if len(it.buffer) == 0 || resp.AfterFullname == "" {
			it.hasMore = false
			if len(it.buffer) == 0 {
				return nil, ErrExhausted
			}
		}
	}

	sub := it.buffer[it.bufferIdx]
	it.bufferIdx++

	if sub == nil {
		return it.Next()
	}
	return sub, nil
}

// Err returns the first error encountered during iteration, if any.
func (it *SubredditIterator) Err() error {
	return it.err
}
