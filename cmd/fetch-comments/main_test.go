package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redditool/redditool"
	pkgerrs "github.com/redditool/redditool/pkg/errors"
	"github.com/redditool/redditool/pkg/types"
)

// fakeFetcher serves canned comment responses and fails for unknown posts.
type fakeFetcher struct {
	posts map[string]*types.CommentsResponse
}

func (f *fakeFetcher) GetComments(_ context.Context, request *types.CommentsRequest) (*types.CommentsResponse, error) {
	resp, ok := f.posts[request.PostID]
	if !ok {
		return nil, &pkgerrs.FetchError{Resource: request.PostID, Err: assert.AnError}
	}
	return resp, nil
}

func (f *fakeFetcher) GetMoreComments(context.Context, *types.MoreCommentsRequest) ([]*types.Comment, error) {
	return nil, nil
}

func commentsResponse(postID, title string) *types.CommentsResponse {
	post := &types.Post{Title: title}
	post.ID = postID
	comment := &types.Comment{Author: "alice", Body: "hello"}
	comment.ID = "c1"
	return &types.CommentsResponse{Post: post, Comments: []*types.Comment{comment}}
}

func TestFetchThreadsSkipsFailedPosts(t *testing.T) {
	client := &fakeFetcher{posts: map[string]*types.CommentsResponse{
		"good1": commentsResponse("good1", "First post"),
	}}

	threads, err := fetchThreads(context.Background(), client, []string{"good1", "badid"}, redditool.TreeOptions{
		MaxDepth:    redditool.Unlimited,
		MaxPerLevel: redditool.Unlimited,
	})
	require.NoError(t, err)

	require.Len(t, threads, 1)
	assert.Equal(t, "good1", threads[0].PostID)
	assert.Equal(t, "First post", threads[0].PostTitle)
	require.Len(t, threads[0].Comments, 1)
}

func TestFetchThreadsOrderFollowsArguments(t *testing.T) {
	client := &fakeFetcher{posts: map[string]*types.CommentsResponse{
		"aaa": commentsResponse("aaa", "A"),
		"bbb": commentsResponse("bbb", "B"),
	}}

	threads, err := fetchThreads(context.Background(), client, []string{"bbb", "aaa"}, redditool.TreeOptions{
		MaxDepth:    redditool.Unlimited,
		MaxPerLevel: redditool.Unlimited,
	})
	require.NoError(t, err)

	require.Len(t, threads, 2)
	assert.Equal(t, "bbb", threads[0].PostID)
	assert.Equal(t, "aaa", threads[1].PostID)
}

func TestFetchThreadsAllFailedErrors(t *testing.T) {
	client := &fakeFetcher{}

	_, err := fetchThreads(context.Background(), client, []string{"bad1", "bad2"}, redditool.TreeOptions{
		MaxDepth:    redditool.Unlimited,
		MaxPerLevel: redditool.Unlimited,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no posts could be fetched successfully")
}
