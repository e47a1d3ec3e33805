package internal

import (
	"encoding/json"
	"fmt"

	"github.com/redditool/redditool/pkg/types"
)

// Parser decodes Reddit Thing envelopes into typed objects. Comment
// listings keep their tree shape: replies stay nested on each comment and
// "more" markers are recorded as MoreChildrenIDs at the level where they
// appeared, so traversal code can do per-level accounting.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// ParseListing extracts a ListingData from a Thing of kind "Listing".
func (p *Parser) ParseListing(thing *types.Thing) (*types.ListingData, error) {
	if thing == nil {
		return nil, fmt.Errorf("thing is nil")
	}
	if thing.Kind != "Listing" {
		return nil, fmt.Errorf("expected Listing, got %s", thing.Kind)
	}

	var listing types.ListingData
	if err := json.Unmarshal(thing.Data, &listing); err != nil {
		return nil, fmt.Errorf("failed to parse Listing data: %w", err)
	}
	return &listing, nil
}

// ParsePost extracts a Post from a Thing of kind "t3".
func (p *Parser) ParsePost(thing *types.Thing) (*types.Post, error) {
	if thing == nil {
		return nil, fmt.Errorf("thing is nil")
	}
	if thing.Kind != "t3" {
		return nil, fmt.Errorf("expected t3 (Link), got %s", thing.Kind)
	}

	var post types.Post
	if err := json.Unmarshal(thing.Data, &post); err != nil {
		return nil, fmt.Errorf("failed to parse Link data: %w", err)
	}
	return &post, nil
}

// ParseSubreddit extracts a SubredditData from a Thing of kind "t5".
func (p *Parser) ParseSubreddit(thing *types.Thing) (*types.SubredditData, error) {
	if thing == nil {
		return nil, fmt.Errorf("thing is nil")
	}
	if thing.Kind != "t5" {
		return nil, fmt.Errorf("expected t5 (Subreddit), got %s", thing.Kind)
	}

	var subreddit types.SubredditData
	if err := json.Unmarshal(thing.Data, &subreddit); err != nil {
		return nil, fmt.Errorf("failed to parse Subreddit data: %w", err)
	}
	return &subreddit, nil
}

// ParseMore extracts a MoreData from a Thing of kind "more".
func (p *Parser) ParseMore(thing *types.Thing) (*types.MoreData, error) {
	if thing == nil {
		return nil, fmt.Errorf("thing is nil")
	}
	if thing.Kind != "more" {
		return nil, fmt.Errorf("expected more, got %s", thing.Kind)
	}

	var more types.MoreData
	if err := json.Unmarshal(thing.Data, &more); err != nil {
		return nil, fmt.Errorf("failed to parse More data: %w", err)
	}
	return &more, nil
}

// ParseComment extracts a Comment from a Thing of kind "t1", recursively
// decoding its reply listing. Reddit sends "" for an empty reply set and a
// nested Listing otherwise; a "more" child in the listing contributes its
// IDs to the comment's MoreChildrenIDs instead of a record.
func (p *Parser) ParseComment(thing *types.Thing) (*types.Comment, error) {
	if thing == nil {
		return nil, fmt.Errorf("thing is nil")
	}
	if thing.Kind != "t1" {
		return nil, fmt.Errorf("expected t1 (Comment), got %s", thing.Kind)
	}

	var comment types.Comment
	if err := json.Unmarshal(thing.Data, &comment); err != nil {
		return nil, fmt.Errorf("failed to parse Comment data: %w", err)
	}

	var rawData struct {
		Replies json.RawMessage `json:"replies"`
	}
	if err := json.Unmarshal(thing.Data, &rawData); err == nil && len(rawData.Replies) > 0 {
		if string(rawData.Replies) != `""` && string(rawData.Replies) != "null" {
			var repliesThing types.Thing
			if err := json.Unmarshal(rawData.Replies, &repliesThing); err == nil {
				replies, moreIDs, _ := p.ExtractCommentForest(&repliesThing)
				comment.Replies = replies
				comment.MoreChildrenIDs = moreIDs
			}
		}
	}

	return &comment, nil
}

// ExtractPosts extracts all Post objects from a listing Thing.
func (p *Parser) ExtractPosts(listing *types.Thing) ([]*types.Post, error) {
	listingData, err := p.ParseListing(listing)
	if err != nil {
		return nil, err
	}

	posts := make([]*types.Post, 0, len(listingData.Children))
	for _, child := range listingData.Children {
		if child.Kind != "t3" {
			continue
		}
		post, err := p.ParsePost(child)
		if err != nil {
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// ExtractSubreddits extracts all SubredditData objects from a listing Thing.
func (p *Parser) ExtractSubreddits(listing *types.Thing) ([]*types.SubredditData, error) {
	listingData, err := p.ParseListing(listing)
	if err != nil {
		return nil, err
	}

	subs := make([]*types.SubredditData, 0, len(listingData.Children))
	for _, child := range listingData.Children {
		if child.Kind != "t5" {
			continue
		}
		sub, err := p.ParseSubreddit(child)
		if err != nil {
			continue
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// ExtractCommentForest decodes a comment listing into its top-level comments
// (each with nested replies) plus the IDs carried by any "more" marker at
// this level. Listing order is preserved.
func (p *Parser) ExtractCommentForest(thing *types.Thing) ([]*types.Comment, []string, error) {
	if thing == nil {
		return nil, nil, fmt.Errorf("thing is nil")
	}

	if thing.Kind == "t1" {
		comment, err := p.ParseComment(thing)
		if err != nil {
			return nil, nil, err
		}
		return []*types.Comment{comment}, nil, nil
	}

	if thing.Kind != "Listing" {
		return nil, nil, fmt.Errorf("expected Listing or t1, got %s", thing.Kind)
	}

	listingData, err := p.ParseListing(thing)
	if err != nil {
		return nil, nil, err
	}

	var comments []*types.Comment
	var moreIDs []string
	for _, child := range listingData.Children {
		switch child.Kind {
		case "t1":
			comment, err := p.ParseComment(child)
			if err != nil {
				continue
			}
			comments = append(comments, comment)
		case "more":
			more, err := p.ParseMore(child)
			if err != nil {
				continue
			}
			moreIDs = append(moreIDs, more.Children...)
		}
	}

	return comments, moreIDs, nil
}

// ExtractPostAndComments parses the response from a comments endpoint,
// which is usually [post_listing, comments_listing] but may be a single
// comments listing.
func (p *Parser) ExtractPostAndComments(response []*types.Thing) (*types.Post, []*types.Comment, []string, error) {
	if len(response) == 0 {
		return nil, nil, nil, fmt.Errorf("empty response")
	}

	if len(response) >= 2 {
		var post *types.Post
		posts, err := p.ExtractPosts(response[0])
		if err == nil && len(posts) > 0 {
			post = posts[0]
		}

		comments, moreIDs, err := p.ExtractCommentForest(response[1])
		if err != nil {
			if post != nil {
				return post, nil, nil, fmt.Errorf("failed to extract comments: %w", err)
			}
			return nil, nil, nil, fmt.Errorf("failed to extract both post and comments")
		}

		return post, comments, moreIDs, nil
	}

	comments, moreIDs, err := p.ExtractCommentForest(response[0])
	if err != nil {
		posts, perr := p.ExtractPosts(response[0])
		if perr != nil || len(posts) == 0 {
			return nil, nil, nil, fmt.Errorf("failed to extract data from single listing: %w", err)
		}
		return posts[0], nil, nil, nil
	}

	return nil, comments, moreIDs, nil
}
