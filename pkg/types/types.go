// Package types defines the wire-level objects returned by the Reddit API.
// Everything here mirrors Reddit's "Thing" envelope model: a kind tag plus a
// raw data payload that is decoded into a concrete type by the parser.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ThingData holds the identifier fields shared by all Reddit objects.
type ThingData struct {
	ID   string `json:"id"`   // ID without the type prefix
	Name string `json:"name"` // Fullname (e.g. "t3_abc123")
}

// GetID returns the object's ID.
func (td ThingData) GetID() string {
	return td.ID
}

// GetName returns the object's fullname.
func (td ThingData) GetName() string {
	return td.Name
}

// Thing is the envelope for all Reddit API objects. Kind identifies the
// payload type ("t1" comment, "t3" link, "t5" subreddit, "Listing", "more");
// Data stays raw until the parser decodes it.
type Thing struct {
	ThingData
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Votable is embedded in things that can be voted on.
type Votable struct {
	Ups   int `json:"ups"`
	Downs int `json:"downs"`
}

// Created is embedded in things that carry a creation time.
type Created struct {
	Created    float64 `json:"created"`
	CreatedUTC float64 `json:"created_utc"`
}

// Edited represents Reddit's mixed-type "edited" field: false, true (old
// edits), or a float timestamp.
type Edited struct {
	IsEdited  bool
	Timestamp float64
}

// UnmarshalJSON handles the boolean-or-timestamp encoding of "edited".
func (e *Edited) UnmarshalJSON(data []byte) error {
	switch strings.ToLower(string(data)) {
	case "false", "null":
		e.IsEdited = false
		e.Timestamp = 0
		return nil
	case "true":
		e.IsEdited = true
		e.Timestamp = 0
		return nil
	}

	var timestamp float64
	if err := json.Unmarshal(data, &timestamp); err == nil {
		e.IsEdited = true
		e.Timestamp = timestamp
		return nil
	}

	return fmt.Errorf("unrecognized type for 'edited' field: %s", string(data))
}

// ListingData is the payload of a "Listing" Thing, Reddit's pagination unit.
type ListingData struct {
	BeforeFullname string   `json:"before"`
	AfterFullname  string   `json:"after"`
	Children       []*Thing `json:"children"` // Raw Things, decoded by the parser
}

// Pagination captures the shared pagination controls for listing endpoints.
// Reddit paginates with fullnames ("t3_abc123", "t5_2qh33") rather than
// offsets.
type Pagination struct {
	// Limit is the number of items per request. Reddit caps this at 100;
	// zero means Reddit's default (usually 25).
	Limit int

	// After requests items following this fullname. Mutually exclusive
	// with Before.
	After string

	// Before requests items preceding this fullname.
	Before string
}

// TimeFilter selects the window for time-bounded listings such as top posts.
type TimeFilter string

// ValidTimeFilter reports whether tf is one of the windows Reddit accepts.
func ValidTimeFilter(tf TimeFilter) bool {
	switch tf {
	case "hour", "day", "week", "month", "year", "all":
		return true
	}
	return false
}

// PostsRequest describes a request for a post listing. Subreddit may be
// empty to target the front page.
type PostsRequest struct {
	Subreddit string
	Pagination
}

// TopPostsRequest describes a request for a subreddit's top posts within a
// time window.
type TopPostsRequest struct {
	Subreddit  string
	TimeFilter TimeFilter
	Pagination
}

// CommentsRequest describes a request for a post and its comment tree.
// Subreddit is optional; when empty the comments/{id} endpoint is used.
type CommentsRequest struct {
	Subreddit string
	PostID    string
	Pagination
}

// MoreCommentsRequest describes a request to expand a truncated comment
// listing via api/morechildren.
type MoreCommentsRequest struct {
	LinkID     string
	CommentIDs []string

	// Sort is the comment sort order: "confidence" (default), "new",
	// "top", "controversial", "old", "qa".
	Sort string

	// Depth limits how deep replies are returned. 0 means no limit.
	Depth int

	// Limit caps how many children are returned. 0 means Reddit's default.
	Limit int
}

// SubredditData is the payload of a "t5" Thing.
type SubredditData struct {
	ThingData
	Created
	ActiveUserCount   int    `json:"active_user_count"`
	Description       string `json:"description"`
	DisplayName       string `json:"display_name"`
	Over18            bool   `json:"over18"`
	PublicDescription string `json:"public_description"`
	Quarantine        bool   `json:"quarantine"`
	Subscribers       int64  `json:"subscribers"`
	SubredditType     string `json:"subreddit_type"`
	Title             string `json:"title"`
	URL               string `json:"url"`
}

// MoreData is the payload of a "more" Thing: a pagination marker standing in
// for sibling comments that were truncated from the listing.
type MoreData struct {
	ThingData
	Count    int      `json:"count"`
	Depth    int      `json:"depth"`
	ParentID string   `json:"parent_id"`
	Children []string `json:"children"`
}

// Post is the payload of a "t3" Thing.
type Post struct {
	ThingData
	Votable
	Created
	Author        string  `json:"author"`
	Domain        string  `json:"domain"`
	IsSelf        bool    `json:"is_self"`
	Locked        bool    `json:"locked"`
	NumComments   int     `json:"num_comments"`
	Over18        bool    `json:"over_18"`
	Permalink     string  `json:"permalink"`
	Score         int     `json:"score"`
	SelfText      string  `json:"selftext"`
	Spoiler       bool    `json:"spoiler"`
	Stickied      bool    `json:"stickied"`
	Subreddit     string  `json:"subreddit"`
	SubredditID   string  `json:"subreddit_id"`
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Edited        Edited  `json:"edited"`
	Distinguished *string `json:"distinguished"`
}

// Comment is the payload of a "t1" Thing. Replies holds the decoded child
// comments in listing order; MoreChildrenIDs holds the IDs carried by a
// "more" marker found among this comment's replies, if any.
type Comment struct {
	ThingData
	Votable
	Created
	Author          string     `json:"author"`
	Body            string     `json:"body"`
	Edited          Edited     `json:"edited"`
	LinkID          string     `json:"link_id"`
	ParentID        string     `json:"parent_id"`
	Replies         []*Comment `json:"-"`
	Score           int        `json:"score"`
	ScoreHidden     bool       `json:"score_hidden"`
	Subreddit       string     `json:"subreddit"`
	Distinguished   *string    `json:"distinguished"`
	MoreChildrenIDs []string   `json:"-"`
}

// PostsResponse is a page of posts plus the fullnames needed to continue
// paginating in either direction.
type PostsResponse struct {
	Posts          []*Post
	AfterFullname  string
	BeforeFullname string
}

// SubredditsResponse is a page of subreddits plus pagination fullnames.
type SubredditsResponse struct {
	Subreddits     []*SubredditData
	AfterFullname  string
	BeforeFullname string
}

// CommentsResponse is a post together with its top-level comment forest.
// MoreIDs holds the IDs from a "more" marker among the top-level comments.
type CommentsResponse struct {
	Post     *Post
	Comments []*Comment
	MoreIDs  []string
}
