// Package redditool provides the shared client and record-processing core
// for a set of Reddit command-line utilities. It wraps the Reddit API with
// OAuth2 application-only authentication and exposes typed operations for
// fetching posts, comment trees, and subreddit metadata.
//
// Basic usage:
//
//	cfg, err := redditool.ConfigFromEnv()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := redditool.NewClient(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	resp, err := client.GetComments(ctx, &types.CommentsRequest{PostID: "abc123"})
package redditool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/redditool/redditool/internal"
	pkgerrs "github.com/redditool/redditool/pkg/errors"
	"github.com/redditool/redditool/pkg/types"
)

const (
	// DefaultBaseURL is the default Reddit API base URL.
	DefaultBaseURL = "https://oauth.reddit.com/"
	// DefaultAuthURL is the default Reddit OAuth base URL.
	DefaultAuthURL = "https://www.reddit.com/"
	// DefaultUserAgent is used when REDDIT_USER_AGENT is not set.
	DefaultUserAgent = "redditool/1.0 (by /u/redditool)"
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// MaxListingResults is the ceiling Reddit documents for listing
	// endpoints; requests above it are clamped by the CLIs.
	MaxListingResults = 1000
)

// Environment variables consulted by ConfigFromEnv.
const (
	EnvClientID     = "REDDIT_CLIENT_ID"
	EnvClientSecret = "REDDIT_CLIENT_SECRET"
	EnvUserAgent    = "REDDIT_USER_AGENT"
)

// Config holds the configuration for the Reddit client.
type Config struct {
	// ClientID and ClientSecret for OAuth2 authentication. Required.
	ClientID     string
	ClientSecret string

	// UserAgent identifies the application to Reddit. Defaults to
	// DefaultUserAgent.
	UserAgent string

	// BaseURL for the Reddit API. Defaults to DefaultBaseURL.
	BaseURL string

	// AuthURL for Reddit OAuth. Defaults to DefaultAuthURL.
	AuthURL string

	// HTTPClient to use for requests. Defaults to a client with
	// DefaultTimeout.
	HTTPClient *http.Client

	// Logger for structured diagnostics. Optional.
	Logger *slog.Logger
}

// ConfigFromEnv builds a Config from the process environment. Missing
// credentials are a configuration error reported before any network access.
func ConfigFromEnv() (*Config, error) {
	clientID := os.Getenv(EnvClientID)
	clientSecret := os.Getenv(EnvClientSecret)
	if clientID == "" || clientSecret == "" {
		return nil, &pkgerrs.ConfigError{
			Field:   "credentials",
			Message: fmt.Sprintf("please set %s and %s", EnvClientID, EnvClientSecret),
		}
	}

	userAgent := os.Getenv(EnvUserAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		UserAgent:    userAgent,
	}, nil
}

// TokenProvider retrieves an access token for authenticated requests.
type TokenProvider interface {
	GetToken(ctx context.Context) (string, error)
}

// HTTPClient is the behavior the client needs from the transport layer.
// The interface exists so tests can substitute a fake transport.
type HTTPClient interface {
	NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error)
	Do(req *http.Request, v *types.Thing) (*http.Response, error)
	DoRaw(req *http.Request) ([]byte, error)
}

// Client is the Reddit API client shared by the CLI utilities. It is safe
// for use from a single goroutine; the utilities are single-threaded by
// design.
type Client struct {
	client HTTPClient
	auth   TokenProvider
	config *Config
	parser *internal.Parser

	connectOnce sync.Once
	connectErr  error
}

// NewClient creates a new Reddit client from the provided configuration.
// It validates the configuration and prepares the authenticator, but does
// not perform any network activity; the first API call authenticates
// lazily.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, &pkgerrs.ConfigError{Message: "config cannot be nil"}
	}
	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, &pkgerrs.ConfigError{Field: "credentials", Message: "ClientID and ClientSecret are required"}
	}

	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if err := internal.ValidateUserAgent(config.UserAgent); err != nil {
		return nil, err
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.AuthURL == "" {
		config.AuthURL = DefaultAuthURL
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}

	auth, err := internal.NewAuthenticator(
		config.HTTPClient,
		config.ClientID,
		config.ClientSecret,
		config.UserAgent,
		config.AuthURL,
	)
	if err != nil {
		return nil, err
	}

	return &Client{
		auth:   auth,
		config: config,
		parser: internal.NewParser(),
	}, nil
}

// Connect authenticates with Reddit and initializes the transport. It is
// safe to call multiple times; initialization happens once.
func (c *Client) Connect(ctx context.Context) error {
	c.connectOnce.Do(func() {
		c.connectErr = c.initialize(ctx)
	})
	return c.connectErr
}

func (c *Client) initialize(ctx context.Context) error {
	token, err := c.auth.GetToken(ctx)
	if err != nil {
		return err
	}

	client, err := internal.NewClient(
		c.config.HTTPClient,
		token,
		c.config.BaseURL,
		c.config.UserAgent,
		nil,
		c.config.Logger,
	)
	if err != nil {
		return &ClientError{Err: "failed to create HTTP client: " + err.Error()}
	}

	c.client = client
	return nil
}

func (c *Client) ensureConnected(ctx context.Context) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}
	if c.client == nil {
		return &ClientError{Err: "client not connected"}
	}
	return nil
}

// logger returns the configured logger or a no-op discard logger.
func (c *Client) logger() *slog.Logger {
	if c.config.Logger != nil {
		return c.config.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// GetSubreddit retrieves metadata for a single subreddit: subscriber count,
// active users, description, NSFW and quarantine flags.
func (c *Client) GetSubreddit(ctx context.Context, name string) (*types.SubredditData, error) {
	if err := internal.ValidateSubredditName(name); err != nil {
		return nil, err
	}
	if err := c.ensureConnected(ctx); err != nil {
		return nil, err
	}

	req, err := c.client.NewRequest(ctx, http.MethodGet, "r/"+name+"/about", nil)
	if err != nil {
		return nil, &ClientError{Err: "failed to create request: " + err.Error()}
	}

	var result types.Thing
	if _, err := c.client.Do(req, &result); err != nil {
		return nil, &pkgerrs.FetchError{Resource: "r/" + name, Err: err}
	}

	sub, err := c.parser.ParseSubreddit(&result)
	if err != nil {
		return nil, &ClientError{Err: "failed to parse subreddit: " + err.Error()}
	}
	return sub, nil
}

// GetTop retrieves a subreddit's top posts within the request's time window.
func (c *Client) GetTop(ctx context.Context, request *types.TopPostsRequest) (*types.PostsResponse, error) {
	if request == nil {
		return nil, &ClientError{Err: "top posts request cannot be nil"}
	}
	if err := internal.ValidateSubredditName(request.Subreddit); err != nil {
		return nil, err
	}
	tf := request.TimeFilter
	if tf == "" {
		tf = "week"
	}
	if !types.ValidTimeFilter(tf) {
		return nil, &pkgerrs.ConfigError{Field: "TimeFilter", Message: fmt.Sprintf("invalid time filter %q", tf)}
	}

	query := url.Values{}
	query.Set("t", string(tf))
	return c.listPosts(ctx, "r/"+request.Subreddit+"/top", &request.Pagination, query)
}

// GetHot retrieves hot posts from a subreddit, or the front page when the
// request or its Subreddit is empty.
func (c *Client) GetHot(ctx context.Context, request *types.PostsRequest) (*types.PostsResponse, error) {
	return c.listPostsBySort(ctx, "hot", request)
}

// GetNew retrieves the newest posts from a subreddit, or the front page
// when the request or its Subreddit is empty.
func (c *Client) GetNew(ctx context.Context, request *types.PostsRequest) (*types.PostsResponse, error) {
	return c.listPostsBySort(ctx, "new", request)
}

func (c *Client) listPostsBySort(ctx context.Context, sort string, request *types.PostsRequest) (*types.PostsResponse, error) {
	path := sort
	pagination := &types.Pagination{}
	if request != nil {
		if request.Subreddit != "" {
			if err := internal.ValidateSubredditName(request.Subreddit); err != nil {
				return nil, err
			}
			path = "r/" + request.Subreddit + "/" + sort
		}
		pagination = &request.Pagination
	}
	return c.listPosts(ctx, path, pagination, nil)
}

func (c *Client) listPosts(ctx context.Context, path string, pagination *types.Pagination, query url.Values) (*types.PostsResponse, error) {
	if err := internal.ValidatePagination(pagination); err != nil {
		return nil, err
	}
	if err := c.ensureConnected(ctx); err != nil {
		return nil, err
	}

	req, err := c.client.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, &ClientError{Err: "failed to create request: " + err.Error()}
	}
	applyListingQuery(req, pagination, query)

	var result types.Thing
	if _, err := c.client.Do(req, &result); err != nil {
		return nil, &pkgerrs.FetchError{Resource: path, Err: err}
	}

	posts, err := c.parser.ExtractPosts(&result)
	if err != nil {
		return nil, &ClientError{Err: "failed to parse posts: " + err.Error()}
	}

	after, before := c.listingCursors(&result)
	return &types.PostsResponse{
		Posts:          posts,
		AfterFullname:  after,
		BeforeFullname: before,
	}, nil
}

// SearchSubreddits searches subreddits by keyword or topic.
func (c *Client) SearchSubreddits(ctx context.Context, query string, pagination *types.Pagination) (*types.SubredditsResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &pkgerrs.ConfigError{Field: "query", Message: "search query cannot be empty"}
	}
	values := url.Values{}
	values.Set("q", query)
	return c.listSubreddits(ctx, "subreddits/search", pagination, values)
}

// GetPopularSubreddits lists subreddits by subscriber count.
func (c *Client) GetPopularSubreddits(ctx context.Context, pagination *types.Pagination) (*types.SubredditsResponse, error) {
	return c.listSubreddits(ctx, "subreddits/popular", pagination, nil)
}

// GetNewSubreddits lists the most recently created subreddits.
func (c *Client) GetNewSubreddits(ctx context.Context, pagination *types.Pagination) (*types.SubredditsResponse, error) {
	return c.listSubreddits(ctx, "subreddits/new", pagination, nil)
}

func (c *Client) listSubreddits(ctx context.Context, path string, pagination *types.Pagination, query url.Values) (*types.SubredditsResponse, error) {
	if err := internal.ValidatePagination(pagination); err != nil {
		return nil, err
	}
	if err := c.ensureConnected(ctx); err != nil {
		return nil, err
	}

	req, err := c.client.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, &ClientError{Err: "failed to create request: " + err.Error()}
	}
	applyListingQuery(req, pagination, query)

	var result types.Thing
	if _, err := c.client.Do(req, &result); err != nil {
		return nil, &pkgerrs.FetchError{Resource: path, Err: err}
	}

	subs, err := c.parser.ExtractSubreddits(&result)
	if err != nil {
		return nil, &ClientError{Err: "failed to parse subreddits: " + err.Error()}
	}

	after, before := c.listingCursors(&result)
	return &types.SubredditsResponse{
		Subreddits:     subs,
		AfterFullname:  after,
		BeforeFullname: before,
	}, nil
}

// GetRecommendedSubreddits returns subreddits related to the given ones.
// The recommendation endpoint only returns names, so each one is hydrated
// with a follow-up GetSubreddit call; hydration failures are logged and
// skipped, and the call fails only when nothing could be fetched.
func (c *Client) GetRecommendedSubreddits(ctx context.Context, names []string) ([]*types.SubredditData, error) {
	if len(names) == 0 {
		return nil, &pkgerrs.ConfigError{Field: "names", Message: "at least one subreddit name is required"}
	}
	for _, name := range names {
		if err := internal.ValidateSubredditName(name); err != nil {
			return nil, err
		}
	}
	if err := c.ensureConnected(ctx); err != nil {
		return nil, err
	}

	path := "api/recommend/sr/" + strings.Join(names, ",")
	req, err := c.client.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, &ClientError{Err: "failed to create request: " + err.Error()}
	}

	body, err := c.client.DoRaw(req)
	if err != nil {
		return nil, &pkgerrs.FetchError{Resource: path, Err: err}
	}

	var recommendations []struct {
		Name string `json:"sr_name"`
	}
	if err := json.Unmarshal(body, &recommendations); err != nil {
		return nil, &ClientError{Err: "failed to parse recommendations: " + err.Error()}
	}

	var subs []*types.SubredditData
	var lastErr error
	for _, rec := range recommendations {
		if rec.Name == "" {
			continue
		}
		sub, err := c.GetSubreddit(ctx, rec.Name)
		if err != nil {
			c.logger().Warn("could not fetch recommended subreddit", "subreddit", rec.Name, "err", err)
			lastErr = err
			continue
		}
		subs = append(subs, sub)
	}

	if len(subs) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return subs, nil
}

// GetComments retrieves a post and its comment tree. The response keeps the
// tree shape: top-level comments carry their nested replies, and truncated
// levels surface as more-marker IDs for GetMoreComments.
func (c *Client) GetComments(ctx context.Context, request *types.CommentsRequest) (*types.CommentsResponse, error) {
	if request == nil {
		return nil, &ClientError{Err: "comments request cannot be nil"}
	}
	if request.PostID == "" {
		return nil, &ClientError{Err: "postID is required"}
	}
	if err := internal.ValidatePagination(&request.Pagination); err != nil {
		return nil, err
	}
	if err := c.ensureConnected(ctx); err != nil {
		return nil, err
	}

	path := "comments/" + request.PostID
	if request.Subreddit != "" {
		path = "r/" + request.Subreddit + "/comments/" + request.PostID
	}
	req, err := c.client.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, &ClientError{Err: "failed to create request: " + err.Error()}
	}
	applyListingQuery(req, &request.Pagination, nil)

	resp, err := c.client.DoRaw(req)
	if err != nil {
		return nil, &pkgerrs.FetchError{Resource: request.PostID, Err: err}
	}

	things, err := decodeCommentsBody(resp)
	if err != nil {
		return nil, err
	}

	post, comments, moreIDs, err := c.parser.ExtractPostAndComments(things)
	if err != nil {
		return nil, &ClientError{Err: "failed to parse comments: " + err.Error()}
	}

	return &types.CommentsResponse{
		Post:     post,
		Comments: comments,
		MoreIDs:  moreIDs,
	}, nil
}

// decodeCommentsBody handles the two shapes the comments endpoint returns:
// an array [post_listing, comments_listing] or a bare Listing.
func decodeCommentsBody(resp []byte) ([]*types.Thing, error) {
	if len(resp) == 0 {
		return nil, &ClientError{Err: "empty response from Reddit"}
	}

	if resp[0] == '[' {
		var things []*types.Thing
		if err := json.Unmarshal(resp, &things); err != nil {
			return nil, &ClientError{Err: "failed to parse comments array response: " + err.Error()}
		}
		return things, nil
	}

	if resp[0] == '{' {
		var single types.Thing
		if err := json.Unmarshal(resp, &single); err != nil {
			var errObj struct {
				Error   string `json:"error"`
				Message string `json:"message"`
			}
			if jerr := json.Unmarshal(resp, &errObj); jerr == nil && errObj.Error != "" {
				return nil, &ClientError{Err: fmt.Sprintf("reddit API error: %s - %s", errObj.Error, errObj.Message)}
			}
			return nil, &ClientError{Err: "failed to parse comments response: " + err.Error()}
		}
		if single.Kind != "Listing" {
			return nil, &ClientError{Err: fmt.Sprintf("unexpected response kind: %s", single.Kind)}
		}
		return []*types.Thing{&single}, nil
	}

	return nil, &ClientError{Err: "empty or invalid response from Reddit"}
}

// MaxMoreChildrenPerRequest is the number of comment IDs api/morechildren
// accepts per call.
const MaxMoreChildrenPerRequest = 100

// GetMoreComments resolves a comment pagination marker via api/morechildren
// and returns the additional comments at that level. Markers on busy threads
// carry hundreds of child IDs while the endpoint accepts at most 100 per
// call, so large ID lists are resolved in batches and the results
// concatenated in order.
func (c *Client) GetMoreComments(ctx context.Context, request *types.MoreCommentsRequest) ([]*types.Comment, error) {
	if request == nil {
		return nil, &ClientError{Err: "more comments request cannot be nil"}
	}
	if request.LinkID == "" {
		return nil, &ClientError{Err: "linkID is required"}
	}
	if len(request.CommentIDs) == 0 {
		return []*types.Comment{}, nil
	}
	if err := c.ensureConnected(ctx); err != nil {
		return nil, err
	}

	linkID := request.LinkID
	if !strings.HasPrefix(linkID, "t3_") {
		linkID = "t3_" + linkID
	}

	var comments []*types.Comment
	remaining := request.CommentIDs
	for len(remaining) > 0 {
		batch := remaining
		if len(batch) > MaxMoreChildrenPerRequest {
			batch = batch[:MaxMoreChildrenPerRequest]
		}
		remaining = remaining[len(batch):]

		got, err := c.moreChildren(ctx, linkID, batch, request)
		if err != nil {
			return nil, err
		}
		comments = append(comments, got...)
	}

	return comments, nil
}

func (c *Client) moreChildren(ctx context.Context, linkID string, ids []string, request *types.MoreCommentsRequest) ([]*types.Comment, error) {
	if err := internal.ValidateCommentIDs(ids); err != nil {
		return nil, err
	}

	formData := url.Values{}
	formData.Set("link_id", linkID)
	formData.Set("children", strings.Join(ids, ","))
	formData.Set("api_type", "json")
	if request.Sort != "" {
		formData.Set("sort", request.Sort)
	}
	if request.Depth > 0 {
		formData.Set("depth", fmt.Sprintf("%d", request.Depth))
	}
	if request.Limit > 0 {
		formData.Set("limit_children", fmt.Sprintf("%d", request.Limit))
	}

	req, err := c.client.NewRequest(ctx, http.MethodPost, "api/morechildren", strings.NewReader(formData.Encode()))
	if err != nil {
		return nil, &ClientError{Err: "failed to create request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	respBody, err := c.client.DoRaw(req)
	if err != nil {
		return nil, &pkgerrs.ExpandError{LinkID: linkID, Err: err}
	}

	var response struct {
		JSON struct {
			Errors [][]string `json:"errors"`
			Data   struct {
				Things []*types.Thing `json:"things"`
			} `json:"data"`
		} `json:"json"`
	}
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, &pkgerrs.ExpandError{LinkID: linkID, Err: err}
	}
	if len(response.JSON.Errors) > 0 {
		return nil, &pkgerrs.ExpandError{LinkID: linkID, Err: fmt.Errorf("API error: %v", response.JSON.Errors[0])}
	}

	var comments []*types.Comment
	for _, thing := range response.JSON.Data.Things {
		if thing.Kind != "t1" {
			continue
		}
		comment, err := c.parser.ParseComment(thing)
		if err != nil {
			continue
		}
		comments = append(comments, comment)
	}

	return comments, nil
}

func (c *Client) listingCursors(result *types.Thing) (after, before string) {
	listing, err := c.parser.ParseListing(result)
	if err != nil {
		return "", ""
	}
	return listing.AfterFullname, listing.BeforeFullname
}

func applyListingQuery(req *http.Request, pagination *types.Pagination, extra url.Values) {
	q := req.URL.Query()
	for key, values := range extra {
		for _, v := range values {
			q.Set(key, v)
		}
	}
	if pagination != nil {
		if pagination.Limit > 0 {
			q.Set("limit", fmt.Sprintf("%d", pagination.Limit))
		}
		if pagination.After != "" {
			q.Set("after", pagination.After)
		}
		if pagination.Before != "" {
			q.Set("before", pagination.Before)
		}
	}
	req.URL.RawQuery = q.Encode()
}

// ClientError represents an error from the Reddit client itself, as opposed
// to the typed configuration, fetch, and expansion errors in pkg/errors.
type ClientError struct {
	Err string
}

func (e *ClientError) Error() string {
	return "reddit client error: " + e.Err
}
