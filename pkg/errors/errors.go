// Package errors defines the error types shared by the Reddit toolkit.
//
// The taxonomy mirrors how the CLI utilities react to failures:
// ConfigError aborts a run before any network access, FetchError marks a
// single requested resource as failed (the run continues with the rest),
// and ExpandError marks a comment pagination marker that could not be
// resolved (the branch is dropped, traversal continues).
package errors

import (
	"fmt"
)

// ConfigError indicates a problem with configuration or CLI input that must
// stop the run before any network activity.
type ConfigError struct {
	// Field names the configuration field or flag that caused the error.
	Field string
	// Message contains the detailed error message.
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// AuthError indicates an authentication failure against the token endpoint.
type AuthError struct {
	// StatusCode is the HTTP status code, if the failure came from a response.
	StatusCode int
	// Body contains the raw response body, which may hold more details.
	Body string
	// Err is the underlying error, e.g. a network or JSON parsing error.
	Err error
}

func (e *AuthError) Error() string {
	msg := "auth error"
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status code %d", msg, e.StatusCode)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s, body: %q", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s, err: %v", msg, e.Err)
	}
	return msg
}

func (e *AuthError) Unwrap() error { return e.Err }

// FetchError indicates that a single requested resource could not be
// retrieved. Callers fetching several resources log it and move on; a run
// only fails when every resource produced a FetchError.
type FetchError struct {
	// Resource identifies what was being fetched (post ID, subreddit name).
	Resource string
	// Err is the underlying transport or API error.
	Err error
}

func (e *FetchError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("fetch error for %s: %v", e.Resource, e.Err)
	}
	return fmt.Sprintf("fetch error: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExpandError indicates that a "more comments" pagination marker could not
// be resolved. The affected branch is dropped; traversal continues.
type ExpandError struct {
	// LinkID is the post whose marker failed to expand.
	LinkID string
	// Err is the underlying error.
	Err error
}

func (e *ExpandError) Error() string {
	if e.LinkID != "" {
		return fmt.Sprintf("could not expand more comments for %s: %v", e.LinkID, e.Err)
	}
	return fmt.Sprintf("could not expand more comments: %v", e.Err)
}

func (e *ExpandError) Unwrap() error { return e.Err }
