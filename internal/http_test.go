package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redditool/redditool/pkg/types"
)

func newTransport(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(nil, "test-token", baseURL, "test-agent", nil, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestNewRequestHeaders(t *testing.T) {
	client := newTransport(t, "https://oauth.reddit.com/")

	req, err := client.NewRequest(context.Background(), http.MethodGet, "r/golang/about", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}

	if got := req.Header.Get("Authorization"); got != "Bearer test-token" {
		t.Errorf("Authorization = %q", got)
	}
	if got := req.Header.Get("User-Agent"); got != "test-agent" {
		t.Errorf("User-Agent = %q", got)
	}
	if got := req.URL.String(); got != "https://oauth.reddit.com/r/golang/about" {
		t.Errorf("URL = %q", got)
	}
}

func TestDoDecodesThing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"kind":"t5","data":{"display_name":"golang"}}`)
	}))
	defer server.Close()

	client := newTransport(t, server.URL)
	req, err := client.NewRequest(context.Background(), http.MethodGet, "r/golang/about", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}

	var thing types.Thing
	if _, err := client.Do(req, &thing); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if thing.Kind != "t5" {
		t.Errorf("Kind = %q, want t5", thing.Kind)
	}
}

func TestDoAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := newTransport(t, server.URL)
	req, err := client.NewRequest(context.Background(), http.MethodGet, "r/missing/about", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}

	_, doErr := client.Do(req, nil)
	var apiErr *APIError
	if !errors.As(doErr, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", doErr)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if !IsNotFound(apiErr) {
		t.Error("IsNotFound() = false, want true")
	}
}

func TestIsNotFound(t *testing.T) {
	if IsNotFound(&APIError{StatusCode: http.StatusForbidden}) {
		t.Error("403 should not be a not-found error")
	}
	if IsNotFound(errors.New("plain error")) {
		t.Error("plain errors should not be not-found errors")
	}
}

func TestDoRaw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"sr_name":"golang"}]`)
	}))
	defer server.Close()

	client := newTransport(t, server.URL)
	req, err := client.NewRequest(context.Background(), http.MethodGet, "api/recommend/sr/foo", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}

	body, err := client.DoRaw(req)
	if err != nil {
		t.Fatalf("DoRaw() error = %v", err)
	}
	if string(body) != `[{"sr_name":"golang"}]` {
		t.Errorf("body = %q", body)
	}
}

func TestRetryAfterDefersRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := newTransport(t, server.URL)
	req, err := client.NewRequest(context.Background(), http.MethodGet, "hot", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	if _, err := client.DoRaw(req); err != nil {
		t.Fatalf("DoRaw() error = %v", err)
	}

	client.mu.Lock()
	waitUntil := client.forceWaitUntil
	client.mu.Unlock()

	if waitUntil.Before(time.Now().Add(20 * time.Second)) {
		t.Errorf("forceWaitUntil = %v, expected roughly 30s out", waitUntil)
	}
}

func TestRateHeadersNearExhaustionDefersRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ratelimit-Remaining", "0")
		w.Header().Set("X-Ratelimit-Reset", "15")
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := newTransport(t, server.URL)
	req, err := client.NewRequest(context.Background(), http.MethodGet, "hot", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	if _, err := client.DoRaw(req); err != nil {
		t.Fatalf("DoRaw() error = %v", err)
	}

	client.mu.Lock()
	waitUntil := client.forceWaitUntil
	client.mu.Unlock()

	if waitUntil.IsZero() {
		t.Error("expected a forced delay after exhausting the rate budget")
	}
}

func TestBuildLimiterDefaults(t *testing.T) {
	limiter := buildLimiter(RateLimitConfig{})
	if limiter.Burst() != DefaultRateLimitBurst {
		t.Errorf("Burst = %d, want %d", limiter.Burst(), DefaultRateLimitBurst)
	}

	limiter = buildLimiter(RateLimitConfig{RequestsPerMinute: 120, Burst: 5})
	if limiter.Burst() != 5 {
		t.Errorf("Burst = %d, want 5", limiter.Burst())
	}
	if limiter.Limit() != 2 {
		t.Errorf("Limit = %v, want 2 per second", limiter.Limit())
	}
}

func TestNewClientInvalidBaseURL(t *testing.T) {
	if _, err := NewClient(nil, "token", "://bad", "agent", nil, nil); err == nil {
		t.Error("invalid base URL should be rejected")
	}
}
