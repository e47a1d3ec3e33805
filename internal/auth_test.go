package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrs "github.com/redditool/redditool/pkg/errors"
)

func TestGetToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/access_token" {
			t.Errorf("token path = %q", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "test-id" || pass != "test-secret" {
			t.Errorf("basic auth = %q/%q ok=%v", user, pass, ok)
		}
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("User-Agent = %q", ua)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if grant := r.Form.Get("grant_type"); grant != "client_credentials" {
			t.Errorf("grant_type = %q", grant)
		}
		fmt.Fprint(w, `{"access_token":"abc123token","token_type":"bearer","expires_in":3600}`)
	}))
	defer server.Close()

	auth, err := NewAuthenticator(server.Client(), "test-id", "test-secret", "test-agent", server.URL)
	if err != nil {
		t.Fatalf("NewAuthenticator() error = %v", err)
	}

	token, err := auth.GetToken(context.Background())
	if err != nil {
		t.Fatalf("GetToken() error = %v", err)
	}
	if token != "abc123token" {
		t.Errorf("token = %q, want abc123token", token)
	}
}

func TestGetTokenErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			body:       `{"error":401,"message":"Unauthorized"}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid json",
			status:     http.StatusOK,
			body:       `not json`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "empty token",
			status:     http.StatusOK,
			body:       `{"access_token":""}`,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			auth, err := NewAuthenticator(server.Client(), "id", "secret", "agent", server.URL)
			if err != nil {
				t.Fatalf("NewAuthenticator() error = %v", err)
			}

			_, err = auth.GetToken(context.Background())
			if err == nil {
				t.Fatal("GetToken() should have failed")
			}

			var authErr *pkgerrs.AuthError
			if !errors.As(err, &authErr) {
				t.Fatalf("error type = %T, want *AuthError", err)
			}
			if authErr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", authErr.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestGetTokenNetworkError(t *testing.T) {
	// Point at a server that is already closed.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	auth, err := NewAuthenticator(nil, "id", "secret", "agent", server.URL)
	if err != nil {
		t.Fatalf("NewAuthenticator() error = %v", err)
	}

	_, err = auth.GetToken(context.Background())
	var authErr *pkgerrs.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("error type = %T, want *AuthError", err)
	}
}

func TestNewAuthenticatorInvalidURL(t *testing.T) {
	if _, err := NewAuthenticator(nil, "id", "secret", "agent", "://bad"); err == nil {
		t.Error("invalid auth base URL should be rejected")
	}
}
