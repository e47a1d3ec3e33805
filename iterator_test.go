package redditool

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostIteratorPagination(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/r/golang/top", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("after") {
		case "":
			fmt.Fprint(w, `{"kind":"Listing","data":{"after":"t3_b","children":[`+
				postJSON("a", "first")+","+postJSON("b", "second")+`]}}`)
		case "t3_b":
			fmt.Fprint(w, `{"kind":"Listing","data":{"after":"","children":[`+
				postJSON("c", "third")+`]}}`)
		default:
			t.Errorf("unexpected after cursor %q", r.URL.Query().Get("after"))
		}
	})

	client := newTestClient(t, mux)
	it := client.NewTopIterator(context.Background(), "golang", "week")

	var titles []string
	for {
		post, err := it.Next()
		if errors.Is(err, ErrExhausted) {
			break
		}
		require.NoError(t, err)
		titles = append(titles, post.Title)
	}

	assert.Equal(t, []string{"first", "second", "third"}, titles)
	assert.False(t, it.HasNext())
	assert.NoError(t, it.Err())
}

func TestPostIteratorContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(t, http.NewServeMux())
	it := client.NewTopIterator(ctx, "golang", "week")

	_, err := it.Next()
	require.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, it.Err(), context.Canceled)
	assert.False(t, it.HasNext())
}

func TestPostIteratorPropagatesFetchError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/r/golang/top", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	client := newTestClient(t, mux)
	it := client.NewTopIterator(context.Background(), "golang", "week")

	_, err := it.Next()
	require.Error(t, err)

	// The error is sticky.
	_, err2 := it.Next()
	assert.Equal(t, err, err2)
}

func TestPostIteratorWithPageSize(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/r/golang/new", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		fmt.Fprint(w, listingJSON(postJSON("a", "only")))
	})

	client := newTestClient(t, mux)
	it := client.NewNewIterator(context.Background(), "golang").WithPageSize(10)

	post, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, "only", post.Title)
}

func TestPostIteratorPageSizeClamped(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())

	it := client.NewHotIterator(context.Background(), "golang").WithPageSize(500)
	assert.Equal(t, iteratorPageSize, it.pageSize)

	it = client.NewHotIterator(context.Background(), "golang").WithPageSize(-1)
	assert.Equal(t, 1, it.pageSize)
}

func TestSubredditIteratorPagination(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/subreddits/popular", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("after") {
		case "":
			fmt.Fprint(w, `{"kind":"Listing","data":{"after":"t5_x","children":[`+
				`{"kind":"t5","data":{"display_name":"golang","subscribers":100}}]}}`)
		case "t5_x":
			fmt.Fprint(w, `{"kind":"Listing","data":{"after":"","children":[`+
				`{"kind":"t5","data":{"display_name":"rust","subscribers":50}}]}}`)
		}
	})

	client := newTestClient(t, mux)
	it := client.NewPopularSubredditIterator(context.Background())

	var names []string
	for {
		sub, err := it.Next()
		if errors.Is(err, ErrExhausted) {
			break
		}
		require.NoError(t, err)
		names = append(names, sub.DisplayName)
	}

	assert.Equal(t, []string{"golang", "rust"}, names)
}

func TestSubredditSearchIteratorPassesQuery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/subreddits/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "games", r.URL.Query().Get("q"))
		fmt.Fprint(w, listingJSON(`{"kind":"t5","data":{"display_name":"gaming"}}`))
	})

	client := newTestClient(t, mux)
	it := client.NewSubredditSearchIterator(context.Background(), "games")

	sub, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, "gaming", sub.DisplayName)
}

func TestSubredditIteratorEmptyListing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/subreddits/new", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingJSON())
	})

	client := newTestClient(t, mux)
	it := client.NewNewSubredditIterator(context.Background())

	_, err := it.Next()
	require.ErrorIs(t, err, ErrExhausted)
}
