package redditool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrs "github.com/redditool/redditool/pkg/errors"
)

func subRecord(name string, subscribers int64, active int, nsfw bool) *SubredditRecord {
	return &SubredditRecord{
		Name:        name,
		Subscribers: subscribers,
		ActiveUsers: active,
		Over18:      nsfw,
	}
}

func TestSubredditFilterUnsetPassesEverything(t *testing.T) {
	records := []*SubredditRecord{
		subRecord("golang", 200000, 500, false),
		subRecord("tiny", 3, 0, true),
	}

	got := NewSubredditFilter().Apply(records)
	assert.Len(t, got, 2)
}

func TestSubredditFilterApply(t *testing.T) {
	records := []*SubredditRecord{
		subRecord("big", 1000000, 2000, false),
		subRecord("medium", 50000, 100, false),
		subRecord("small", 100, 2, false),
		subRecord("adult", 500000, 900, true),
	}

	tests := []struct {
		name   string
		filter SubredditFilter
		want   []string
	}{
		{
			name:   "min subscribers",
			filter: SubredditFilter{MinSubscribers: 10000, MaxSubscribers: Unlimited, MinActivity: Unlimited},
			want:   []string{"big", "medium", "adult"},
		},
		{
			name:   "max subscribers",
			filter: SubredditFilter{MinSubscribers: Unlimited, MaxSubscribers: 60000, MinActivity: Unlimited},
			want:   []string{"medium", "small"},
		},
		{
			name:   "min activity",
			filter: SubredditFilter{MinSubscribers: Unlimited, MaxSubscribers: Unlimited, MinActivity: 500},
			want:   []string{"big", "adult"},
		},
		{
			name:   "exclude nsfw",
			filter: SubredditFilter{MinSubscribers: Unlimited, MaxSubscribers: Unlimited, MinActivity: Unlimited, ExcludeNSFW: true},
			want:   []string{"big", "medium", "small"},
		},
		{
			name:   "combined",
			filter: SubredditFilter{MinSubscribers: 10000, MaxSubscribers: Unlimited, MinActivity: 500, ExcludeNSFW: true},
			want:   []string{"big"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(records)
			names := make([]string, len(got))
			for i, r := range got {
				names[i] = r.Name
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestSortSubreddits(t *testing.T) {
	records := []*SubredditRecord{
		{Name: "Beta", Subscribers: 10, ActiveUsers: 5, CreatedUTC: 300},
		{Name: "alpha", Subscribers: 500, ActiveUsers: 1, CreatedUTC: 100},
		{Name: "Gamma", Subscribers: 3, ActiveUsers: 9, CreatedUTC: 200},
	}

	tests := []struct {
		key  string
		want []string
	}{
		{"subscribers-desc", []string{"alpha", "Beta", "Gamma"}},
		{"subscribers-asc", []string{"Gamma", "Beta", "alpha"}},
		{"activity-desc", []string{"Gamma", "Beta", "alpha"}},
		{"activity-asc", []string{"alpha", "Beta", "Gamma"}},
		{"created-desc", []string{"Beta", "Gamma", "alpha"}},
		{"created-asc", []string{"alpha", "Gamma", "Beta"}},
		{"name", []string{"alpha", "Beta", "Gamma"}},
		{"relevance", []string{"Beta", "alpha", "Gamma"}},
		{"bogus", []string{"Beta", "alpha", "Gamma"}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := SortSubreddits(records, tt.key)
			names := make([]string, len(got))
			for i, r := range got {
				names[i] = r.Name
			}
			assert.Equal(t, tt.want, names)
		})
	}

	// The input slice must not be reordered.
	assert.Equal(t, "Beta", records[0].Name)
}

func TestTitleFilterEmptyMatchesEverything(t *testing.T) {
	filter, err := NewTitleFilter("")
	require.NoError(t, err)

	assert.False(t, filter.IsSet())
	assert.True(t, filter.Match("anything at all"))
	assert.Empty(t, filter.Pattern())
}

func TestTitleFilterCaseInsensitive(t *testing.T) {
	filter, err := NewTitleFilter("golang|go 1\\.\\d+")
	require.NoError(t, err)

	assert.True(t, filter.IsSet())
	assert.True(t, filter.Match("GOLANG weekly"))
	assert.True(t, filter.Match("Go 1.25 released"))
	assert.False(t, filter.Match("rust news"))
	assert.Equal(t, "golang|go 1\\.\\d+", filter.Pattern())
}

func TestTitleFilterInvalidPattern(t *testing.T) {
	_, err := NewTitleFilter("[unclosed")
	require.Error(t, err)

	var cfgErr *pkgerrs.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "filter-title", cfgErr.Field)
}

func TestFilterPostsIdempotent(t *testing.T) {
	filter, err := NewTitleFilter("keep")
	require.NoError(t, err)

	records := []*PostRecord{
		{ID: "a", Title: "keep this"},
		{ID: "b", Title: "drop this"},
		{ID: "c", Title: "KEEP that too"},
	}

	once := filter.FilterPosts(records)
	twice := filter.FilterPosts(once)

	require.Len(t, once, 2)
	assert.Equal(t, once, twice)
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{500, "500"},
		{999, "999"},
		{1000, "1.0k"},
		{1500, "1.5k"},
		{999999, "1000.0k"},
		{1000000, "1.0M"},
		{2500000, "2.5M"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCount(tt.n), "FormatCount(%d)", tt.n)
	}
}
