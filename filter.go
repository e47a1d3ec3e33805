package redditool

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	pkgerrs "github.com/redditool/redditool/pkg/errors"
)

// SubredditFilter holds the predicates applied to a subreddit listing.
// Numeric bounds below zero are treated as unset.
type SubredditFilter struct {
	MinSubscribers int64
	MaxSubscribers int64
	MinActivity    int64
	ExcludeNSFW    bool
}

// NewSubredditFilter returns a filter with every predicate unset.
func NewSubredditFilter() SubredditFilter {
	return SubredditFilter{
		MinSubscribers: Unlimited,
		MaxSubscribers: Unlimited,
		MinActivity:    Unlimited,
	}
}

// Apply returns the subset of records satisfying every supplied predicate.
// Callers report len before and after to surface how much was filtered out.
func (f SubredditFilter) Apply(records []*SubredditRecord) []*SubredditRecord {
	filtered := make([]*SubredditRecord, 0, len(records))
	for _, record := range records {
		if f.MinSubscribers >= 0 && record.Subscribers < f.MinSubscribers {
			continue
		}
		if f.MaxSubscribers >= 0 && record.Subscribers > f.MaxSubscribers {
			continue
		}
		if f.ExcludeNSFW && record.Over18 {
			continue
		}
		if f.MinActivity >= 0 && int64(record.ActiveUsers) < f.MinActivity {
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered
}

// SubredditSortKeys lists the sort keys accepted by SortSubreddits.
var SubredditSortKeys = []string{
	"relevance",
	"subscribers-desc", "subscribers-asc",
	"activity-desc", "activity-asc",
	"created-desc", "created-asc",
	"name",
}

// SortSubreddits orders records by the named key, descending or ascending
// as the key encodes. "relevance" and unknown keys leave the input order
// unchanged. The sort is stable and the input slice is not modified.
func SortSubreddits(records []*SubredditRecord, key string) []*SubredditRecord {
	sorted := make([]*SubredditRecord, len(records))
	copy(sorted, records)

	var less func(a, b *SubredditRecord) bool
	switch key {
	case "subscribers-desc":
		less = func(a, b *SubredditRecord) bool { return a.Subscribers > b.Subscribers }
	case "subscribers-asc":
		less = func(a, b *SubredditRecord) bool { return a.Subscribers < b.Subscribers }
	case "activity-desc":
		less = func(a, b *SubredditRecord) bool { return a.ActiveUsers > b.ActiveUsers }
	case "activity-asc":
		less = func(a, b *SubredditRecord) bool { return a.ActiveUsers < b.ActiveUsers }
	case "created-desc":
		less = func(a, b *SubredditRecord) bool { return a.CreatedUTC > b.CreatedUTC }
	case "created-asc":
		less = func(a, b *SubredditRecord) bool { return a.CreatedUTC < b.CreatedUTC }
	case "name":
		less = func(a, b *SubredditRecord) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	default:
		return sorted
	}

	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	return sorted
}

// TitleFilter matches post titles against a case-insensitive regular
// expression. The zero value matches everything.
type TitleFilter struct {
	pattern *regexp.Regexp
	source  string
}

// NewTitleFilter compiles the pattern case-insensitively. An invalid
// pattern is a configuration error; callers must compile before any
// fetching proceeds.
func NewTitleFilter(pattern string) (*TitleFilter, error) {
	if pattern == "" {
		return &TitleFilter{}, nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, &pkgerrs.ConfigError{
			Field:   "filter-title",
			Message: fmt.Sprintf("invalid regex pattern %q: %v", pattern, err),
		}
	}
	return &TitleFilter{pattern: re, source: pattern}, nil
}

// Match reports whether the title satisfies the filter.
func (f *TitleFilter) Match(title string) bool {
	if f == nil || f.pattern == nil {
		return true
	}
	return f.pattern.MatchString(title)
}

// IsSet reports whether a pattern was supplied.
func (f *TitleFilter) IsSet() bool {
	return f != nil && f.pattern != nil
}

// Pattern returns the original pattern source.
func (f *TitleFilter) Pattern() string {
	if f == nil {
		return ""
	}
	return f.source
}

// FilterPosts retains the records whose titles match the filter. Applying
// the same filter twice yields the same list.
func (f *TitleFilter) FilterPosts(records []*PostRecord) []*PostRecord {
	if !f.IsSet() {
		return records
	}
	matched := make([]*PostRecord, 0, len(records))
	for _, record := range records {
		if f.Match(record.Title) {
			matched = append(matched, record)
		}
	}
	return matched
}

// FormatCount renders a count the way the listings do: 500 stays "500",
// 1500 becomes "1.5k", 2500000 becomes "2.5M".
func FormatCount(n int64) string {
	switch {
	case n >= 1000000:
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	case n >= 1000:
		return fmt.Sprintf("%.1fk", float64(n)/1000)
	default:
		return fmt.Sprintf("%d", n)
	}
}
