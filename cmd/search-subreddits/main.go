// Command search-subreddits discovers subreddits by keyword search,
// popularity, creation date, or recommendation, with optional subscriber
// and activity filters and sorting.
//
// Credentials come from REDDIT_CLIENT_ID, REDDIT_CLIENT_SECRET, and the
// optional REDDIT_USER_AGENT environment variables (a .env file is loaded
// automatically when present).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/carlmjohnson/versioninfo"
	"github.com/fatih/color"
	cli "github.com/urfave/cli/v2"

	_ "github.com/joho/godotenv/autoload"

	"github.com/redditool/redditool"
)

const progressInterval = 5

var warnColor = color.New(color.FgYellow)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	app := &cli.App{
		Name:    "search-subreddits",
		Usage:   "discover and search Reddit subreddits",
		Version: versioninfo.Short(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "search",
				Usage: "search subreddits by keyword/topic",
			},
			&cli.BoolFlag{
				Name:  "popular",
				Usage: "list popular subreddits by subscriber count",
			},
			&cli.BoolFlag{
				Name:  "new",
				Usage: "list newly created subreddits",
			},
			&cli.StringFlag{
				Name:  "recommend",
				Usage: "get recommendations based on comma-separated subreddit names",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "number of subreddits to fetch",
				Value: 25,
			},
			&cli.Int64Flag{
				Name:  "min-subscribers",
				Usage: "minimum subscriber count filter",
				Value: redditool.Unlimited,
			},
			&cli.Int64Flag{
				Name:  "max-subscribers",
				Usage: "maximum subscriber count filter",
				Value: redditool.Unlimited,
			},
			&cli.Int64Flag{
				Name:  "min-activity",
				Usage: "minimum active user count filter",
				Value: redditool.Unlimited,
			},
			&cli.BoolFlag{
				Name:  "exclude-nsfw",
				Usage: "exclude NSFW subreddits (shown by default)",
			},
			&cli.StringFlag{
				Name:  "sort",
				Usage: "sort results: " + strings.Join(redditool.SubredditSortKeys, ", "),
				Value: "relevance",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "output format: text or json",
				Value: "text",
			},
		},
		Action: searchSubreddits,
	}
	return app.Run(args)
}

// discoveryMethod resolves the mutually exclusive mode flags.
func discoveryMethod(cctx *cli.Context) (method, query string, err error) {
	set := 0
	if cctx.String("search") != "" {
		set++
		method, query = "search", cctx.String("search")
	}
	if cctx.Bool("popular") {
		set++
		method = "popular"
	}
	if cctx.Bool("new") {
		set++
		method = "new"
	}
	if cctx.String("recommend") != "" {
		set++
		method, query = "recommendations", cctx.String("recommend")
	}
	if set != 1 {
		return "", "", fmt.Errorf("exactly one of --search, --popular, --new, or --recommend is required")
	}
	return method, query, nil
}

func searchSubreddits(cctx *cli.Context) error {
	method, query, err := discoveryMethod(cctx)
	if err != nil {
		return err
	}

	format := cctx.String("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format %q (expected text or json)", format)
	}

	limit := cctx.Int("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be positive")
	}
	if limit > redditool.MaxListingResults {
		warnColor.Fprintf(os.Stderr, "Warning: Reddit limits listings to ~%d entries. Setting limit to %d.\n",
			redditool.MaxListingResults, redditool.MaxListingResults)
		limit = redditool.MaxListingResults
	}

	cfg, err := redditool.ConfigFromEnv()
	if err != nil {
		return err
	}
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

	client, err := redditool.NewClient(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var records []*redditool.SubredditRecord
	if method == "recommendations" {
		records, err = fetchRecommendations(ctx, client, query)
	} else {
		records, err = collectSubreddits(ctx, client, method, query, limit)
	}
	if err != nil {
		return err
	}

	if len(records) == 0 {
		return fmt.Errorf("no subreddits found")
	}

	filter := redditool.SubredditFilter{
		MinSubscribers: cctx.Int64("min-subscribers"),
		MaxSubscribers: cctx.Int64("max-subscribers"),
		MinActivity:    cctx.Int64("min-activity"),
		ExcludeNSFW:    cctx.Bool("exclude-nsfw"),
	}

	totalFetched := len(records)
	filtered := filter.Apply(records)
	sorted := redditool.SortSubreddits(filtered, cctx.String("sort"))

	listing := &redditool.SubredditListing{
		Method:       method,
		Query:        query,
		TotalFetched: totalFetched,
		TotalMatched: len(sorted),
		Subreddits:   sorted,
	}

	if format == "json" {
		out, err := redditool.FormatJSON(listing)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}
	fmt.Println(redditool.FormatSubredditListingText(listing))
	return nil
}

func fetchRecommendations(ctx context.Context, client *redditool.Client, query string) ([]*redditool.SubredditRecord, error) {
	var names []string
	for _, name := range strings.Split(query, ",") {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	fmt.Fprintf(os.Stderr, "Getting recommendations based on: %s...\n", strings.Join(names, ", "))

	subs, err := client.GetRecommendedSubreddits(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("error fetching recommendations: %w", err)
	}

	records := make([]*redditool.SubredditRecord, 0, len(subs))
	for _, sub := range subs {
		records = append(records, redditool.NewSubredditRecord(sub))
	}
	return records, nil
}

func collectSubreddits(ctx context.Context, client *redditool.Client, method, query string, limit int) ([]*redditool.SubredditRecord, error) {
	var iterator *redditool.SubredditIterator
	switch method {
	case "search":
		fmt.Fprintf(os.Stderr, "Searching for subreddits matching: %q...\n", query)
		iterator = client.NewSubredditSearchIterator(ctx, query)
	case "popular":
		fmt.Fprintf(os.Stderr, "Fetching %d popular subreddits...\n", limit)
		iterator = client.NewPopularSubredditIterator(ctx)
	case "new":
		fmt.Fprintf(os.Stderr, "Fetching %d newly created subreddits...\n", limit)
		iterator = client.NewNewSubredditIterator(ctx)
	}

	var records []*redditool.SubredditRecord
	for len(records) < limit {
		sub, err := iterator.Next()
		if err != nil {
			if errors.Is(err, redditool.ErrExhausted) {
				break
			}
			if errors.Is(err, context.Canceled) {
				fmt.Fprintf(os.Stderr, "\nInterrupted! Fetched %d subreddits.\n", len(records))
				break
			}
			if len(records) == 0 {
				return nil, fmt.Errorf("error during fetching: %w", err)
			}
			warnColor.Fprintf(os.Stderr, "Warning: fetch stopped early: %v\n", err)
			break
		}

		records = append(records, redditool.NewSubredditRecord(sub))
		if len(records)%progressInterval == 0 {
			fmt.Fprintf(os.Stderr, "Progress: %d subreddits fetched...\n", len(records))
		}
	}

	return records, nil
}
