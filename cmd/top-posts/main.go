// Command top-posts lists the top posts of a subreddit within a time
// window, optionally filtered by a title regex, in stream, text, or JSON
// format.
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
	"syscall"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/fatih/color"
	cli "github.com/urfave/cli/v2"

	_ "github.com/joho/godotenv/autoload"

	"github.com/redditool/redditool"
	"github.com/redditool/redditool/pkg/types"
)

const progressInterval = 10

var warnColor = color.New(color.FgYellow)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	app := &cli.App{
		Name:      "top-posts",
		Usage:     "list top posts from a Reddit subreddit with pagination",
		ArgsUsage: "SUBREDDIT",
		Version:   versioninfo.Short(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "time",
				Usage: "time filter: hour, day, week, month, year, or all",
				Value: "week",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "number of posts to fetch (max: 1000)",
				Value: redditool.MaxListingResults,
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "output format: stream, text, or json",
				Value: "stream",
			},
			&cli.StringFlag{
				Name:  "filter-title",
				Usage: "filter posts by title using a case-insensitive regex",
			},
		},
		Action: listTopPosts,
	}
	return app.Run(args)
}

func listTopPosts(cctx *cli.Context) error {
	if cctx.Args().Len() != 1 {
		return fmt.Errorf("exactly one subreddit name is required")
	}
	subreddit := cctx.Args().First()

	format := cctx.String("format")
	if format != "stream" && format != "text" && format != "json" {
		return fmt.Errorf("invalid format %q (expected stream, text, or json)", format)
	}

	timeFilter := types.TimeFilter(cctx.String("time"))
	if !types.ValidTimeFilter(timeFilter) {
		return fmt.Errorf("invalid time filter %q (expected hour, day, week, month, year, or all)", timeFilter)
	}

	limit := cctx.Int("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be positive")
	}
	if limit > redditool.MaxListingResults {
		warnColor.Fprintf(os.Stderr, "Warning: Reddit limits listings to ~%d posts. Setting limit to %d.\n",
			redditool.MaxListingResults, redditool.MaxListingResults)
		limit = redditool.MaxListingResults
	}

	// The title filter is compiled before any network access so a bad
	// pattern fails the run without fetching anything.
	titleFilter, err := redditool.NewTitleFilter(cctx.String("filter-title"))
	if err != nil {
		return err
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

	filterMsg := ""
	if titleFilter.IsSet() {
		filterMsg = fmt.Sprintf(" with title filter: %q", titleFilter.Pattern())
	}
	fmt.Fprintf(os.Stderr, "Fetching top %d posts from r/%s (%s)%s...\n",
		limit, subreddit, timeFilter, filterMsg)
	if format == "stream" {
		fmt.Fprintln(os.Stderr, "Streaming results (progress on stderr):")
		fmt.Println()
	}

	iterator := client.NewTopIterator(ctx, subreddit, timeFilter)

	var matched []*redditool.PostRecord
	totalFetched := 0
	interrupted := false
	startTime := time.Now()

	for totalFetched < limit {
		post, err := iterator.Next()
		if err != nil {
			if errors.Is(err, redditool.ErrExhausted) {
				break
			}
			if errors.Is(err, context.Canceled) {
				interrupted = true
				fmt.Fprintf(os.Stderr, "\nInterrupted! Fetched %d posts, %d matched.\n",
					totalFetched, len(matched))
				break
			}
			if totalFetched == 0 {
				return fmt.Errorf("error accessing subreddit r/%s: %w", subreddit, err)
			}
			warnColor.Fprintf(os.Stderr, "Warning: fetch stopped early: %v\n", err)
			break
		}
		totalFetched++

		if format != "stream" && totalFetched%progressInterval == 0 {
			reportProgress(totalFetched, limit, startTime)
		}

		record := redditool.NewPostRecord(post)
		if !titleFilter.Match(record.Title) {
			continue
		}
		matched = append(matched, record)

		if format == "stream" {
			fmt.Println(redditool.FormatPostStreamLine(record, len(matched), limit))
		}
	}

	listing := &redditool.PostListing{
		Subreddit:    subreddit,
		TimeFilter:   string(timeFilter),
		Limit:        limit,
		TitleFilter:  titleFilter.Pattern(),
		TotalFetched: totalFetched,
		TotalMatched: len(matched),
		Posts:        matched,
	}

	switch format {
	case "text":
		fmt.Println(redditool.FormatPostListingText(listing))
	case "json":
		out, err := redditool.FormatJSON(listing)
		if err != nil {
			return err
		}
		fmt.Println(out)
	case "stream":
		if !interrupted {
			fmt.Fprintf(os.Stderr, "Completed: Found %d matching posts out of %d total fetched.\n",
				len(matched), totalFetched)
		}
	}

	return nil
}

func reportProgress(fetched, limit int, startTime time.Time) {
	elapsed := time.Since(startTime).Seconds()
	if elapsed <= 0 {
		return
	}
	postsPerSec := float64(fetched) / elapsed
	etaMins := 0
	if postsPerSec > 0 {
		etaMins = int(float64(limit-fetched) / postsPerSec / 60)
	}
	fmt.Fprintf(os.Stderr, "Progress: %d/%d posts fetched (~%dm remaining)...\n", fetched, limit, etaMins)
}
