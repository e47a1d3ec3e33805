// Command fetch-comments fetches one or more Reddit posts together with
// their nested comment trees and prints them as text or JSON.
//
// Credentials come from REDDIT_CLIENT_ID, REDDIT_CLIENT_SECRET, and the
// optional REDDIT_USER_AGENT environment variables (a .env file is loaded
// automatically when present).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/carlmjohnson/versioninfo"
	"github.com/fatih/color"
	cli "github.com/urfave/cli/v2"

	_ "github.com/joho/godotenv/autoload"

	"github.com/redditool/redditool"
	"github.com/redditool/redditool/pkg/types"
)

var warnColor = color.New(color.FgYellow)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	app := &cli.App{
		Name:      "fetch-comments",
		Usage:     "fetch comments (including nested replies) from Reddit post(s)",
		ArgsUsage: "POST_ID [POST_ID ...]",
		Version:   versioninfo.Short(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "output format: text or json",
				Value: "text",
			},
			&cli.IntFlag{
				Name:  "max-depth",
				Usage: "maximum comment depth to fetch (default: unlimited)",
				Value: redditool.Unlimited,
			},
			&cli.IntFlag{
				Name:  "max-comments",
				Usage: "maximum comments per level to fetch (default: unlimited)",
				Value: redditool.Unlimited,
			},
			&cli.BoolFlag{
				Name:  "top-level-only",
				Usage: "fetch only top-level comments (equivalent to --max-depth 0)",
			},
		},
		Action: fetchComments,
	}
	return app.Run(args)
}

func fetchComments(cctx *cli.Context) error {
	postIDs := cctx.Args().Slice()
	if len(postIDs) == 0 {
		return fmt.Errorf("at least one post ID is required")
	}

	format := cctx.String("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format %q (expected text or json)", format)
	}

	maxDepth := cctx.Int("max-depth")
	if cctx.Bool("top-level-only") {
		maxDepth = 0
	}
	maxComments := cctx.Int("max-comments")

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := redditool.ConfigFromEnv()
	if err != nil {
		return err
	}
	cfg.Logger = logger

	client, err := redditool.NewClient(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	threads, err := fetchThreads(ctx, client, postIDs, redditool.TreeOptions{
		MaxDepth:    maxDepth,
		MaxPerLevel: maxComments,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	return emit(threads, format)
}

// commentsFetcher is the client surface the fetch loop needs; *redditool.Client
// satisfies it.
type commentsFetcher interface {
	redditool.MoreResolver
	GetComments(ctx context.Context, request *types.CommentsRequest) (*types.CommentsResponse, error)
}

// fetchThreads fetches each requested post with its comment tree. A post that
// fails to fetch is warned about and skipped; the run fails only when no post
// succeeded.
func fetchThreads(ctx context.Context, client commentsFetcher, postIDs []string, opts redditool.TreeOptions) ([]*redditool.ThreadRecord, error) {
	var threads []*redditool.ThreadRecord
	for i, postID := range postIDs {
		if len(postIDs) > 1 {
			fmt.Fprintf(os.Stderr, "Fetching post %d/%d: %s...\n", i+1, len(postIDs), postID)
		}

		resp, err := client.GetComments(ctx, &types.CommentsRequest{PostID: postID})
		if err != nil {
			warnColor.Fprintf(os.Stderr, "Warning: error fetching post %s: %v\n", postID, err)
			continue
		}

		perPost := opts
		perPost.LinkID = postID
		threads = append(threads, redditool.BuildThread(ctx, client, resp, perPost))
	}

	if len(threads) == 0 {
		return nil, fmt.Errorf("no posts could be fetched successfully")
	}
	return threads, nil
}

func emit(threads []*redditool.ThreadRecord, format string) error {
	if format == "json" {
		var payload any = threads
		if len(threads) == 1 {
			payload = threads[0]
		}
		out, err := redditool.FormatJSON(payload)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	if len(threads) == 1 {
		fmt.Println(redditool.FormatThreadText(threads[0]))
		return nil
	}
	fmt.Println(redditool.FormatThreadsText(threads))
	return nil
}
