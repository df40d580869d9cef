package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/deusflow/goodnews/internal/app"
	"github.com/deusflow/goodnews/internal/config"
	"github.com/deusflow/goodnews/internal/logger"
	"github.com/deusflow/goodnews/internal/news"
	"github.com/deusflow/goodnews/internal/rss"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

type runEnv struct {
	cfg   *config.Config
	feeds []news.FeedSource
}

func setup() (*runEnv, func(), error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	closer := logger.Init(cfg.Logger())
	cleanup := func() { closer.Close() }

	feeds, err := rss.LoadFeeds(cfg.FeedsConfigPath)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	logger.Debug("loaded feeds", "path", cfg.FeedsConfigPath, "count", len(feeds))
	return &runEnv{cfg: cfg, feeds: feeds}, cleanup, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "goodnews",
		Short:        "Aggregate a small daily selection of good news",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), fetchCmd(), feedsCmd(), versionCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			return app.New(rt.cfg, rt.feeds).Serve(cmd.Context())
		},
	}
}

func fetchCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the feeds once and print a selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			items, err := app.New(rt.cfg, rt.feeds).Fetch(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}
			_, err = fmt.Fprint(out, app.FormatSelection(items, rt.cfg.ContentSnippetLength))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the selection as JSON")
	return cmd
}

func feedsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feeds",
		Short: "List the configured feeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tURL\tHOMEPAGE")
			for _, f := range rt.feeds {
				fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name, f.URL, f.Homepage)
			}
			return w.Flush()
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "goodnews", version)
		},
	}
}
