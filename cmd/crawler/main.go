package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/crawlsmith/rendercrawl/internal/browser"
	"github.com/crawlsmith/rendercrawl/internal/config"
	"github.com/crawlsmith/rendercrawl/internal/crawl"
	"github.com/crawlsmith/rendercrawl/internal/monitor"
	"github.com/crawlsmith/rendercrawl/internal/report"
	"github.com/crawlsmith/rendercrawl/internal/scheduler"
	"github.com/crawlsmith/rendercrawl/internal/urlsource"
)

var (
	cfgFile    string
	verbose    bool
	count      int
	urlFile    string
	resultFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "crawler [N] [url_file]",
		Short:   "rendercrawl — polite, resource-aware headless crawl coordinator",
		Version: config.Version,
		Long: `rendercrawl drives a headless browser across a batch of URLs,
enforcing per-domain politeness delays and gating concurrency against
live CPU/memory pressure, recording per-page size, status, and timing.`,
		Args: cobra.MaximumNArgs(2),
		RunE: runCrawl,
	}

	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().IntVarP(&count, "count", "n", 5, "number of URLs to crawl")
	rootCmd.Flags().StringVarP(&urlFile, "url-file", "u", "urls.txt", "path to newline-delimited URL file")
	rootCmd.Flags().StringVarP(&resultFile, "output", "o", "", "path to write the JSON result document")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCrawl(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		if n, err := parsePositiveInt(args[0]); err == nil {
			count = n
		}
	}
	if len(args) > 1 {
		urlFile = args[1]
	}

	logger := setupLogger()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if resultFile != "" {
		cfg.Output.ResultFile = resultFile
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	urls, err := urlsource.Load(urlFile, count, logger)
	if err != nil {
		return fmt.Errorf("load urls: %w", err)
	}
	if len(urls) == 0 {
		return fmt.Errorf("no urls loaded from %s", urlFile)
	}

	sched := scheduler.New(cfg.Crawler, logger)
	mon := monitor.New(cfg.Crawler, logger)
	sup := browser.New(cfg.Crawler, logger, cfg.Browser.Stealth)
	orchestrator := crawl.New(sched, mon, sup, logger)

	actorRef := crawl.Spawn(orchestrator, sup, logger)

	start := time.Now()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results, err := actorRef.Call(ctx, crawl.RunRequest{URLs: urls})
	wallClock := time.Since(start).Seconds()
	actorRef.Cancel()
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	outPath := cfg.Output.ResultFile
	if err := report.Save(outPath, results, wallClock); err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	logger.Info("crawl complete", "urls", len(urls), "wall_clock_sec", wallClock, "output", outPath)

	report.PrintSummary(results)
	return nil
}

func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

func parsePositiveInt(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid count %q", s)
	}
	return n, nil
}
