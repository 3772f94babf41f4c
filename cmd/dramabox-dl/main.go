package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/saputra/dramabox-dl/internal/config"
	"github.com/saputra/dramabox-dl/internal/download"
	"github.com/saputra/dramabox-dl/internal/dramabox"
	"github.com/saputra/dramabox-dl/internal/history"
	httpx "github.com/saputra/dramabox-dl/internal/http"
	"github.com/saputra/dramabox-dl/internal/model"
	"github.com/saputra/dramabox-dl/internal/syncer"
)

func main() {
	// Command line flags
	var (
		configFlag   = flag.String("config", "config.yml", "Path to config file")
		outputFlag   = flag.String("output", "", "Download directory (overrides config)")
		dramaFlag    = flag.String("drama", "", "Download a single drama by ID")
		episodeFlag  = flag.Int("episode", -1, "Download one episode by index (requires -drama)")
		listFlag     = flag.Bool("list", false, "List the full catalog without downloading")
		rankFlag     = flag.Bool("rank", false, "List the trending chart without downloading")
		forYouFlag   = flag.Bool("foryou", false, "List recommendations without downloading")
		searchFlag   = flag.String("search", "", "Search the catalog by title")
		estimateFlag = flag.Bool("estimate", false, "Estimate the pending download size and exit")
		verboseFlag  = flag.Bool("verbose", false, "Show verbose output")
	)

	flag.Parse()

	// Load config
	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Apply flags
	if *outputFlag != "" {
		cfg.Download.Path = *outputFlag
	}
	if *verboseFlag {
		cfg.LogLevel = "debug"
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	paths := &model.PathConfig{DownloadsPath: cfg.Download.Path}
	httpClient := httpx.NewClient(cfg.API.Timeout, cfg.API.Retries, cfg.API.RetryDelay)
	api := dramabox.NewClient(httpClient, dramabox.Config{
		BaseURL: cfg.API.BaseURL,
		APIKey:  cfg.API.APIKey,
		Lang:    cfg.API.Lang,
		Paths:   paths,
	}, logger)
	crawler := dramabox.NewCrawler(api, cfg.API.PageSize, logger)

	// Create manager with progress callback
	manager := download.NewManager(httpClient, download.Config{
		EpisodeConcurrency: cfg.Download.EpisodeConcurrency,
		ProbeConcurrency:   cfg.Download.ProbeConcurrency,
		CoverResize:        cfg.Download.ResizeCovers,
		CoverMaxSize:       cfg.Download.CoverMaxSize,
	}, func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !*verboseFlag {
			return
		}

		prefix := ""
		switch event.Level {
		case download.LevelError:
			prefix = "❌ "
		case download.LevelWarning:
			prefix = "⚠️  "
		case download.LevelSuccess:
			prefix = "✅ "
		case download.LevelInfo:
			prefix = "ℹ️  "
		default:
			prefix = "   "
		}

		fmt.Println(prefix + event.Message)
	})

	store := history.Open(cfg.History.File)
	engine := syncer.NewReconciler(crawler, api, manager, store, logger)

	fmt.Println("📺 DramaBox Downloader")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	switch {
	case *searchFlag != "":
		err = runSearch(ctx, api, *searchFlag)
	case *listFlag:
		err = runList(ctx, crawler)
	case *rankFlag:
		err = runFeed(ctx, api.Ranking)
	case *forYouFlag:
		err = runFeed(ctx, api.ForYou)
	case *dramaFlag != "" && *episodeFlag >= 0:
		err = engine.SyncEpisode(ctx, *dramaFlag, *episodeFlag)
	case *dramaFlag != "":
		err = engine.SyncDrama(ctx, *dramaFlag)
	case *episodeFlag >= 0:
		err = fmt.Errorf("-episode requires -drama")
	default:
		err = runSync(ctx, engine, crawler, *estimateFlag)
	}

	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nCancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runSync performs the full catalog sync, or only sizes the pending queue
// when estimate is set.
func runSync(ctx context.Context, engine *syncer.Reconciler, crawler *dramabox.Crawler, estimate bool) error {
	if estimate {
		dramas, err := crawler.CrawlAll(ctx)
		if err != nil && len(dramas) == 0 {
			return err
		}
		queue := engine.PlanSync(dramas)
		total := engine.EstimateQueueSize(ctx, queue)
		fmt.Printf("%d drama(s) pending, about %s\n", len(queue), download.FormatBytes(total))
		return nil
	}

	stats, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("✨ Sync complete! %d downloaded, %d partial, %d failed, %d already up to date (%s)\n",
		stats.Completed, stats.Partial, stats.Failed, stats.UpToDate, stats.Duration.Round(1e9))
	return nil
}

func runList(ctx context.Context, crawler *dramabox.Crawler) error {
	dramas, err := crawler.CrawlAll(ctx)
	if err != nil && len(dramas) == 0 {
		return err
	}

	for _, d := range dramas {
		fmt.Printf("%-12s %-50s %d episodes\n", d.ID, d.Title, d.ChapterCount)
	}
	fmt.Printf("\n%d drama(s)\n", len(dramas))
	return nil
}

// runFeed prints the first page of a curated feed (trending chart or
// recommendations).
func runFeed(ctx context.Context, fetch func(context.Context, int) ([]*model.Drama, bool, error)) error {
	dramas, _, err := fetch(ctx, 1)
	if err != nil {
		return err
	}

	for _, d := range dramas {
		fmt.Printf("%-12s %-50s %d episodes\n", d.ID, d.Title, d.ChapterCount)
	}
	return nil
}

func runSearch(ctx context.Context, api *dramabox.Client, query string) error {
	dramas, _, err := api.Search(ctx, query, 1)
	if err != nil {
		return err
	}

	if len(dramas) == 0 {
		fmt.Printf("No results for %q\n", query)
		return nil
	}
	for _, d := range dramas {
		fmt.Printf("%-12s %-50s %d episodes\n", d.ID, d.Title, d.ChapterCount)
	}
	return nil
}
