package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go-jobsheet-automation/internal/browser"
	"go-jobsheet-automation/internal/config"
	"go-jobsheet-automation/internal/runner"
	"go-jobsheet-automation/internal/scraper"
	"go-jobsheet-automation/internal/scraper/justjoinit"
	"go-jobsheet-automation/internal/scraper/pracuj"
	"go-jobsheet-automation/internal/store"
	"go-jobsheet-automation/internal/telegram"

	"github.com/playwright-community/playwright-go"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var (
	configPath string
	siteFlags  []string
	dryRun     bool
	headless   bool
	timeout    time.Duration
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "scraper",
	Short: "Collects new job offers from pracuj.pl and justjoin.it into a spreadsheet.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			logLevel.Set(slog.LevelDebug)
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cmd.Flags().Changed("site") {
			cfg.Sites = siteFlags
		}
		if cmd.Flags().Changed("headless") {
			cfg.Headless = headless
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		slog.Info("🔧 Config loaded", "keywords", cfg.SearchKeywords, "location", cfg.SearchLocation, "sites", cfg.Sites, "store", cfg.Store)

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		return run(ctx, cfg)
	},
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&configPath, "config", config.DefaultPath, "path to the YAML config")
	flags.StringSliceVar(&siteFlags, "site", nil, "site to scrape (pracuj, justjoinit); repeatable")
	flags.BoolVar(&dryRun, "dry-run", false, "collect offers without writing to the store")
	flags.BoolVar(&headless, "headless", true, "run Chromium without a window")
	flags.DurationVar(&timeout, "timeout", 30*time.Minute, "abort the run after this long")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log debug output")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := slog.Default()

	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store, err)
	}
	defer st.Close()

	var notifier runner.Notifier
	if cfg.TelegramEnabled() {
		bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			logger.Warn("⚠️ Telegram disabled", "err", err)
		} else {
			notifier = bot
			logger.Info("🤖 Telegram Bot initialized")
		}
	}

	pw, err := browser.NewPlaywright(ctx, browser.Options{
		Headless:        cfg.Headless,
		PageLoadTimeout: cfg.PageLoadTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to init Playwright: %w", err)
	}
	defer pw.Close()

	screenshots := browser.NewScreenshotDebugger(cfg.ScreenshotDir, logger)
	siteOpts := scraper.SiteOptions{
		ElementTimeout: cfg.ElementWaitTimeout,
		SettleDelay:    cfg.SettleDelay,
		ScrollStep:     cfg.ScrollStep,
		Logger:         logger,
	}
	var collectors []runner.Collector
	for _, name := range cfg.Sites {
		site, err := newSite(name, siteOpts)
		if err != nil {
			return err
		}
		session, err := pw.NewSession(loadCookies(cfg.CookiesPath, name, logger))
		if err != nil {
			return fmt.Errorf("failed to create browser context for %s: %w", name, err)
		}
		defer session.Close()

		collectors = append(collectors, scraper.NewDriver(site, session, scraper.DriverOptions{
			Params:      scraper.SearchParams{Keywords: cfg.SearchKeywords, Location: cfg.SearchLocation},
			Scheduler:   schedulerOptions(cfg),
			Screenshots: screenshots,
			Logger:      logger,
		}))
	}
	logger.Info("✅ Browser initialized successfully!")

	report, err := runner.New(st, collectors, runner.Options{
		Notifier:   notifier,
		ResultsDir: cfg.ResultsDir,
		DryRun:     dryRun,
		Logger:     logger,
	}).Run(ctx)
	if err != nil {
		return err
	}
	if err := report.Err(); err != nil {
		return fmt.Errorf("run finished with errors: %w", err)
	}
	return nil
}

// schedulerOptions builds the options of one site run, pacing limiter
// included. Call it once per site.
func schedulerOptions(cfg *config.Config) scraper.SchedulerOptions {
	opts := scraper.SchedulerOptions{
		MaxOpenPages:         cfg.MaxOpenPages,
		DuplicateLimit:       cfg.DuplicateLimit,
		ScrollDuplicateLimit: cfg.ScrollDuplicateLimit,
		MaxScrollAttempts:    cfg.MaxScrollAttempts,
	}
	if cfg.OffersPerSecond > 0 {
		opts.Limiter = rate.NewLimiter(rate.Limit(cfg.OffersPerSecond), 1)
	}
	return opts
}

func newSite(name string, opts scraper.SiteOptions) (scraper.Site, error) {
	switch name {
	case config.SitePracuj:
		return pracuj.NewPracujScraper(opts), nil
	case config.SiteJustJoinIt:
		return justjoinit.NewJustJoinItScraper(opts), nil
	default:
		return nil, fmt.Errorf("unknown site %q", name)
	}
}

// loadCookies reads cookies-<site>.json from dir. A missing file is normal.
func loadCookies(dir, site string, logger *slog.Logger) []playwright.OptionalCookie {
	if dir == "" {
		return nil
	}
	path := filepath.Join(dir, fmt.Sprintf("cookies-%s.json", site))
	cookies, err := browser.LoadCookies(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("⚠️ Could not load cookies, continuing", "site", site, "err", err)
		}
		return nil
	}
	logger.Info("🍪 Loaded cookies", "site", site, "count", len(cookies))
	return cookies
}
