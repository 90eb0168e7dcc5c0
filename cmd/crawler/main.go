package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cuongbtq/jobfeed/internal/bootstrap"
	"github.com/cuongbtq/jobfeed/internal/classifier"
	"github.com/cuongbtq/jobfeed/internal/config"
	"github.com/cuongbtq/jobfeed/internal/crawler"
	"github.com/cuongbtq/jobfeed/internal/dedupe"
	"github.com/cuongbtq/jobfeed/internal/normalizer"
	"github.com/cuongbtq/jobfeed/internal/storage"
)

const serviceName = "jobfeed-crawler"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	configPath := flag.String("config", config.PathFromEnv("CRAWLER_CONFIG_PATH", "configs/crawler/config.yaml"), "Path to configuration file")
	limit := flag.Int("limit", -1, "Maximum listings to fetch (overrides config)")
	delay := flag.Duration("delay", 0, "Politeness delay between requests (overrides config)")
	urls := flag.String("urls", "", "Comma separated listing URLs (overrides config)")
	resume := flag.String("resume", "", "Re-process a checkpoint file instead of fetching")
	dryRun := flag.Bool("dry-run", false, "Use an in-memory store instead of PostgreSQL")
	schedule := flag.Duration("schedule", -1, "Run repeatedly at this interval (overrides config, 0 runs once)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if *urls != "" {
		cfg.Crawler.URLs = splitURLs(*urls)
	}
	if *limit >= 0 {
		cfg.Crawler.Limit = *limit
	}
	if *schedule >= 0 {
		cfg.Crawler.Schedule = *schedule
	}

	if err := cfg.ValidateCrawlerConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !*dryRun {
		if err := cfg.ValidateDatabase(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}

	appLogger, err := bootstrap.InitLogger(&cfg.Logging, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store crawler.JobCreator
	if *dryRun {
		appLogger.Info("Dry run, jobs are kept in memory")
		store = storage.NewMemoryStore()
	} else {
		dbClient, err := bootstrap.InitPostgreSQL(&cfg.Database, appLogger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer dbClient.Close()

		if cfg.Database.AutoMigrate {
			if err := storage.Migrate(ctx, dbClient); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
		}
		store = storage.NewPostgresStore(dbClient)
	}

	index, closeIndex := openSeenIndex(*dryRun, cfg, appLogger.Logger)
	defer closeIndex()

	var cls normalizer.Classifier
	llm, err := classifier.New(ctx, classifier.Config{
		APIKey: cfg.Normalizer.ClassifierAPIKey,
		Model:  cfg.Normalizer.ClassifierModel,
	})
	switch {
	case err == nil:
		cls = llm
	case errors.Is(err, classifier.ErrNotConfigured):
		appLogger.Info("No classifier API key, uncategorized jobs fall back to other")
		cls = classifier.Noop{}
	default:
		appLogger.Warn("Classifier unavailable, uncategorized jobs fall back to other", slog.Any("error", err))
		cls = classifier.Noop{}
	}

	fetcher := crawler.NewFetcher(nil, crawler.NewExtractor(crawler.DefaultSelectors), crawler.FetcherConfig{
		UserAgent:  cfg.Crawler.UserAgent,
		Timeout:    cfg.Crawler.Timeout,
		Delay:      cfg.Crawler.Delay,
		MaxRetries: cfg.Crawler.MaxRetries,
	}, appLogger.Logger)

	pipeline := crawler.NewPipeline(crawler.PipelineConfig{
		Collector: fetcher,
		Normalizer: normalizer.NewNormalizer(&normalizer.Config{
			Logger:                appLogger.Logger,
			Classifier:            cls,
			ClassifierConcurrency: cfg.Normalizer.ClassifierConcurrency,
			ClassifierTimeout:     cfg.Normalizer.ClassifierTimeout,
		}),
		Store:         store,
		Index:         index,
		CheckpointDir: cfg.Crawler.CheckpointDir,
		Logger:        appLogger.Logger,
	})

	opts := crawler.RunOptions{
		URLs:       cfg.Crawler.URLs,
		Limit:      cfg.Crawler.Limit,
		Delay:      *delay,
		ResumeFrom: *resume,
	}

	if cfg.Crawler.Schedule > 0 && *resume == "" {
		scheduler := crawler.NewScheduler(pipeline, opts, cfg.Crawler.Schedule, appLogger.Logger)
		if err := scheduler.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		appLogger.Info("Shutting down crawler scheduler...")
		scheduler.Stop()
		return nil
	}

	stats, err := pipeline.Run(ctx, opts)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}

func splitURLs(s string) []string {
	var out []string
	for _, u := range strings.Split(s, ",") {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// openSeenIndex connects the cross-run dedup index. Dry runs leave the shared
// index untouched and get nil.
func openSeenIndex(dryRun bool, cfg *config.Config, logger *slog.Logger) (crawler.SeenIndex, func()) {
	noop := func() {}
	if dryRun {
		logger.Info("Dry run, cross-run dedup index disabled")
		return nil, noop
	}

	redisClient, err := bootstrap.InitRedis(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis unavailable, using batch dedup only", slog.Any("error", err))
		return nil, noop
	}
	if redisClient == nil {
		return nil, noop
	}

	index := dedupe.NewRedisIndex(redisClient.GetClient(), cfg.Crawler.DedupTTL, logger)
	return index, func() { _ = redisClient.Close() }
}
