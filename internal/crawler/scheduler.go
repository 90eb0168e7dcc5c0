package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Runner executes one crawl batch.
type Runner interface {
	Run(ctx context.Context, opts RunOptions) (RunStats, error)
}

// Scheduler runs the pipeline on a fixed interval and once at start.
// Overlapping runs are skipped.
type Scheduler struct {
	cron     *cron.Cron
	runner   Runner
	opts     RunOptions
	spec     string
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler firing every interval
func NewScheduler(runner Runner, opts RunOptions, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:     cron.New(),
		runner:   runner,
		opts:     opts,
		spec:     fmt.Sprintf("@every %s", interval),
		interval: interval,
		logger:   logger,
	}
}

// Start registers the job, starts cron and triggers an immediate run.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("crawl interval must be positive, got %s", s.interval)
	}
	if _, err := s.cron.AddFunc(s.spec, func() { s.runOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Crawl scheduler started", slog.String("spec", s.spec))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runOnce(ctx)
	}()

	return nil
}

// Stop stops cron and waits for a running batch to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("Crawl scheduler stopped")
}

func (s *Scheduler) runOnce(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("Previous crawl still running, skipping tick")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	stats, err := s.runner.Run(ctx, s.opts)
	if err != nil {
		s.logger.Error("Scheduled crawl failed", slog.Any("error", err))
		return
	}
	s.logger.Info("Scheduled crawl complete",
		slog.Int("inserted", stats.Inserted),
		slog.Int("duplicates", stats.Duplicates),
	)
}
