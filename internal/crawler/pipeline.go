package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/jobfeed/internal/dedupe"
	"github.com/cuongbtq/jobfeed/internal/domain"
)

// Collector fetches raw listings.
type Collector interface {
	Collect(ctx context.Context, urls []string, limit int, delay time.Duration) []domain.RawListing
}

// BatchNormalizer turns raw listings into pending jobs.
type BatchNormalizer interface {
	NormalizeBatch(ctx context.Context, raws []domain.RawListing) []domain.NormalizedJob
}

// SeenIndex remembers dedup keys across runs.
type SeenIndex interface {
	Filter(ctx context.Context, jobs []domain.NormalizedJob) ([]domain.NormalizedJob, error)
	Release(ctx context.Context, job domain.NormalizedJob) error
}

// JobCreator persists jobs.
type JobCreator interface {
	Create(ctx context.Context, job *domain.NormalizedJob) (bool, error)
}

// RunOptions selects the input of one crawl run.
type RunOptions struct {
	URLs  []string
	Limit int
	// Delay overrides the fetcher politeness delay when positive.
	Delay time.Duration
	// ResumeFrom, when set, skips fetching and loads this checkpoint file.
	ResumeFrom string
}

// RunStats summarizes one crawl run.
type RunStats struct {
	Fetched    int    `json:"fetched"`
	Normalized int    `json:"normalized"`
	Duplicates int    `json:"duplicates"`
	Inserted   int    `json:"inserted"`
	Skipped    int    `json:"skipped"`
	Checkpoint string `json:"checkpoint,omitempty"`
}

// PipelineConfig wires the pipeline stages. Index and CheckpointDir are optional.
type PipelineConfig struct {
	Collector     Collector
	Normalizer    BatchNormalizer
	Store         JobCreator
	Index         SeenIndex
	CheckpointDir string
	Logger        *slog.Logger
}

// Pipeline runs fetch, checkpoint, normalize, dedupe and persist.
type Pipeline struct {
	collector     Collector
	normalizer    BatchNormalizer
	store         JobCreator
	index         SeenIndex
	checkpointDir string
	logger        *slog.Logger
	now           func() time.Time
}

// NewPipeline creates a pipeline
func NewPipeline(cfg PipelineConfig) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		collector:     cfg.Collector,
		normalizer:    cfg.Normalizer,
		store:         cfg.Store,
		index:         cfg.Index,
		checkpointDir: cfg.CheckpointDir,
		logger:        logger,
		now:           time.Now,
	}
}

// Run executes one batch. Individual bad records never abort it; a store
// failure does and is returned.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (RunStats, error) {
	var stats RunStats

	raws, err := p.load(ctx, opts)
	if err != nil {
		return stats, err
	}
	stats.Fetched = len(raws)

	if opts.ResumeFrom == "" && p.checkpointDir != "" && len(raws) > 0 {
		path, err := WriteCheckpoint(p.checkpointDir, raws, p.now())
		if err != nil {
			p.logger.Error("Failed to write checkpoint", slog.Any("error", err))
		} else {
			stats.Checkpoint = path
			p.logger.Info("Checkpoint written", slog.String("path", path), slog.Int("listings", len(raws)))
		}
	}

	jobs := p.normalizer.NormalizeBatch(ctx, raws)
	stats.Normalized = len(jobs)

	unique := dedupe.Dedupe(jobs)
	stats.Duplicates = len(jobs) - len(unique)

	if p.index != nil {
		fresh, err := p.index.Filter(ctx, unique)
		if err != nil {
			p.logger.Warn("Dedup index unavailable, using batch dedup only", slog.Any("error", err))
		} else {
			stats.Skipped += len(unique) - len(fresh)
			unique = fresh
		}
	}

	for i := range unique {
		job := &unique[i]
		if err := job.Validate(); err != nil {
			p.logger.Warn("Skipping invalid job",
				slog.String("title", job.Title),
				slog.Any("error", err),
			)
			stats.Skipped++
			continue
		}

		created, err := p.store.Create(ctx, job)
		if err != nil {
			p.releaseClaims(unique[i:])
			return stats, fmt.Errorf("store job %q: %w", job.Title, err)
		}
		if !created {
			stats.Skipped++
			continue
		}
		stats.Inserted++
	}

	p.logger.Info("Crawl run finished",
		slog.Int("fetched", stats.Fetched),
		slog.Int("normalized", stats.Normalized),
		slog.Int("duplicates", stats.Duplicates),
		slog.Int("inserted", stats.Inserted),
		slog.Int("skipped", stats.Skipped),
	)
	return stats, nil
}

func (p *Pipeline) load(ctx context.Context, opts RunOptions) ([]domain.RawListing, error) {
	if opts.ResumeFrom != "" {
		raws, err := LoadCheckpoint(opts.ResumeFrom)
		if err != nil {
			return nil, err
		}
		p.logger.Info("Resuming from checkpoint",
			slog.String("path", opts.ResumeFrom),
			slog.Int("listings", len(raws)),
		)
		if opts.Limit > 0 && len(raws) > opts.Limit {
			raws = raws[:opts.Limit]
		}
		return raws, nil
	}
	return p.collector.Collect(ctx, opts.URLs, opts.Limit, opts.Delay), nil
}

// releaseClaims un-claims jobs that were never stored so the next run
// picks them up again.
func (p *Pipeline) releaseClaims(jobs []domain.NormalizedJob) {
	if p.index == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, job := range jobs {
		if err := p.index.Release(ctx, job); err != nil {
			p.logger.Warn("Failed to release dedup claim", slog.String("title", job.Title), slog.Any("error", err))
		}
	}
}
