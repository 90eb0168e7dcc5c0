package dedupe

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/jobfeed/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "dedup:"

// RedisIndex remembers keys across crawl runs so a listing seen in an
// earlier batch is not inserted again.
type RedisIndex struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisIndex creates an index whose entries expire after ttl (0 = never)
func NewRedisIndex(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisIndex {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisIndex{rdb: rdb, ttl: ttl, logger: logger}
}

// Filter claims each job's key and returns only the jobs whose key was
// not claimed before. Order is preserved.
func (r *RedisIndex) Filter(ctx context.Context, jobs []domain.NormalizedJob) ([]domain.NormalizedJob, error) {
	out := make([]domain.NormalizedJob, 0, len(jobs))

	for _, job := range jobs {
		claimed, err := r.rdb.SetNX(ctx, redisKey(job), job.ID, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("claim dedup key: %w", err)
		}
		if !claimed {
			r.logger.Debug("Skipping listing seen in an earlier run",
				slog.String("title", job.Title),
				slog.String("company", job.CompanyName),
			)
			continue
		}
		out = append(out, job)
	}

	return out, nil
}

// Release forgets a job's key, used when the insert that followed the
// claim failed.
func (r *RedisIndex) Release(ctx context.Context, job domain.NormalizedJob) error {
	return r.rdb.Del(ctx, redisKey(job)).Err()
}

func redisKey(job domain.NormalizedJob) string {
	sum := sha1.Sum([]byte(Key(job)))
	return keyPrefix + hex.EncodeToString(sum[:])
}
