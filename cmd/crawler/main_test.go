package main

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cuongbtq/jobfeed/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestOpenSeenIndex(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name      string
		dryRun    bool
		redisURL  func(mr *miniredis.Miniredis) string
		wantIndex bool
		wantConns bool
	}{
		{
			name:      "dry run never connects",
			dryRun:    true,
			redisURL:  func(mr *miniredis.Miniredis) string { return "redis://" + mr.Addr() + "/0" },
			wantIndex: false,
			wantConns: false,
		},
		{
			name:      "real run uses redis",
			redisURL:  func(mr *miniredis.Miniredis) string { return "redis://" + mr.Addr() + "/0" },
			wantIndex: true,
			wantConns: true,
		},
		{
			name:      "no redis configured",
			redisURL:  func(*miniredis.Miniredis) string { return "" },
			wantIndex: false,
			wantConns: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr := miniredis.RunT(t)
			cfg := &config.Config{
				Redis:   config.RedisConfig{URL: tt.redisURL(mr)},
				Crawler: config.CrawlerConfig{DedupTTL: time.Hour},
			}

			index, closeIndex := openSeenIndex(tt.dryRun, cfg, logger)
			defer closeIndex()

			assert.Equal(t, tt.wantIndex, index != nil)
			assert.Equal(t, tt.wantConns, mr.TotalConnectionCount() > 0)
			assert.Empty(t, mr.Keys())
		})
	}
}
