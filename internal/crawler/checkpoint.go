package crawler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cuongbtq/jobfeed/internal/domain"
)

// checkpointFile is the on-disk shape of a fetched batch.
type checkpointFile struct {
	CreatedAt time.Time           `json:"created_at"`
	Listings  []domain.RawListing `json:"listings"`
}

// WriteCheckpoint stores listings as dir/raw-<UTC timestamp>.json. The file
// is written under a temporary name and renamed so a crash never leaves a
// partial checkpoint behind.
func WriteCheckpoint(dir string, listings []domain.RawListing, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create checkpoint dir: %w", err)
	}

	data, err := json.MarshalIndent(checkpointFile{CreatedAt: now.UTC(), Listings: listings}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".raw-*.json.tmp")
	if err != nil {
		return "", fmt.Errorf("create checkpoint: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("sync checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close checkpoint: %w", err)
	}

	path := filepath.Join(dir, "raw-"+now.UTC().Format("20060102T150405.000Z")+".json")
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename checkpoint: %w", err)
	}
	return path, nil
}

// LoadCheckpoint reads a batch written by WriteCheckpoint.
func LoadCheckpoint(path string) ([]domain.RawListing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp checkpointFile
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("parse checkpoint %s: %w", path, err)
	}
	return cp.Listings, nil
}
