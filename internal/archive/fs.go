package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FSConfig captures the parameters for the filesystem snapshot store.
type FSConfig struct {
	// BaseDir is the root directory snapshots are written under.
	BaseDir string `mapstructure:"base_dir" yaml:"base_dir"`
}

// FSStore writes snapshots to the local filesystem, one directory per job
// number with timestamped files inside.
type FSStore struct {
	baseDir string
}

// NewFS creates a filesystem-backed snapshot store, verifying the base
// directory exists and is writable up front.
func NewFS(cfg FSConfig) (*FSStore, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}

	info, err := os.Stat(cfg.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			if mkErr := os.MkdirAll(cfg.BaseDir, 0o750); mkErr != nil {
				return nil, fmt.Errorf("failed to create base directory: %w", mkErr)
			}
		} else {
			return nil, fmt.Errorf("failed to stat base directory: %w", err)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("base directory path is not a directory")
	}

	testFile := filepath.Join(cfg.BaseDir, ".writable_test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return nil, fmt.Errorf("base directory is not writable: %w", err)
	}
	if err := os.Remove(testFile); err != nil {
		return nil, fmt.Errorf("failed to clean up test file: %w", err)
	}

	return &FSStore{baseDir: cfg.BaseDir}, nil
}

// Save writes the snapshot under <base>/<jobNumber>/<utc timestamp>.html and
// returns a file:// URI.
func (s *FSStore) Save(_ context.Context, jobNumber string, body []byte) (string, error) {
	rel, err := snapshotPath(jobNumber, time.Now().UTC())
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.baseDir, rel)

	cleanBase := filepath.Clean(s.baseDir)
	if !strings.HasPrefix(filepath.Clean(fullPath), cleanBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected")
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(fullPath, body, 0o600); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return fmt.Sprintf("file://%s", fullPath), nil
}

// Close implements Store.
func (s *FSStore) Close() error { return nil }

func snapshotPath(jobNumber string, at time.Time) (string, error) {
	jobNumber = strings.TrimSpace(jobNumber)
	if jobNumber == "" {
		return "", fmt.Errorf("job number is required")
	}
	if strings.ContainsAny(jobNumber, `/\`) {
		return "", fmt.Errorf("job number %q contains path separators", jobNumber)
	}
	return filepath.Join(jobNumber, at.Format("20060102T150405Z")+".html"), nil
}
