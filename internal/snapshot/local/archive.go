// Package local implements snapshot.Archive on the local filesystem.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fullstack/catalog-sync/internal/snapshot"
)

// Config captures the parameters for the local payload archive.
type Config struct {
	BaseDir string
	Prefix  string
}

// Archive writes catalog payloads under a base directory.
type Archive struct {
	baseDir string
	prefix  string
}

// New validates the base directory (creating it if absent) and
// returns an Archive.
func New(cfg Config) (*Archive, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, fmt.Errorf("snapshot.base_dir is required")
	}
	info, err := os.Stat(cfg.BaseDir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return nil, fmt.Errorf("snapshot base path is not a directory")
		}
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(cfg.BaseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create snapshot directory: %w", mkErr)
		}
	default:
		return nil, fmt.Errorf("stat snapshot directory: %w", err)
	}
	return &Archive{baseDir: cfg.BaseDir, prefix: cfg.Prefix}, nil
}

// Put writes the payload to <base>/<prefix>/<timestamp>.json and
// returns a file:// URI.
func (a *Archive) Put(_ context.Context, fetchedAt time.Time, payload []byte) (string, error) {
	key := snapshot.Key(a.prefix, fetchedAt)
	fullPath := filepath.Join(a.baseDir, filepath.FromSlash(key))

	cleanBase := filepath.Clean(a.baseDir)
	if !strings.HasPrefix(filepath.Clean(fullPath), cleanBase+string(filepath.Separator)) {
		return "", fmt.Errorf("snapshot key escapes base directory")
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return "", fmt.Errorf("create snapshot parent directories: %w", err)
	}
	if err := os.WriteFile(fullPath, payload, 0o600); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return "file://" + fullPath, nil
}
