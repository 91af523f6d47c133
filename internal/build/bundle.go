package build

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Builder assembles the asset bundle for the application. Zero exit status
// is success; Entries exposes the built files for materialization.
type Builder interface {
	Build(ctx context.Context) (int, error)
	Entries() map[string][]byte
}

// BundleBuildError reports a failed bundle build. Unlike a compile failure
// this points at a broken project or environment, so callers escalate it
// instead of retrying.
type BundleBuildError struct {
	ExitCode int
	Err      error
}

func (e *BundleBuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("asset bundle build failed: %v", e.Err)
	}
	return fmt.Sprintf("asset bundle build failed with exit status %d", e.ExitCode)
}

func (e *BundleBuildError) Unwrap() error { return e.Err }

// DirBuilder snapshots a source asset directory into bundle entries. A
// missing source directory yields an empty bundle, not a failure; plenty of
// apps ship no assets at all.
type DirBuilder struct {
	log       *zap.Logger
	sourceDir string
	entries   map[string][]byte
}

// NewDirBuilder creates a builder reading assets from sourceDir.
func NewDirBuilder(log *zap.Logger, sourceDir string) *DirBuilder {
	return &DirBuilder{log: log, sourceDir: sourceDir}
}

// Build walks the source directory and captures every regular file.
func (b *DirBuilder) Build(ctx context.Context) (int, error) {
	b.entries = make(map[string][]byte)

	if b.sourceDir == "" {
		return 0, nil
	}
	if _, err := os.Stat(b.sourceDir); os.IsNotExist(err) {
		b.log.Debug("no asset directory, bundle is empty", zap.String("dir", b.sourceDir))
		return 0, nil
	}

	err := filepath.WalkDir(b.sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(b.sourceDir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		b.entries[filepath.ToSlash(rel)] = data
		return nil
	})
	if err != nil {
		return 1, err
	}

	b.log.Debug("asset bundle built", zap.Int("entries", len(b.entries)))
	return 0, nil
}

// Entries returns the bundle contents from the last Build.
func (b *DirBuilder) Entries() map[string][]byte {
	return b.entries
}

// WriteBundle materializes bundle entries under dir so the asset server can
// stream them straight off disk.
func WriteBundle(entries map[string][]byte, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create bundle directory: %w", err)
	}

	for rel, data := range entries {
		target := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("failed to create bundle subdirectory: %w", err)
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return fmt.Errorf("failed to write bundle entry %s: %w", rel, err)
		}
	}

	return nil
}
