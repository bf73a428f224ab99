// Package explorer implements the file manager operations: listing, sizing,
// deleting, renaming, pasting and path completion.
//
// All access goes through a billy.Filesystem. NewOS builds the instance used
// against the real disk; tests run the same code against memfs.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"

	"github.com/idelchi/filemgr/internal/dirsize"
)

// Explorer performs file manager operations on a filesystem.
type Explorer struct {
	fs          billy.Filesystem
	log         *zap.Logger
	sizer       *dirsize.Aggregator
	depth       int
	concurrency int64
	created     func(path string) (int64, bool)
	home        func() (string, error)
}

// Option configures an Explorer.
type Option func(*Explorer)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Explorer) {
		if log != nil {
			e.log = log
		}
	}
}

// WithDepth sets the depth used by TotalSize.
func WithDepth(depth int) Option {
	return func(e *Explorer) {
		e.depth = depth
	}
}

// WithConcurrency bounds the filesystem reads in flight during TotalSize (0 = unbounded).
func WithConcurrency(n int64) Option {
	return func(e *Explorer) {
		e.concurrency = n
	}
}

// WithCreatedTime sets the lookup used to fill Entry.Created.
func WithCreatedTime(fn func(path string) (int64, bool)) Option {
	return func(e *Explorer) {
		e.created = fn
	}
}

// WithHome overrides the home directory lookup.
func WithHome(fn func() (string, error)) Option {
	return func(e *Explorer) {
		e.home = fn
	}
}

// New creates an Explorer on top of fs.
func New(fs billy.Filesystem, opts ...Option) *Explorer {
	explorer := &Explorer{
		fs:    fs,
		log:   zap.NewNop(),
		depth: dirsize.DefaultDepth,
		home:  os.UserHomeDir,
	}

	for _, opt := range opts {
		opt(explorer)
	}

	explorer.sizer = dirsize.New(fs,
		dirsize.WithLogger(explorer.log),
		dirsize.WithConcurrency(explorer.concurrency),
	)

	return explorer
}

// NewOS creates an Explorer on the local disk.
func NewOS(opts ...Option) *Explorer {
	return New(osfs.New(string(filepath.Separator)), append([]Option{WithCreatedTime(birthTime)}, opts...)...)
}

// Home returns the current user's home directory.
func (e *Explorer) Home() (string, error) {
	home, err := e.home()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if home == "" {
		return "", errors.New("failed to get home directory")
	}

	return home, nil
}

// TotalSize returns the size of path as computed by the aggregator with the configured depth.
func (e *Explorer) TotalSize(ctx context.Context, path string) (uint64, error) {
	path = absolute(path)

	e.log.Debug("computing size", zap.String("path", path), zap.Int("depth", e.depth))

	return e.sizer.Size(ctx, path, e.depth)
}

// absolute resolves path against the working directory.
// The OS filesystem is rooted at "/", so relative paths must not reach it unresolved.
func absolute(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return abs
}
