package dirsize

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/go-git/go-billy/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/idelchi/filemgr/internal/fserr"
)

// DefaultDepth is the depth used by callers that do not choose one.
const DefaultDepth = 3

// Aggregator sums regular file sizes below a root path.
// It is safe for concurrent use; all calls share the same read limit.
type Aggregator struct {
	fs  billy.Filesystem
	log *zap.Logger
	sem *semaphore.Weighted
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger used for skipped entries.
func WithLogger(log *zap.Logger) Option {
	return func(a *Aggregator) {
		if log != nil {
			a.log = log
		}
	}
}

// WithConcurrency bounds the number of filesystem reads in flight across all calls.
// Zero leaves the fan-out unbounded.
func WithConcurrency(n int64) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.sem = semaphore.NewWeighted(n)
		} else {
			a.sem = nil
		}
	}
}

// New creates an Aggregator reading from fs.
func New(fs billy.Filesystem, opts ...Option) *Aggregator {
	agg := &Aggregator{
		fs:  fs,
		log: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(agg)
	}

	return agg
}

// Size returns the number of bytes held by regular files reachable from path
// within depth directory levels.
//
// A file yields its own length regardless of depth. A directory at depth 0
// yields 0 without being read. Errors are either fserr.ErrNotFound or an
// *fserr.IOError; no partial sum is returned alongside an error.
func (a *Aggregator) Size(ctx context.Context, path string, depth int) (uint64, error) {
	if depth < 0 {
		return 0, fmt.Errorf("%w: %d", fserr.ErrInvalidDepth, depth)
	}

	return a.size(ctx, path, depth)
}

func (a *Aggregator) size(ctx context.Context, path string, depth int) (uint64, error) {
	info, err := a.stat(ctx, path)
	if err != nil {
		return 0, err
	}

	if !info.IsDir() {
		if !info.Mode().IsRegular() {
			return 0, nil
		}

		return uint64(info.Size()), nil //nolint:gosec // Sizes of regular files are never negative
	}

	if depth == 0 {
		return 0, nil
	}

	entries, err := a.readDir(ctx, path)
	if err != nil {
		return 0, err
	}

	var total atomic.Uint64

	group, groupCtx := errgroup.WithContext(ctx)

	for _, entry := range entries {
		if entry == nil {
			a.log.Warn("skipping unreadable directory entry", zap.String("dir", path))

			continue
		}

		child := a.fs.Join(path, entry.Name())

		group.Go(func() error {
			n, err := a.size(groupCtx, child, depth-1)
			if err != nil {
				return err
			}

			total.Add(n)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return 0, err
	}

	return total.Load(), nil
}

// stat follows symlinks, so a link to a directory is descended into.
// Loops are bounded only by depth.
func (a *Aggregator) stat(ctx context.Context, path string) (os.FileInfo, error) {
	if err := a.acquire(ctx); err != nil {
		return nil, err
	}
	defer a.release()

	info, err := a.fs.Stat(path)
	if err != nil {
		return nil, fserr.Classify("stat", path, err)
	}

	return info, nil
}

func (a *Aggregator) readDir(ctx context.Context, path string) ([]os.FileInfo, error) {
	if err := a.acquire(ctx); err != nil {
		return nil, err
	}
	defer a.release()

	entries, err := a.fs.ReadDir(path)
	if err != nil {
		return nil, fserr.Classify("readdir", path, err)
	}

	return entries, nil
}

// acquire takes a read slot. The slot is held for one read only, never
// across a join, so a bounded aggregator cannot starve itself on deep trees.
func (a *Aggregator) acquire(ctx context.Context) error {
	if a.sem == nil {
		return ctx.Err()
	}

	return a.sem.Acquire(ctx, 1)
}

func (a *Aggregator) release() {
	if a.sem != nil {
		a.sem.Release(1)
	}
}
