package dirstat

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// DefaultTopN is used when Options.TopN is not positive.
const DefaultTopN = 10

// DefaultExcludes contains the default exclusion globs.
//
//nolint:gochecknoglobals // Config constant
var DefaultExcludes = []string{"**/.git", "**/node_modules"}

// Options configures a walk.
type Options struct {
	// Path is the directory to analyze.
	Path string
	// Extensions to include (empty = all). A '!' prefix excludes instead.
	Extensions []string
	// Excludes contains doublestar globs, matched against slash paths relative to Path.
	Excludes []string
	// MinSize is the minimum file size in bytes.
	MinSize int64
	// TopN is the number of largest entries to keep.
	TopN int
	// Depth is the maximum traversal depth (0 = unlimited). Files directly in Path are at depth 1.
	Depth int
	// DirsMode aggregates by directory instead of by file.
	DirsMode bool
	// ShowHidden includes names starting with a dot.
	ShowHidden bool
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
}

// depthOf returns the number of path elements in rel, 0 for the root.
func depthOf(rel string) int {
	if rel == "." {
		return 0
	}

	return strings.Count(rel, "/") + 1
}

// splitExtensions separates the include and exclude suffix filters.
func splitExtensions(extensions []string) (include, exclude []string) {
	for _, ext := range extensions {
		ext = strings.Trim(ext, `'"`)

		if rest, ok := strings.CutPrefix(ext, "!"); ok {
			exclude = append(exclude, rest)
		} else {
			include = append(include, ext)
		}
	}

	return include, exclude
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}

	return false
}

// matchesAny returns the first pattern matching rel, or "".
func matchesAny(rel string, patterns []string) string {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return pattern
		}
	}

	return ""
}

// startProgressReporter invokes hook(files, bytes) on each tick until ctx is done.
func startProgressReporter(ctx context.Context, c *collector, hook func(int64, int64), interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(c.snapshot())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Run walks opt.Path and returns the usage report.
//
// Unreadable entries are counted in Stats.ErrorCount and otherwise skipped.
// The walk stops early when ctx is cancelled. progressHook, if set, receives
// running totals every opt.ProgressInterval.
//
//nolint:gocognit,funlen // Walk callback carries all filters.
func Run(ctx context.Context, opt Options, log *zap.Logger, progressHook func(int64, int64)) (*Stats, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if opt.Path == "" {
		opt.Path = "."
	}

	root := filepath.Clean(opt.Path)

	if info, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("accessing path %q: %w", root, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("path %q is not a directory", root)
	}

	for _, pattern := range opt.Excludes {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclusion pattern %q", pattern)
		}
	}

	include, exclude := splitExtensions(opt.Extensions)

	if opt.TopN <= 0 {
		opt.TopN = DefaultTopN
	}

	log.Debug("analyzing directory",
		zap.String("root", root),
		zap.Strings("include", include),
		zap.Strings("exclude", exclude),
		zap.Strings("patterns", opt.Excludes),
		zap.Int("depth", opt.Depth),
	)

	collector := newCollector(opt.TopN, opt.DirsMode)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startProgressReporter(ctx, collector, progressHook, opt.ProgressInterval)

	start := time.Now()

	conf := &fastwalk.Config{
		Follow: false,
	}

	walkErr := fastwalk.Walk(conf, root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			collector.addError()
			log.Debug("skipping unreadable path", zap.String("path", path), zap.Error(err))

			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil //nolint:nilerr // Paths outside the root are not reported
		}

		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		skip := func(reason string) error {
			log.Debug("skipping", zap.String("path", rel), zap.String("reason", reason))

			if entry.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if opt.Depth > 0 && depthOf(rel) > opt.Depth {
			return skip("beyond depth")
		}

		if !opt.ShowHidden && strings.HasPrefix(entry.Name(), ".") {
			return skip("hidden")
		}

		if pattern := matchesAny(rel, opt.Excludes); pattern != "" {
			return skip("matched " + pattern)
		}

		if entry.IsDir() || !entry.Type().IsRegular() {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			collector.addError()

			return nil //nolint:nilerr // Intentionally skip errors during walk
		}

		if info.Size() < opt.MinSize {
			return nil
		}

		if hasAnySuffix(rel, exclude) || (len(include) > 0 && !hasAnySuffix(rel, include)) {
			return nil
		}

		collector.addFile(rel, filepath.ToSlash(filepath.Dir(rel)), filepath.Ext(rel), info.Size())

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking %q: %w", root, walkErr)
	}

	stats := collector.finalize(root)
	stats.Elapsed = time.Since(start)

	return stats, nil
}
