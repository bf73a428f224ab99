package dirstat

import (
	"sort"
	"sync"
	"time"
)

// ExtStat represents statistics for a file extension.
type ExtStat struct {
	// Count is the number of files with this extension.
	Count int `json:"count"`
	// Size is the cumulative size in bytes.
	Size int64 `json:"size"`
}

// FileStat represents a single file or directory and its size.
type FileStat struct {
	// Path is relative to the analyzed root, slash separated.
	Path string `json:"path"`
	// Size is the size in bytes.
	Size int64 `json:"size"`
}

// Stats holds the result of a walk.
type Stats struct {
	// Root is the analyzed directory.
	Root string `json:"root"`
	// FileCount is the number of files, or directories in directory mode, that were counted.
	FileCount int64 `json:"file_count"`
	// TotalBytes is the cumulative size of all counted files.
	TotalBytes int64 `json:"total_bytes"`
	// ExtStats maps file extensions to their statistics. Empty in directory mode.
	ExtStats map[string]ExtStat `json:"ext_stats"`
	// Top holds the largest entries, largest first.
	Top []FileStat `json:"top"`
	// ErrorCount is the number of entries that could not be read.
	ErrorCount int64 `json:"error_count"`
	// Elapsed is the wall time of the walk.
	Elapsed time.Duration `json:"elapsed"`
	// DirectoryMode is set when Top lists directories.
	DirectoryMode bool `json:"directory_mode"`
}

// collector aggregates results from concurrent fastwalk callbacks.
type collector struct {
	mu            sync.Mutex
	topN          int
	directoryMode bool
	extStats      map[string]ExtStat
	dirSizes      map[string]int64
	files         []FileStat
	fileCount     int64
	totalBytes    int64
	errorCount    int64
}

func newCollector(topN int, directoryMode bool) *collector {
	return &collector{
		topN:          topN,
		directoryMode: directoryMode,
		extStats:      make(map[string]ExtStat),
		dirSizes:      make(map[string]int64),
	}
}

func (c *collector) addError() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.errorCount++
}

// addFile records a file of the given size. dir is the file's directory,
// used in directory mode.
func (c *collector) addFile(path, dir, ext string, size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalBytes += size

	if c.directoryMode {
		c.dirSizes[dir] += size

		return
	}

	c.fileCount++

	stat := c.extStats[ext]
	stat.Count++
	stat.Size += size
	c.extStats[ext] = stat

	c.files = append(c.files, FileStat{Path: path, Size: size})
}

// snapshot returns the running totals for progress reporting.
func (c *collector) snapshot() (files, bytes int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.directoryMode {
		return int64(len(c.dirSizes)), c.totalBytes
	}

	return c.fileCount, c.totalBytes
}

func (c *collector) finalize(root string) *Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := &Stats{
		Root:          root,
		TotalBytes:    c.totalBytes,
		ExtStats:      c.extStats,
		ErrorCount:    c.errorCount,
		DirectoryMode: c.directoryMode,
	}

	top := append([]FileStat{}, c.files...)
	stats.FileCount = c.fileCount

	if c.directoryMode {
		top = make([]FileStat, 0, len(c.dirSizes))
		for dir, size := range c.dirSizes {
			top = append(top, FileStat{Path: dir, Size: size})
		}

		stats.FileCount = int64(len(c.dirSizes))
		stats.ExtStats = map[string]ExtStat{}
	}

	sort.Slice(top, func(i, j int) bool {
		if top[i].Size != top[j].Size {
			return top[i].Size > top[j].Size
		}

		return top[i].Path < top[j].Path
	})

	if len(top) > c.topN {
		top = top[:c.topN]
	}

	stats.Top = top

	return stats
}
