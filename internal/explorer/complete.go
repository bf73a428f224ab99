package explorer

import (
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Complete returns the paths that start with partial.
//
// The last element of partial is the prefix searched for in its directory;
// a trailing separator lists the directory itself. Unreadable directories
// yield no completions rather than an error.
func (e *Explorer) Complete(partial string) []string {
	dir, prefix := filepath.Split(partial)
	if dir == "" {
		dir = "."
	}

	infos, err := e.fs.ReadDir(absolute(dir))
	if err != nil {
		e.log.Debug("no completions", zap.String("dir", dir), zap.Error(err))

		return []string{}
	}

	results := make([]string, 0, len(infos))

	for _, info := range infos {
		if info == nil || !strings.HasPrefix(info.Name(), prefix) {
			continue
		}

		results = append(results, filepath.Join(dir, info.Name()))
	}

	sort.Strings(results)

	return results
}
