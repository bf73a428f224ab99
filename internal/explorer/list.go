package explorer

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/idelchi/filemgr/internal/fserr"
)

var errNotDirectory = errors.New("not a directory")

// Entry describes one item of a directory listing.
type Entry struct {
	// Name is the base name.
	Name string `json:"name"`
	// Path is the full path.
	Path string `json:"path"`
	// Size is the size in bytes as reported by lstat.
	Size int64 `json:"size"`
	// Created is the birth time in unix seconds, 0 if unknown.
	Created int64 `json:"created"`
	// IsDir is set for directories.
	IsDir bool `json:"is_dir"`
	// MIME is the detected content type, only filled on request.
	MIME string `json:"mime,omitempty"`
}

// Listing is the result of List.
type Listing struct {
	// Files holds the matching entries, sorted by name.
	Files []Entry `json:"files"`
	// TotalFiles counts entries that are not directories.
	TotalFiles int `json:"total_files"`
	// TotalFolders counts directories.
	TotalFolders int `json:"total_folders"`
}

// ListOptions tunes List.
type ListOptions struct {
	// ShowHidden includes names starting with a dot.
	ShowHidden bool
	// DetectMIME sniffs the content type of regular files.
	DetectMIME bool
}

// List returns the direct children of dir whose names match query.
//
// An empty query matches everything. A query with glob metacharacters is
// matched as a pattern, anything else as a case-insensitive substring.
// Entries whose metadata cannot be read are skipped with a warning.
func (e *Explorer) List(dir, query string, opts ListOptions) (*Listing, error) {
	dir = absolute(dir)

	match, err := newMatcher(query)
	if err != nil {
		return nil, err
	}

	e.log.Debug("listing directory", zap.String("dir", dir), zap.String("query", query))

	info, err := e.fs.Stat(dir)
	if err != nil {
		return nil, fserr.Classify("stat", dir, err)
	}

	if !info.IsDir() {
		return nil, &fserr.IOError{Op: "readdir", Path: dir, Err: errNotDirectory}
	}

	infos, err := e.fs.ReadDir(dir)
	if err != nil {
		return nil, fserr.Classify("readdir", dir, err)
	}

	listing := &Listing{Files: make([]Entry, 0, len(infos))}

	for _, info := range infos {
		if info == nil {
			e.log.Warn("skipping unreadable entry", zap.String("dir", dir))

			continue
		}

		name := info.Name()
		if !utf8.ValidString(name) {
			e.log.Warn("skipping entry with invalid UTF-8 name", zap.String("dir", dir))

			continue
		}

		if !opts.ShowHidden && strings.HasPrefix(name, ".") {
			continue
		}

		if !match(name) {
			continue
		}

		path := e.fs.Join(dir, name)

		meta, err := e.fs.Lstat(path)
		if err != nil {
			e.log.Warn("skipping entry due to metadata error", zap.String("path", path), zap.Error(err))

			continue
		}

		entry := Entry{
			Name:    name,
			Path:    path,
			Size:    meta.Size(),
			Created: e.createdTime(path),
			IsDir:   meta.IsDir(),
		}

		if opts.DetectMIME && meta.Mode().IsRegular() {
			entry.MIME = e.detectMIME(path)
		}

		if entry.IsDir {
			listing.TotalFolders++
		} else {
			listing.TotalFiles++
		}

		listing.Files = append(listing.Files, entry)
	}

	sort.Slice(listing.Files, func(i, j int) bool {
		return listing.Files[i].Name < listing.Files[j].Name
	})

	e.log.Debug("listed directory",
		zap.String("dir", dir),
		zap.Int("files", listing.TotalFiles),
		zap.Int("folders", listing.TotalFolders),
	)

	return listing, nil
}

func newMatcher(query string) (func(name string) bool, error) {
	if query == "" {
		return func(string) bool { return true }, nil
	}

	query = strings.ToLower(query)

	if strings.ContainsAny(query, "*?[{") {
		if !doublestar.ValidatePattern(query) {
			return nil, fmt.Errorf("invalid search pattern %q", query)
		}

		return func(name string) bool {
			ok, _ := doublestar.Match(query, strings.ToLower(name))

			return ok
		}, nil
	}

	return func(name string) bool {
		return strings.Contains(strings.ToLower(name), query)
	}, nil
}

func (e *Explorer) createdTime(path string) int64 {
	if e.created == nil {
		return 0
	}

	sec, ok := e.created(path)
	if !ok {
		e.log.Debug("birth time unavailable", zap.String("path", path))

		return 0
	}

	return sec
}

func (e *Explorer) detectMIME(path string) string {
	file, err := e.fs.Open(path)
	if err != nil {
		e.log.Warn("opening file for type detection", zap.String("path", path), zap.Error(err))

		return ""
	}
	defer file.Close()

	mime, err := mimetype.DetectReader(file)
	if err != nil {
		e.log.Warn("detecting file type", zap.String("path", path), zap.Error(err))

		return ""
	}

	return mime.String()
}
