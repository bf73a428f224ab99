package explorer_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/idelchi/filemgr/internal/explorer"
	"github.com/idelchi/filemgr/internal/fserr"
)

type lstatFaultFS struct {
	billy.Filesystem

	fail map[string]bool
}

func (f *lstatFaultFS) Lstat(name string) (os.FileInfo, error) {
	if f.fail[name] {
		return nil, &os.PathError{Op: "lstat", Path: name, Err: fs.ErrPermission}
	}

	return f.Filesystem.Lstat(name)
}

func writeFile(t *testing.T, fsys billy.Filesystem, path, content string) {
	t.Helper()

	require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, util.WriteFile(fsys, path, []byte(content), 0o644))
}

func readFile(t *testing.T, fsys billy.Filesystem, path string) string {
	t.Helper()

	data, err := util.ReadFile(fsys, path)
	require.NoError(t, err)

	return string(data)
}

// fixture builds /data with two visible files, a hidden file and a folder.
func fixture(t *testing.T) billy.Filesystem {
	t.Helper()

	fsys := memfs.New()
	writeFile(t, fsys, "/data/Report.txt", strings.Repeat("r", 10))
	writeFile(t, fsys, "/data/notes.md", "hello")
	writeFile(t, fsys, "/data/.hidden", "h")
	writeFile(t, fsys, "/data/docs/inner.txt", strings.Repeat("i", 20))

	return fsys
}

func names(listing *explorer.Listing) []string {
	out := make([]string, 0, len(listing.Files))
	for _, f := range listing.Files {
		out = append(out, f.Name)
	}

	return out
}

func TestList(t *testing.T) {
	t.Parallel()

	exp := explorer.New(fixture(t))

	listing, err := exp.List("/data", "", explorer.ListOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Report.txt", "docs", "notes.md"}, names(listing))
	assert.Equal(t, 2, listing.TotalFiles)
	assert.Equal(t, 1, listing.TotalFolders)

	report := listing.Files[0]
	assert.Equal(t, "/data/Report.txt", report.Path)
	assert.Equal(t, int64(10), report.Size)
	assert.False(t, report.IsDir)
	assert.Zero(t, report.Created)
	assert.Empty(t, report.MIME)

	assert.True(t, listing.Files[1].IsDir)
}

func TestListSearch(t *testing.T) {
	t.Parallel()

	exp := explorer.New(fixture(t))

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "substring is case insensitive", query: "REP", want: []string{"Report.txt"}},
		{name: "substring matches inside name", query: "o", want: []string{"Report.txt", "docs", "notes.md"}},
		{name: "glob", query: "*.MD", want: []string{"notes.md"}},
		{name: "glob alternatives", query: "{docs,*.txt}", want: []string{"Report.txt", "docs"}},
		{name: "no match", query: "zzz", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			listing, err := exp.List("/data", tt.query, explorer.ListOptions{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(listing))
		})
	}
}

func TestListInvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := explorer.New(fixture(t)).List("/data", "[", explorer.ListOptions{})
	require.Error(t, err)
}

func TestListHidden(t *testing.T) {
	t.Parallel()

	listing, err := explorer.New(fixture(t)).List("/data", "", explorer.ListOptions{ShowHidden: true})
	require.NoError(t, err)
	assert.Equal(t, []string{".hidden", "Report.txt", "docs", "notes.md"}, names(listing))
	assert.Equal(t, 3, listing.TotalFiles)
}

func TestListMissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := explorer.New(fixture(t)).List("/nowhere", "", explorer.ListOptions{})
	require.Error(t, err)
	assert.True(t, fserr.IsNotFound(err))
}

func TestListNotADirectory(t *testing.T) {
	t.Parallel()

	_, err := explorer.New(fixture(t)).List("/data/notes.md", "", explorer.ListOptions{})
	require.Error(t, err)
	assert.False(t, fserr.IsNotFound(err))
}

func TestListSkipsMetadataErrors(t *testing.T) {
	t.Parallel()

	fsys := &lstatFaultFS{
		Filesystem: fixture(t),
		fail:       map[string]bool{"/data/notes.md": true},
	}

	core, logs := observer.New(zap.WarnLevel)

	listing, err := explorer.New(fsys, explorer.WithLogger(zap.New(core))).List("/data", "", explorer.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Report.txt", "docs"}, names(listing))
	assert.Equal(t, 1, listing.TotalFiles)
	assert.Equal(t, 1, logs.FilterMessage("skipping entry due to metadata error").Len())
}

func TestListDetectMIME(t *testing.T) {
	t.Parallel()

	fsys := fixture(t)
	writeFile(t, fsys, "/data/doc.pdf", "%PDF-1.4\n%âãÏÓ\n1 0 obj\n<<>>\nendobj\n")

	listing, err := explorer.New(fsys).List("/data", "", explorer.ListOptions{DetectMIME: true})
	require.NoError(t, err)

	byName := make(map[string]explorer.Entry, len(listing.Files))
	for _, f := range listing.Files {
		byName[f.Name] = f
	}

	assert.Equal(t, "application/pdf", byName["doc.pdf"].MIME)
	assert.True(t, strings.HasPrefix(byName["notes.md"].MIME, "text/plain"))
	assert.Empty(t, byName["docs"].MIME)
}

func TestListCreatedTime(t *testing.T) {
	t.Parallel()

	exp := explorer.New(fixture(t), explorer.WithCreatedTime(func(path string) (int64, bool) {
		if path == "/data/notes.md" {
			return 1700000000, true
		}

		return 0, false
	}))

	listing, err := exp.List("/data", "notes", explorer.ListOptions{})
	require.NoError(t, err)
	require.Len(t, listing.Files, 1)
	assert.Equal(t, int64(1700000000), listing.Files[0].Created)
}

func TestTotalSize(t *testing.T) {
	t.Parallel()

	fsys := fixture(t)

	got, err := explorer.New(fsys).TotalSize(context.Background(), "/data")
	require.NoError(t, err)
	assert.Equal(t, uint64(10+5+1+20), got)

	got, err = explorer.New(fsys, explorer.WithDepth(1)).TotalSize(context.Background(), "/data")
	require.NoError(t, err)
	assert.Equal(t, uint64(10+5+1), got)

	_, err = explorer.New(fsys).TotalSize(context.Background(), "/missing")
	assert.True(t, fserr.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	t.Parallel()

	fsys := fixture(t)
	exp := explorer.New(fsys)

	require.NoError(t, exp.Delete("/data/notes.md"))

	_, err := fsys.Stat("/data/notes.md")
	require.ErrorIs(t, err, fs.ErrNotExist)

	err = exp.Delete("/data/docs")
	require.ErrorIs(t, err, fserr.ErrIsDirectory)

	err = exp.Delete("/data/notes.md")
	assert.True(t, fserr.IsNotFound(err))
}

func TestRename(t *testing.T) {
	t.Parallel()

	fsys := fixture(t)
	exp := explorer.New(fsys)

	newPath, err := exp.Rename("/data/notes.md", "todo.md")
	require.NoError(t, err)
	assert.Equal(t, "/data/todo.md", newPath)
	assert.Equal(t, "hello", readFile(t, fsys, "/data/todo.md"))

	_, err = fsys.Stat("/data/notes.md")
	require.ErrorIs(t, err, fs.ErrNotExist)

	_, err = exp.Rename("/data/missing", "x")
	assert.True(t, fserr.IsNotFound(err))

	for _, bad := range []string{"", ".", "..", "a/b"} {
		_, err = exp.Rename("/data/todo.md", bad)
		require.ErrorIs(t, err, fserr.ErrInvalidName, "name %q", bad)
	}
}

func TestPaste(t *testing.T) {
	t.Parallel()

	fsys := fixture(t)
	exp := explorer.New(fsys)

	written, err := exp.Paste("/data/notes.md", "/data/docs")
	require.NoError(t, err)
	assert.Equal(t, "/data/docs/notes.md", written)
	assert.Equal(t, "hello", readFile(t, fsys, written))

	written, err = exp.Paste("/data/notes.md", "/data/copy.md")
	require.NoError(t, err)
	assert.Equal(t, "/data/copy.md", written)
	assert.Equal(t, "hello", readFile(t, fsys, written))

	// Existing files are overwritten.
	writeFile(t, fsys, "/data/old.md", strings.Repeat("o", 100))
	_, err = exp.Paste("/data/notes.md", "/data/old.md")
	require.NoError(t, err)
	assert.Equal(t, "hello", readFile(t, fsys, "/data/old.md"))
}

func TestPasteErrors(t *testing.T) {
	t.Parallel()

	exp := explorer.New(fixture(t))

	_, err := exp.Paste("/data/docs", "/data/elsewhere")
	require.ErrorIs(t, err, fserr.ErrIsDirectory)

	_, err = exp.Paste("/data/notes.md", "/data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "onto itself")

	_, err = exp.Paste("/data/missing.md", "/data/docs")
	assert.True(t, fserr.IsNotFound(err))

	_, err = exp.Paste("/data/notes.md", "/no/such/dir/notes.md")
	assert.True(t, fserr.IsNotFound(err))
}

func TestComplete(t *testing.T) {
	t.Parallel()

	exp := explorer.New(fixture(t))

	assert.Equal(t, []string{"/data/notes.md"}, exp.Complete("/data/no"))
	assert.Equal(t, []string{"/data/Report.txt"}, exp.Complete("/data/R"))
	assert.Equal(t,
		[]string{"/data/.hidden", "/data/Report.txt", "/data/docs", "/data/notes.md"},
		exp.Complete("/data/"),
	)
	assert.Equal(t, []string{"/data/docs/inner.txt"}, exp.Complete("/data/docs/i"))
	assert.Empty(t, exp.Complete("/data/zzz"))
	assert.Empty(t, exp.Complete("/nowhere/x"))
}

func TestHome(t *testing.T) {
	t.Parallel()

	home, err := explorer.New(memfs.New(), explorer.WithHome(func() (string, error) {
		return "/home/user", nil
	})).Home()
	require.NoError(t, err)
	assert.Equal(t, "/home/user", home)

	_, err = explorer.New(memfs.New(), explorer.WithHome(func() (string, error) {
		return "", errors.New("$HOME is not defined")
	})).Home()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get home directory")
}

func TestNewOS(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("abc"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	exp := explorer.NewOS()

	listing, err := exp.List(dir, "", explorer.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "sub"}, names(listing))
	assert.GreaterOrEqual(t, listing.Files[0].Created, int64(0))

	size, err := exp.TotalSize(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), size)

	assert.Equal(t, []string{filepath.Join(dir, "a.txt")}, exp.Complete(filepath.Join(dir, "a")))
}
