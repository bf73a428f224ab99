package explorer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/idelchi/filemgr/internal/fserr"
)

// Delete removes the file at path. Directories are refused.
func (e *Explorer) Delete(path string) error {
	path = absolute(path)

	info, err := e.fs.Lstat(path)
	if err != nil {
		return fserr.Classify("lstat", path, err)
	}

	if info.IsDir() {
		return fmt.Errorf("deleting %q: %w", path, fserr.ErrIsDirectory)
	}

	if err := e.fs.Remove(path); err != nil {
		return fserr.Classify("remove", path, err)
	}

	e.log.Debug("deleted", zap.String("path", path))

	return nil
}

// Rename gives the entry at oldPath the name newName within the same directory
// and returns the new path.
func (e *Explorer) Rename(oldPath, newName string) (string, error) {
	if err := validateName(newName); err != nil {
		return "", err
	}

	oldPath = absolute(oldPath)

	if _, err := e.fs.Lstat(oldPath); err != nil {
		return "", fserr.Classify("lstat", oldPath, err)
	}

	newPath := e.fs.Join(filepath.Dir(oldPath), newName)

	if err := e.fs.Rename(oldPath, newPath); err != nil {
		return "", fserr.Classify("rename", oldPath, err)
	}

	e.log.Debug("renamed", zap.String("from", oldPath), zap.String("to", newPath))

	return newPath, nil
}

// Paste copies the file at source to target and returns the path written.
// When target is an existing directory, the copy keeps the source's base name inside it.
func (e *Explorer) Paste(source, target string) (string, error) {
	source = absolute(source)
	target = absolute(target)

	srcInfo, err := e.fs.Stat(source)
	if err != nil {
		return "", fserr.Classify("stat", source, err)
	}

	if srcInfo.IsDir() {
		return "", fmt.Errorf("copying %q: %w", source, fserr.ErrIsDirectory)
	}

	if info, err := e.fs.Stat(target); err == nil && info.IsDir() {
		target = e.fs.Join(target, filepath.Base(source))
	}

	if target == source {
		return "", fmt.Errorf("copying %q onto itself", source)
	}

	parent := filepath.Dir(target)
	if _, err := e.fs.Stat(parent); err != nil {
		return "", fserr.Classify("stat", parent, err)
	}

	if err := e.copyFile(source, target, srcInfo.Mode().Perm()); err != nil {
		return "", err
	}

	e.log.Debug("pasted", zap.String("from", source), zap.String("to", target))

	return target, nil
}

func (e *Explorer) copyFile(source, target string, perm os.FileMode) (err error) {
	in, err := e.fs.Open(source)
	if err != nil {
		return fserr.Classify("open", source, err)
	}
	defer in.Close()

	out, err := e.fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fserr.Classify("create", target, err)
	}

	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fserr.Classify("close", target, cerr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fserr.Classify("copy", target, err)
	}

	return nil
}

func validateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", fserr.ErrInvalidName, name)
	case strings.ContainsRune(name, '/'), strings.ContainsRune(name, filepath.Separator):
		return fmt.Errorf("%w: %q contains a path separator", fserr.ErrInvalidName, name)
	}

	return nil
}
