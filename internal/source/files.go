// Package source discovers input files and partitions them for dispatch.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrDirectoryNotFound is returned when the input directory is missing or not a directory.
var ErrDirectoryNotFound = errors.New("directory not found")

// InputFile is one candidate file discovered in the input directory.
type InputFile struct {
	Path string
	Stem string
	Ext  string
}

// NewInputFile splits path into its stem and extension.
func NewInputFile(path string) InputFile {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return InputFile{
		Path: path,
		Stem: strings.TrimSuffix(base, ext),
		Ext:  ext,
	}
}

// Name returns the file's base name.
func (f InputFile) Name() string {
	return f.Stem + f.Ext
}

// Filter selects which files in Dir are enumerated.
type Filter struct {
	Dir        string
	Extensions []string
	Prefix     string
}

// Match reports whether a base name passes the extension and prefix checks.
func (f Filter) Match(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	if f.Prefix != "" && !strings.HasPrefix(name, f.Prefix) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range f.Extensions {
		if ext == normalizeExt(e) {
			return true
		}
	}
	return false
}

// Enumerate lists the regular files directly inside f.Dir that pass f.Match,
// sorted by name. No matches yields an empty slice and no error.
func Enumerate(f Filter) ([]InputFile, error) {
	info, err := os.Stat(f.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, f.Dir)
		}
		return nil, fmt.Errorf("stat input dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDirectoryNotFound, f.Dir)
	}

	entries, err := os.ReadDir(f.Dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	files := make([]InputFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !f.Match(e.Name()) {
			continue
		}
		files = append(files, NewInputFile(filepath.Join(f.Dir, e.Name())))
	}
	return files, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
