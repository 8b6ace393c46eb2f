package writer

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644

	tempPrefix = ".tmp-"
)

// commit creates dir if needed, lets write fill a temp file next to path, then
// renames it into place. A failed write leaves no artifact behind.
func commit(path string, write func(tmp string) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("%w: create output dir: %w", ErrWrite, err)
	}

	// The temp name keeps the final extension; some encoders check it.
	f, err := os.CreateTemp(dir, tempPrefix+"*-"+filepath.Base(path))
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", ErrWrite, err)
	}
	tmp := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: close temp file: %w", ErrWrite, err)
	}

	if err := write(tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.Chmod(tmp, filePerm); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: chmod temp file: %w", ErrWrite, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: rename into place: %w", ErrWrite, err)
	}
	return nil
}

func writeText(path, content string) error {
	return commit(path, func(tmp string) error {
		return os.WriteFile(tmp, []byte(content), filePerm)
	})
}
