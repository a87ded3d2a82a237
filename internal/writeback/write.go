package writeback

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// File is one generated output file.
type File struct {
	Path    string
	Content []byte
	// Delete marks an output that must not exist, such as a test file
	// whose enums no longer have getters.
	Delete bool
}

// Writer writes generated files through a billy filesystem.
type Writer struct {
	fs billy.Filesystem
}

// NewWriter returns a Writer over fs.
func NewWriter(fs billy.Filesystem) *Writer {
	return &Writer{fs: fs}
}

// Write stores every file and removes those marked Delete. Each write is
// atomic: content is written to a temp file first, then renamed over the
// target.
func (w *Writer) Write(files []File) error {
	for _, f := range files {
		if f.Delete {
			if err := w.fs.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("remove %s: %w", f.Path, err)
			}
			continue
		}
		if err := w.writeFile(f); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeFile(f File) error {
	dir := filepath.Dir(f.Path)
	if err := w.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := util.TempFile(w.fs, dir, ".jqenum-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(f.Content); err != nil {
		_ = tmp.Close()
		_ = w.fs.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = w.fs.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("close temp: %w", err)
	}

	if ch, ok := w.fs.(billy.Change); ok {
		_ = ch.Chmod(tmpName, 0o644) // best-effort permission sync
	}

	if err := w.fs.Rename(tmpName, f.Path); err != nil {
		_ = w.fs.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("rename temp to %s: %w", f.Path, err)
	}
	return nil
}

// Stale returns the paths of files whose on-disk content is missing or
// differs from the generated content, and of files marked Delete that
// still exist.
func (w *Writer) Stale(files []File) ([]string, error) {
	var stale []string
	for _, f := range files {
		current, err := util.ReadFile(w.fs, f.Path)
		switch {
		case f.Delete:
			if err == nil {
				stale = append(stale, f.Path)
			} else if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read %s: %w", f.Path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			stale = append(stale, f.Path)
		case err != nil:
			return nil, fmt.Errorf("read %s: %w", f.Path, err)
		case !bytes.Equal(current, f.Content):
			stale = append(stale, f.Path)
		}
	}
	return stale, nil
}
