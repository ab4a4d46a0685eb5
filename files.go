package wavmeta

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileError records why a single file was left out of a batch result.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Warning is a non-fatal problem found while decoding one metadata block.
type Warning struct {
	// Stage is the block that failed: "audio", "bext" or "xml".
	Stage   string
	Message string
}

func (w Warning) String() string {
	return w.Stage + ": " + w.Message
}

// HasExtension reports whether path ends in one of exts, ignoring case.
// An empty exts matches everything.
func HasExtension(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}

		if e == ext {
			return true
		}
	}

	return false
}

// WalkFiles lists the regular files below root in lexical walk order,
// keeping only those matching exts. Unreadable sub-directories are skipped
// and reported through skipped, which may be nil.
func WalkFiles(root string, exts []string, skipped func(FileError)) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrMissingRoot, root)
	}

	var paths []string

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if skipped != nil {
				skipped(FileError{Path: path, Err: err})
			}

			if d != nil && d.IsDir() {
				return fs.SkipDir
			}

			return nil
		}

		if !d.Type().IsRegular() || !HasExtension(path, exts) {
			return nil
		}

		paths = append(paths, path)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return paths, nil
}
