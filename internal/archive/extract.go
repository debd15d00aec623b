package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtractTo unpacks every entry under dir and returns the number of files
// written. Entries that would land outside dir are rejected.
func (r *Reader) ExtractTo(data []byte, dir string) (int, error) {
	zr, err := open(data)
	if err != nil {
		return 0, err
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("resolving %s: %w", dir, err)
	}

	written := 0
	for _, f := range zr.File {
		target, err := safeJoin(root, f.Name)
		if err != nil {
			return written, err
		}
		if isDir(f) {
			if err := os.MkdirAll(target, 0755); err != nil {
				return written, fmt.Errorf("creating directory %s: %w", f.Name, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return written, fmt.Errorf("creating directory for %s: %w", f.Name, err)
		}
		if err := r.extractFile(f.Name, target, f.Open); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func (r *Reader) extractFile(name, target string, open func() (io.ReadCloser, error)) error {
	rc, err := open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", name, err)
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer out.Close()

	n, err := io.Copy(out, io.LimitReader(rc, r.MaxEntrySize+1))
	if err != nil {
		return fmt.Errorf("extracting %s: %w", name, err)
	}
	if n > r.MaxEntrySize {
		return fmt.Errorf("%s: %w", name, ErrEntryTooLarge)
	}
	return nil
}

func safeJoin(root, name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%s: %w", name, ErrUnsafePath)
	}
	target := filepath.Join(root, filepath.FromSlash(name))
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%s: %w", name, ErrUnsafePath)
	}
	return target, nil
}
