// Package archive reads uploaded ZIP archives and packs optimized results.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
)

var (
	// ErrInvalidArchiveFormat is returned when the upload is not a readable ZIP.
	ErrInvalidArchiveFormat = errors.New("invalid archive format")
	// ErrEntryTooLarge is recorded on an entry whose decompressed size exceeds the limit.
	ErrEntryTooLarge = errors.New("archive entry exceeds size limit")
	// ErrUnsafePath is returned when an entry would be written outside the target directory.
	ErrUnsafePath = errors.New("archive entry path escapes destination")
)

// DefaultMaxEntrySize bounds one decompressed entry when no limit is configured.
const DefaultMaxEntrySize = 50 << 20

// Entry is one regular file of an archive. Err is set when that entry alone
// could not be read; the rest of the archive is unaffected.
type Entry struct {
	Path    string
	Content string
	Err     error
}

// Reader opens archives with a per-entry size limit.
type Reader struct {
	MaxEntrySize int64
}

// NewReader returns a Reader. A non-positive limit selects DefaultMaxEntrySize.
func NewReader(maxEntrySize int64) *Reader {
	if maxEntrySize <= 0 {
		maxEntrySize = DefaultMaxEntrySize
	}
	return &Reader{MaxEntrySize: maxEntrySize}
}

// ReadAll returns every non-directory entry in archive order. Content is the
// raw entry bytes without transcoding.
func (r *Reader) ReadAll(data []byte) ([]Entry, error) {
	zr, err := open(data)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		if isDir(f) {
			continue
		}
		content, err := r.readFile(f)
		entries = append(entries, Entry{Path: f.Name, Content: string(content), Err: err})
	}
	return entries, nil
}

// ReadAll is a convenience wrapper using DefaultMaxEntrySize.
func ReadAll(data []byte) ([]Entry, error) {
	return NewReader(0).ReadAll(data)
}

func open(data []byte) (*zip.Reader, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrInvalidArchiveFormat)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchiveFormat, err)
	}
	return zr, nil
}

func isDir(f *zip.File) bool {
	return f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/")
}

func (r *Reader) readFile(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > uint64(r.MaxEntrySize) {
		return nil, fmt.Errorf("%s: %w", f.Name, ErrEntryTooLarge)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	// The header size can lie, so the read itself is bounded too.
	content, err := io.ReadAll(io.LimitReader(rc, r.MaxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	if int64(len(content)) > r.MaxEntrySize {
		return nil, fmt.Errorf("%s: %w", f.Name, ErrEntryTooLarge)
	}
	return content, nil
}
