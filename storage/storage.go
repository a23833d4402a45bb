// Package storage receives uploaded image files and writes them to the blob
// store (a directory served as static content).
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

// fileTypes is the allow-list of accepted upload MIME types and the
// extension each one is stored with.
var fileTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
}

var ErrUnsupportedType = errors.New("invalid image type")

// File is the capability a handler hands to the store; it decouples the
// ingestion pipeline from the HTTP layer.
type File interface {
	Name() string
	ContentType() string
	Open() (io.ReadCloser, error)
}

type multipartFile struct {
	fh *multipart.FileHeader
}

func (f multipartFile) Name() string        { return f.fh.Filename }
func (f multipartFile) ContentType() string { return f.fh.Header.Get("Content-Type") }
func (f multipartFile) Open() (io.ReadCloser, error) {
	return f.fh.Open()
}

// FromMultipart wraps a parsed multipart part as a File.
func FromMultipart(fh *multipart.FileHeader) File {
	return multipartFile{fh: fh}
}

// Extension maps an allowed MIME type to its stored extension.
func Extension(mimeType string) (string, bool) {
	ext, ok := fileTypes[mimeType]
	return ext, ok
}

type Store interface {
	Save(f File) (string, error)
}

// DiskStore writes uploads under a single directory.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save validates the MIME type against the allow-list and writes the file
// under a collision-free stored name, which it returns.
func (s *DiskStore) Save(f File) (string, error) {
	ext, ok := Extension(f.ContentType())
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, f.ContentType())
	}

	name := StoredName(f.Name(), ext)

	src, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return name, nil
}

var lastStamp atomic.Int64

// nextStamp returns a strictly increasing millisecond timestamp, so two
// uploads of files with the same name never collide.
func nextStamp() int64 {
	for {
		now := time.Now().UnixMilli()
		last := lastStamp.Load()
		if now <= last {
			now = last + 1
		}
		if lastStamp.CompareAndSwap(last, now) {
			return now
		}
	}
}

// StoredName sanitizes the original filename (whitespace becomes "-"), drops
// its extension and appends a uniqueness stamp plus the resolved extension.
func StoredName(original, ext string) string {
	base := strings.Join(strings.Fields(original), "-")
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		base = "upload"
	}
	return fmt.Sprintf("%s-%d.%s", base, nextStamp(), ext)
}
