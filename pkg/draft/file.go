package draft

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoFile is returned when a dataset file reference carries neither inline
// content nor a path.
var ErrNoFile = errors.New("draft: dataset file is not set")

// File references the dataset blob. Data wins over Path when both are set so
// tests and embedders can attach content without touching the disk.
type File struct {
	Name string `yaml:"name,omitempty"`
	Path string `yaml:"path,omitempty"`
	Data []byte `yaml:"-"`
}

// FileFromPath references a file on disk.
func FileFromPath(path string) *File {
	return &File{Path: strings.TrimSpace(path)}
}

// FileFromBytes references in-memory content under the given name.
func FileFromBytes(name string, data []byte) *File {
	return &File{Name: name, Data: append([]byte(nil), data...)}
}

// Filename reports the name sent with the multipart upload.
func (f *File) Filename() string {
	if f == nil {
		return ""
	}
	if name := strings.TrimSpace(f.Name); name != "" {
		return name
	}
	if f.Path != "" {
		return filepath.Base(f.Path)
	}
	return ""
}

// Extension returns the lower-cased extension without the leading dot.
func (f *File) Extension() string {
	ext := filepath.Ext(f.Filename())
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Open returns a fresh reader over the content. Callers retrying an upload
// open the file once per attempt.
func (f *File) Open() (io.ReadCloser, error) {
	switch {
	case f == nil:
		return nil, ErrNoFile
	case f.Data != nil:
		return io.NopCloser(bytes.NewReader(f.Data)), nil
	case f.Path != "":
		return os.Open(f.Path)
	default:
		return nil, ErrNoFile
	}
}

// Size reports the content size in bytes, or -1 when it cannot be determined.
func (f *File) Size() int64 {
	if f == nil {
		return -1
	}
	if f.Data != nil {
		return int64(len(f.Data))
	}
	info, err := os.Stat(f.Path)
	if err != nil {
		return -1
	}
	return info.Size()
}

func (f *File) clone() *File {
	if f == nil {
		return nil
	}
	out := *f
	if f.Data != nil {
		out.Data = append([]byte(nil), f.Data...)
	}
	return &out
}

// Format returns the declared file format, or the attached file's extension
// when none was chosen.
func (d Dataset) Format() string {
	if format := strings.TrimSpace(d.FileFormat); format != "" {
		return format
	}
	return d.File.Extension()
}
