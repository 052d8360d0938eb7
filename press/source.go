package press

import (
	"bytes"
	"io"
	"os"
)

// Source is a decodable input for the engine. Implementations hand out a
// fresh reader per Open call so the engine can take multiple passes
// (EXIF probe, then pixel decode).
type Source interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// FileSource reads from a file on disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return s.Path }

func (s FileSource) Open() (io.ReadCloser, error) {
	return os.Open(s.Path)
}

// BytesSource reads from an in-memory copy of the image.
type BytesSource struct {
	Label string
	Data  []byte
}

func (s BytesSource) Name() string { return s.Label }

func (s BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.Data)), nil
}
