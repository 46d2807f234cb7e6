// Package archive stages named package entries and serializes them into a
// single zip container.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

var (
	// ErrDuplicateEntry indicates a second write to an already staged path.
	ErrDuplicateEntry = errors.New("entry already staged")
	// ErrEmptyPath indicates an entry without a name.
	ErrEmptyPath = errors.New("entry path is empty")
	// ErrUnknownCompression indicates an unsupported compression strategy.
	ErrUnknownCompression = errors.New("unknown compression strategy")
)

// Compression selects how entries are written into the container.
type Compression string

const (
	// CompressionStore writes entries uncompressed.
	CompressionStore Compression = "store"
	// CompressionDeflate uses deflate at the default level.
	CompressionDeflate Compression = "deflate"
	// CompressionFastest uses deflate at the fastest level.
	CompressionFastest Compression = "fastest"
	// CompressionBest uses deflate at the best compression level.
	CompressionBest Compression = "best"
)

// ParseCompression parses a strategy name as accepted on the command line.
func ParseCompression(s string) (Compression, error) {
	c := Compression(s)
	if _, _, err := c.method(); err != nil {
		return "", err
	}
	return c, nil
}

// method returns the zip method and deflate level for the strategy.
func (c Compression) method() (uint16, int, error) {
	switch c {
	case CompressionStore:
		return zip.Store, flate.NoCompression, nil
	case CompressionDeflate, "":
		return zip.Deflate, flate.DefaultCompression, nil
	case CompressionFastest:
		return zip.Deflate, flate.BestSpeed, nil
	case CompressionBest:
		return zip.Deflate, flate.BestCompression, nil
	default:
		return 0, 0, fmt.Errorf("%q: %w", string(c), ErrUnknownCompression)
	}
}

// modTime is written on every entry so equal inputs give equal containers.
var modTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Entry is one named payload of the package.
type Entry struct {
	Path string
	Data []byte
}

// Staging collects entries in the order they are added. Paths are write-once.
type Staging struct {
	entries []Entry
	index   map[string]int
}

// NewStaging returns an empty staging area.
func NewStaging() *Staging {
	return &Staging{index: make(map[string]int)}
}

// Add stages data at path.
func (s *Staging) Add(path string, data []byte) error {
	if path == "" {
		return ErrEmptyPath
	}
	if _, ok := s.index[path]; ok {
		return fmt.Errorf("%s: %w", path, ErrDuplicateEntry)
	}
	s.index[path] = len(s.entries)
	s.entries = append(s.entries, Entry{Path: path, Data: data})
	return nil
}

// Get returns the staged payload at path.
func (s *Staging) Get(path string) ([]byte, bool) {
	i, ok := s.index[path]
	if !ok {
		return nil, false
	}
	return s.entries[i].Data, true
}

// Paths returns staged paths in staging order.
func (s *Staging) Paths() []string {
	paths := make([]string, len(s.entries))
	for i, e := range s.entries {
		paths[i] = e.Path
	}
	return paths
}

// Len returns the number of staged entries.
func (s *Staging) Len() int {
	return len(s.entries)
}

// Finalize writes every staged entry, in staging order, as a zip container to w.
func (s *Staging) Finalize(w io.Writer, c Compression) error {
	method, level, err := c.method()
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	if method == zip.Deflate {
		zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, level)
		})
	}

	for _, e := range s.entries {
		fh := &zip.FileHeader{
			Name:     e.Path,
			Method:   method,
			Modified: modTime,
		}
		fw, err := zw.CreateHeader(fh)
		if err != nil {
			zw.Close()
			return fmt.Errorf("create %s: %w", e.Path, err)
		}
		if _, err := fw.Write(e.Data); err != nil {
			zw.Close()
			return fmt.Errorf("write %s: %w", e.Path, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close container: %w", err)
	}
	return nil
}

// Bytes finalizes into a new buffer.
func (s *Staging) Bytes(c Compression) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Finalize(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
