package archive

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"
)

func TestStagingAdd(t *testing.T) {
	s := NewStaging()
	if err := s.Add("xl/workbook.xml", []byte("<workbook/>")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := s.Add("xl/workbook.xml", []byte("<other/>")); !errors.Is(err, ErrDuplicateEntry) {
		t.Errorf("second Add = %v, expected ErrDuplicateEntry", err)
	}
	if err := s.Add("", nil); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("Add(\"\") = %v, expected ErrEmptyPath", err)
	}

	data, ok := s.Get("xl/workbook.xml")
	if !ok || string(data) != "<workbook/>" {
		t.Errorf("Get() = %q, %v; first write must be kept", data, ok)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, expected 1", s.Len())
	}
}

func TestFinalizeOrderAndContent(t *testing.T) {
	tests := []Compression{CompressionStore, CompressionDeflate, CompressionFastest, CompressionBest}

	for _, c := range tests {
		s := NewStaging()
		paths := []string{"[Content_Types].xml", "_rels/.rels", "xl/workbook.xml", "xl/worksheets/sheet1.xml"}
		for _, p := range paths {
			if err := s.Add(p, []byte("payload of "+p)); err != nil {
				t.Fatalf("Add(%q) failed: %v", p, err)
			}
		}

		data, err := s.Bytes(c)
		if err != nil {
			t.Fatalf("Bytes(%s) failed: %v", c, err)
		}

		r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			t.Fatalf("zip.NewReader(%s) failed: %v", c, err)
		}
		if len(r.File) != len(paths) {
			t.Fatalf("%s: %d entries, expected %d", c, len(r.File), len(paths))
		}
		for i, f := range r.File {
			if f.Name != paths[i] {
				t.Errorf("%s: entry %d = %q, expected %q", c, i, f.Name, paths[i])
			}
			rc, err := f.Open()
			if err != nil {
				t.Fatalf("open %s: %v", f.Name, err)
			}
			body, _ := io.ReadAll(rc)
			rc.Close()
			if string(body) != "payload of "+paths[i] {
				t.Errorf("%s: entry %q = %q", c, f.Name, body)
			}
			wantMethod := zip.Deflate
			if c == CompressionStore {
				wantMethod = zip.Store
			}
			if f.Method != wantMethod {
				t.Errorf("%s: entry %q method = %d, expected %d", c, f.Name, f.Method, wantMethod)
			}
		}
	}
}

func TestFinalizeDeterministic(t *testing.T) {
	build := func() []byte {
		s := NewStaging()
		s.Add("a.xml", []byte("<a/>"))
		s.Add("b.xml", []byte("<b/>"))
		data, err := s.Bytes(CompressionDeflate)
		if err != nil {
			t.Fatalf("Bytes failed: %v", err)
		}
		return data
	}

	if !bytes.Equal(build(), build()) {
		t.Error("two finalizations of equal staging differ")
	}
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"store", false},
		{"deflate", false},
		{"fastest", false},
		{"best", false},
		{"zstd", true},
	}

	for _, tt := range tests {
		_, err := ParseCompression(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCompression(%q) error = %v, expected error %v", tt.input, err, tt.wantErr)
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownCompression) {
			t.Errorf("ParseCompression(%q) = %v, expected ErrUnknownCompression", tt.input, err)
		}
	}

	s := NewStaging()
	if err := s.Finalize(io.Discard, Compression("lzma")); !errors.Is(err, ErrUnknownCompression) {
		t.Errorf("Finalize with unknown strategy = %v", err)
	}
}
