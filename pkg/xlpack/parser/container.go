package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/richardlehane/mscfb"
	"github.com/richardlehane/msoleps"
)

var (
	// ErrEncryptedPackage indicates a password protected package.
	ErrEncryptedPackage = errors.New("package is encrypted")
	// ErrLegacyFormat indicates a binary workbook rather than a zip package.
	ErrLegacyFormat = errors.New("legacy binary workbook")
	// ErrUnknownContainer indicates neither a zip nor a compound file.
	ErrUnknownContainer = errors.New("unrecognized container")
)

// Container kinds
const (
	ContainerZip      = "zip"
	ContainerCompound = "compound"
)

var (
	zipMagic = []byte("PK\x03\x04")
	cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// ContainerInfo describes the outer container of a file.
type ContainerInfo struct {
	Kind       string            `json:"kind"`
	Streams    []string          `json:"streams,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

// DetectContainer identifies the container of ra. Zip packages return no
// error. Compound files are listed and then reported with ErrEncryptedPackage
// or ErrLegacyFormat, since neither can be read as a package.
func DetectContainer(ra io.ReaderAt) (*ContainerInfo, error) {
	head := make([]byte, len(cfbMagic))
	n, err := ra.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		return nil, err
	}
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, zipMagic):
		return &ContainerInfo{Kind: ContainerZip}, nil
	case bytes.Equal(head, cfbMagic):
		return readCompound(ra)
	default:
		return nil, ErrUnknownContainer
	}
}

func readCompound(ra io.ReaderAt) (*ContainerInfo, error) {
	doc, err := mscfb.New(ra)
	if err != nil {
		return nil, fmt.Errorf("read compound file: %w", err)
	}

	info := &ContainerInfo{Kind: ContainerCompound}
	encrypted := false
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		info.Streams = append(info.Streams, entry.Name)
		switch entry.Name {
		case "EncryptionInfo", "EncryptedPackage":
			encrypted = true
		}
		if msoleps.IsMSOLEPS(entry.Initial) {
			readProperties(entry, info)
		}
	}

	if encrypted {
		return info, ErrEncryptedPackage
	}
	return info, ErrLegacyFormat
}

// readProperties adds the entries of a property set stream. Streams that do
// not parse are skipped.
func readProperties(r io.Reader, info *ContainerInfo) {
	props, err := msoleps.NewFrom(r)
	if err != nil {
		return
	}
	if info.Properties == nil {
		info.Properties = make(map[string]string)
	}
	for _, p := range props.Property {
		info.Properties[p.Name] = p.String()
	}
}
