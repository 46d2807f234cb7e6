package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
)

var (
	// ErrMissingPart indicates a part the package cannot be read without.
	ErrMissingPart = errors.New("required part missing")
	// ErrDanglingRelationship indicates an internal relationship whose target
	// is not in the package.
	ErrDanglingRelationship = errors.New("relationship target not found")
	// ErrUncoveredPart indicates a part without a content type.
	ErrUncoveredPart = errors.New("part has no content type")
)

// Relationship is one entry of a relationships part.
type Relationship struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Target     string `json:"target"`
	TargetMode string `json:"target_mode,omitempty"`
}

// SheetEntry is one sheet of the workbook catalog with its resolved paths.
type SheetEntry struct {
	Name          string         `json:"name"`
	SheetID       string         `json:"sheet_id"`
	RID           string         `json:"r_id"`
	Path          string         `json:"path"`
	Relationships []Relationship `json:"relationships,omitempty"`
}

// Package describes the parts and relationships of a spreadsheet package.
type Package struct {
	Entries      []string          `json:"entries"`
	Defaults     map[string]string `json:"defaults"`
	Overrides    map[string]string `json:"overrides"`
	Root         []Relationship    `json:"root"`
	WorkbookPath string            `json:"workbook_path"`
	WorkbookRels []Relationship    `json:"workbook_rels"`
	Sheets       []SheetEntry      `json:"sheets"`
}

// ReadPackageFile reads the package at path.
func ReadPackageFile(name string) (*Package, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return ReadPackage(bytes.NewReader(data), int64(len(data)))
}

// ReadPackage lists the entries of the container and follows the package
// relationships to the workbook, its relationships and each sheet.
func ReadPackage(ra io.ReaderAt, size int64) (*Package, error) {
	r, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}

	pkg := &Package{
		Defaults:  make(map[string]string),
		Overrides: make(map[string]string),
	}
	for _, f := range r.File {
		pkg.Entries = append(pkg.Entries, f.Name)
	}

	ct, err := readZipFile(r, "[Content_Types].xml")
	if err != nil {
		return nil, err
	}
	if ct == nil {
		return nil, fmt.Errorf("[Content_Types].xml: %w", ErrMissingPart)
	}
	parseContentTypes(ct, pkg)

	rootRels, err := readZipFile(r, "_rels/.rels")
	if err != nil {
		return nil, err
	}
	if rootRels == nil {
		return nil, fmt.Errorf("_rels/.rels: %w", ErrMissingPart)
	}
	pkg.Root = parseRelationships(rootRels)
	for _, rel := range pkg.Root {
		if strings.HasSuffix(rel.Type, "/officeDocument") {
			pkg.WorkbookPath = resolveRelativePath(rel.Target, "")
		}
	}
	if pkg.WorkbookPath == "" {
		return nil, fmt.Errorf("officeDocument relationship: %w", ErrMissingPart)
	}

	workbookXML, err := readZipFile(r, pkg.WorkbookPath)
	if err != nil {
		return nil, err
	}
	if workbookXML == nil {
		return nil, fmt.Errorf("%s: %w", pkg.WorkbookPath, ErrMissingPart)
	}
	baseDir := path.Dir(pkg.WorkbookPath)

	wbRelsXML, err := readZipFile(r, relsPathFor(pkg.WorkbookPath))
	if err != nil {
		return nil, err
	}
	pkg.WorkbookRels = parseRelationships(wbRelsXML)
	targets := make(map[string]string, len(pkg.WorkbookRels))
	for _, rel := range pkg.WorkbookRels {
		targets[rel.ID] = resolveRelativePath(rel.Target, baseDir)
	}

	for _, sheet := range parseWorkbookSheets(workbookXML) {
		sheet.Path = targets[sheet.RID]
		if sheet.Path != "" {
			sheetRels, err := readZipFile(r, relsPathFor(sheet.Path))
			if err != nil {
				return nil, err
			}
			sheet.Relationships = parseRelationships(sheetRels)
		}
		pkg.Sheets = append(pkg.Sheets, sheet)
	}
	return pkg, nil
}

// Verify checks that every entry has a content type and that every internal
// relationship target exists in the package.
func (p *Package) Verify() error {
	entries := make(map[string]bool, len(p.Entries))
	for _, e := range p.Entries {
		entries[e] = true
	}

	for _, e := range p.Entries {
		if e == "[Content_Types].xml" {
			continue
		}
		if _, ok := p.Overrides["/"+e]; ok {
			continue
		}
		if _, ok := p.Defaults[strings.TrimPrefix(path.Ext(e), ".")]; ok {
			continue
		}
		return fmt.Errorf("%s: %w", e, ErrUncoveredPart)
	}
	for name := range p.Overrides {
		if !entries[strings.TrimPrefix(name, "/")] {
			return fmt.Errorf("override %s: %w", name, ErrMissingPart)
		}
	}

	check := func(rels []Relationship, baseDir string) error {
		for _, rel := range rels {
			if rel.TargetMode == "External" {
				continue
			}
			target := resolveRelativePath(rel.Target, baseDir)
			if !entries[target] {
				return fmt.Errorf("%s -> %s: %w", rel.ID, target, ErrDanglingRelationship)
			}
		}
		return nil
	}
	if err := check(p.Root, ""); err != nil {
		return err
	}
	if err := check(p.WorkbookRels, path.Dir(p.WorkbookPath)); err != nil {
		return err
	}
	for _, s := range p.Sheets {
		if s.Path == "" || !entries[s.Path] {
			return fmt.Errorf("sheet %q (%s): %w", s.Name, s.RID, ErrDanglingRelationship)
		}
		if err := check(s.Relationships, path.Dir(s.Path)); err != nil {
			return fmt.Errorf("sheet %q: %w", s.Name, err)
		}
	}
	return nil
}

// readZipFile returns the content of name, or nil when the entry is absent.
func readZipFile(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", name, err)
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, nil
}

// relsPathFor returns the relationships part belonging to part, e.g.
// xl/_rels/workbook.xml.rels for xl/workbook.xml.
func relsPathFor(part string) string {
	dir, file := path.Split(part)
	return dir + "_rels/" + file + ".rels"
}

// resolveRelativePath resolves a relationship target against the directory of
// its source part. Absolute targets are package-rooted.
func resolveRelativePath(target, baseDir string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return strings.TrimPrefix(path.Join(baseDir, target), "/")
}

func parseContentTypes(data []byte, pkg *Package) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		var key, contentType string
		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "Extension", "PartName":
				key = attr.Value
			case "ContentType":
				contentType = attr.Value
			}
		}
		switch se.Name.Local {
		case "Default":
			pkg.Defaults[key] = contentType
		case "Override":
			pkg.Overrides[key] = contentType
		}
	}
}

func parseRelationships(data []byte) []Relationship {
	var result []Relationship
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			var rel Relationship
			for _, attr := range se.Attr {
				switch attr.Name.Local {
				case "Id":
					rel.ID = attr.Value
				case "Type":
					rel.Type = attr.Value
				case "Target":
					rel.Target = attr.Value
				case "TargetMode":
					rel.TargetMode = attr.Value
				}
			}
			result = append(result, rel)
		}
	}

	return result
}

// parseWorkbookSheets returns the sheet catalog in workbook order.
func parseWorkbookSheets(data []byte) []SheetEntry {
	var result []SheetEntry
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "sheet" {
			var sheet SheetEntry
			for _, attr := range se.Attr {
				switch attr.Name.Local {
				case "name":
					sheet.Name = attr.Value
				case "sheetId":
					sheet.SheetID = attr.Value
				case "id":
					sheet.RID = attr.Value
				}
			}
			if sheet.Name != "" && sheet.RID != "" {
				result = append(result, sheet)
			}
		}
	}

	return result
}
