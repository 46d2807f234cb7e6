package opc

import (
	"errors"
	"testing"
)

func TestSchemeIDs(t *testing.T) {
	for n := 0; n <= 12; n++ {
		s := NewScheme(n)
		ids := s.IDs()
		if len(ids) != n+2 {
			t.Fatalf("NewScheme(%d).IDs() has %d ids, expected %d", n, len(ids), n+2)
		}
		seen := make(map[ID]bool)
		for i, id := range ids {
			if id != ID(i+1) {
				t.Errorf("NewScheme(%d).IDs()[%d] = %d, expected %d", n, i, id, i+1)
			}
			if seen[id] {
				t.Errorf("NewScheme(%d) duplicate id %d", n, id)
			}
			seen[id] = true
		}
		if s.SharedStrings() != ID(n+1) {
			t.Errorf("NewScheme(%d).SharedStrings() = %d, expected %d", n, s.SharedStrings(), n+1)
		}
		if s.Styles() != ID(n+2) {
			t.Errorf("NewScheme(%d).Styles() = %d, expected %d", n, s.Styles(), n+2)
		}
	}
}

func TestSchemeWorksheet(t *testing.T) {
	s := NewScheme(3)
	tests := []struct {
		index   int
		id      string
		sheetID int
	}{
		{0, "rId1", 1},
		{1, "rId2", 2},
		{2, "rId3", 3},
	}

	for _, tt := range tests {
		if got := s.Worksheet(tt.index).String(); got != tt.id {
			t.Errorf("Worksheet(%d) = %q, expected %q", tt.index, got, tt.id)
		}
		if got := s.SheetID(tt.index); got != tt.sheetID {
			t.Errorf("SheetID(%d) = %d, expected %d", tt.index, got, tt.sheetID)
		}
	}
}

func TestPlanParts(t *testing.T) {
	p := NewPlan(2)
	expected := []Part{
		{WorkbookPath, ContentTypeWorkbook},
		{"xl/worksheets/sheet1.xml", ContentTypeWorksheet},
		{"xl/worksheets/sheet2.xml", ContentTypeWorksheet},
		{StylesPath, ContentTypeStyles},
		{SharedStringsPath, ContentTypeSharedStrings},
	}

	parts := p.Parts()
	if len(parts) != len(expected) {
		t.Fatalf("Parts() returned %d parts, expected %d", len(parts), len(expected))
	}
	for i := range expected {
		if parts[i] != expected[i] {
			t.Errorf("Parts()[%d] = %+v, expected %+v", i, parts[i], expected[i])
		}
	}
	if parts[1].PartName() != "/xl/worksheets/sheet1.xml" {
		t.Errorf("PartName() = %q", parts[1].PartName())
	}
}

func TestPlanCheck(t *testing.T) {
	p := NewPlan(2)
	complete := p.Required()

	tests := []struct {
		name    string
		staged  []string
		wantErr error
	}{
		{"complete", complete, nil},
		{"with sheet rels", append(append([]string{}, complete...), "xl/worksheets/_rels/sheet2.xml.rels"), nil},
		{"missing worksheet", without(complete, "xl/worksheets/sheet2.xml"), ErrPartMissing},
		{"missing styles", without(complete, StylesPath), ErrPartMissing},
		{"unplanned sheet", append(append([]string{}, complete...), "xl/worksheets/sheet3.xml"), ErrPartNotPlanned},
		{"unplanned rels", append(append([]string{}, complete...), "xl/worksheets/_rels/sheet3.xml.rels"), ErrPartNotPlanned},
	}

	for _, tt := range tests {
		err := p.Check(tt.staged)
		if tt.wantErr == nil && err != nil {
			t.Errorf("%s: Check() = %v, expected nil", tt.name, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: Check() = %v, expected %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestMarshalRelationships(t *testing.T) {
	rels := NewRelationships()
	rels.Add(RootRelationship, RelTypeOfficeDocument, WorkbookPath)

	data, err := Marshal(rels)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	expected := Header + `<Relationships xmlns="` + NSRelationships + `">` + "\n" +
		`  <Relationship Id="rId1" Type="` + RelTypeOfficeDocument + `" Target="xl/workbook.xml"></Relationship>` + "\n" +
		`</Relationships>`
	if string(data) != expected {
		t.Errorf("Marshal() =\n%s\nexpected\n%s", data, expected)
	}
}

func without(paths []string, drop string) []string {
	var out []string
	for _, p := range paths {
		if p != drop {
			out = append(out, p)
		}
	}
	return out
}
