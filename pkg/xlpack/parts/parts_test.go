package parts

import (
	"encoding/xml"
	"fmt"
	"strings"
	"testing"

	"github.com/ukaji3/xlpack-go/pkg/xlpack/models"
	"github.com/ukaji3/xlpack-go/pkg/xlpack/opc"
)

type relsDoc struct {
	Relationship []struct {
		ID         string `xml:"Id,attr"`
		Type       string `xml:"Type,attr"`
		Target     string `xml:"Target,attr"`
		TargetMode string `xml:"TargetMode,attr"`
	} `xml:"Relationship"`
}

func TestContentTypes(t *testing.T) {
	for _, n := range []int{1, 3} {
		data, err := ContentTypes(opc.NewPlan(n))
		if err != nil {
			t.Fatalf("ContentTypes(%d) failed: %v", n, err)
		}
		if !strings.HasPrefix(string(data), opc.Header) {
			t.Errorf("ContentTypes(%d) missing XML declaration", n)
		}

		var doc struct {
			Default []struct {
				Extension   string `xml:"Extension,attr"`
				ContentType string `xml:"ContentType,attr"`
			} `xml:"Default"`
			Override []struct {
				PartName    string `xml:"PartName,attr"`
				ContentType string `xml:"ContentType,attr"`
			} `xml:"Override"`
		}
		if err := xml.Unmarshal(data, &doc); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(doc.Default) != 2 || doc.Default[0].Extension != "xml" || doc.Default[1].Extension != "rels" {
			t.Errorf("ContentTypes(%d) defaults = %+v", n, doc.Default)
		}
		if len(doc.Override) != n+3 {
			t.Fatalf("ContentTypes(%d) has %d overrides, expected %d", n, len(doc.Override), n+3)
		}
		for i := 0; i < n; i++ {
			o := doc.Override[i+1]
			expected := fmt.Sprintf("/xl/worksheets/sheet%d.xml", i+1)
			if o.PartName != expected || o.ContentType != opc.ContentTypeWorksheet {
				t.Errorf("override %d = %+v, expected %s", i+1, o, expected)
			}
		}
	}
}

func TestPackageRels(t *testing.T) {
	data, err := PackageRels()
	if err != nil {
		t.Fatalf("PackageRels failed: %v", err)
	}
	var doc relsDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.Relationship) != 1 {
		t.Fatalf("expected 1 relationship, got %d", len(doc.Relationship))
	}
	r := doc.Relationship[0]
	if r.ID != "rId1" || r.Type != opc.RelTypeOfficeDocument || r.Target != "xl/workbook.xml" {
		t.Errorf("root relationship = %+v", r)
	}
}

func TestWorkbook(t *testing.T) {
	names := []string{"Summary", "Data & Notes", "Q3"}
	data, err := Workbook(opc.NewPlan(3), names)
	if err != nil {
		t.Fatalf("Workbook failed: %v", err)
	}

	for _, attr := range []string{`xmlns="` + opc.NSSpreadsheetML + `"`, `xmlns:r="` + opc.NSOfficeRels + `"`, `mc:Ignorable="x15"`} {
		if !strings.Contains(string(data), attr) {
			t.Errorf("workbook.xml missing %s", attr)
		}
	}

	dec := xml.NewDecoder(strings.NewReader(string(data)))
	i := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "sheet" {
			continue
		}
		var name, sheetID, rID string
		for _, a := range se.Attr {
			switch {
			case a.Name.Local == "name":
				name = a.Value
			case a.Name.Local == "sheetId":
				sheetID = a.Value
			case a.Name.Local == "id" && a.Name.Space == opc.NSOfficeRels:
				rID = a.Value
			}
		}
		if name != names[i] {
			t.Errorf("sheet %d name = %q, expected %q", i, name, names[i])
		}
		if sheetID != fmt.Sprint(i+1) || rID != fmt.Sprintf("rId%d", i+1) {
			t.Errorf("sheet %d sheetId=%s r:id=%s", i, sheetID, rID)
		}
		i++
	}
	if i != len(names) {
		t.Errorf("found %d sheet entries, expected %d", i, len(names))
	}

	if _, err := Workbook(opc.NewPlan(2), names); err == nil {
		t.Error("Workbook with mismatched name count should fail")
	}
}

func TestWorkbookRelsIDSet(t *testing.T) {
	for n := 1; n <= 8; n++ {
		data, err := WorkbookRels(opc.NewPlan(n))
		if err != nil {
			t.Fatalf("WorkbookRels(%d) failed: %v", n, err)
		}
		var doc relsDoc
		if err := xml.Unmarshal(data, &doc); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		byID := make(map[string]string)
		for _, r := range doc.Relationship {
			if _, dup := byID[r.ID]; dup {
				t.Errorf("WorkbookRels(%d) duplicate id %s", n, r.ID)
			}
			byID[r.ID] = r.Target
		}
		if len(byID) != n+2 {
			t.Errorf("WorkbookRels(%d) has %d ids, expected %d", n, len(byID), n+2)
		}
		for i := 1; i <= n; i++ {
			if target := byID[fmt.Sprintf("rId%d", i)]; target != fmt.Sprintf("worksheets/sheet%d.xml", i) {
				t.Errorf("WorkbookRels(%d) rId%d -> %q", n, i, target)
			}
		}
		if byID[fmt.Sprintf("rId%d", n+1)] != "sharedStrings.xml" {
			t.Errorf("WorkbookRels(%d) shared strings id wrong", n)
		}
		if byID[fmt.Sprintf("rId%d", n+2)] != "styles.xml" {
			t.Errorf("WorkbookRels(%d) styles id wrong", n)
		}
	}
}

func TestSharedStringsCounts(t *testing.T) {
	tests := [][]string{
		{},
		{"only"},
		{"alpha", "beta", " padded ", "a < b & c", "日本語"},
	}

	for _, pool := range tests {
		data, err := SharedStrings(pool)
		if err != nil {
			t.Fatalf("SharedStrings(%d) failed: %v", len(pool), err)
		}
		var doc struct {
			Count       int `xml:"count,attr"`
			UniqueCount int `xml:"uniqueCount,attr"`
			SI          []struct {
				T string `xml:"t"`
			} `xml:"si"`
		}
		if err := xml.Unmarshal(data, &doc); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if doc.Count != len(pool) || doc.UniqueCount != len(pool) {
			t.Errorf("SharedStrings(%d) count=%d uniqueCount=%d", len(pool), doc.Count, doc.UniqueCount)
		}
		if len(doc.SI) != len(pool) {
			t.Fatalf("SharedStrings(%d) has %d items", len(pool), len(doc.SI))
		}
		for i, s := range pool {
			if doc.SI[i].T != s {
				t.Errorf("item %d = %q, expected %q", i, doc.SI[i].T, s)
			}
		}
	}

	data, _ := SharedStrings([]string{" padded "})
	if !strings.Contains(string(data), `xml:space="preserve"`) {
		t.Error("padded string should carry xml:space=\"preserve\"")
	}
}

type stylesDoc struct {
	NumFmts *struct {
		Count  int        `xml:"count,attr"`
		NumFmt []struct{} `xml:"numFmt"`
	} `xml:"numFmts"`
	Fonts struct {
		Count int        `xml:"count,attr"`
		Font  []struct{} `xml:"font"`
	} `xml:"fonts"`
	Fills struct {
		Count int `xml:"count,attr"`
		Fill  []struct {
			PatternFill struct {
				PatternType string `xml:"patternType,attr"`
			} `xml:"patternFill"`
		} `xml:"fill"`
	} `xml:"fills"`
	Borders struct {
		Count  int        `xml:"count,attr"`
		Border []struct{} `xml:"border"`
	} `xml:"borders"`
	CellXfs struct {
		Count int        `xml:"count,attr"`
		Xf    []struct{} `xml:"xf"`
	} `xml:"cellXfs"`
	Dxfs *struct {
		Count int        `xml:"count,attr"`
		Dxf   []struct{} `xml:"dxf"`
	} `xml:"dxfs"`
}

func TestStylesCounts(t *testing.T) {
	base := models.StyleData{
		Fonts: []models.Font{
			{Sz: &models.FloatVal{Val: 11}, Name: &models.StringVal{Val: "Calibri"}},
			{B: &models.Flag{}, Sz: &models.FloatVal{Val: 11}, Name: &models.StringVal{Val: "Calibri"}},
		},
		Fills: []models.Fill{
			{PatternFill: &models.PatternFill{PatternType: "none"}},
			{PatternFill: &models.PatternFill{PatternType: "gray125"}},
			{PatternFill: &models.PatternFill{PatternType: "solid", FgColor: &models.Color{RGB: "FFFFFF00"}}},
		},
		Borders: []models.Border{{}},
	}
	styles := []models.CellFormat{{}, {FontID: 1, ApplyFont: true}}

	tests := []struct {
		name    string
		numFmts []models.NumFmt
		dxfs    models.DxfCollection
	}{
		{"no numFmts no dxfs", nil, nil},
		{"numFmts", []models.NumFmt{{NumFmtID: 164, FormatCode: "0.000"}, {NumFmtID: 165, FormatCode: "yyyy-mm-dd"}}, nil},
		{"dxfs", nil, models.DxfCollection{{Font: &models.Font{B: &models.Flag{}}}}},
	}

	for _, tt := range tests {
		data := base
		data.NumFmts = tt.numFmts
		data.Dxfs = tt.dxfs

		out, err := Styles(data, styles)
		if err != nil {
			t.Fatalf("%s: Styles failed: %v", tt.name, err)
		}
		var doc stylesDoc
		if err := xml.Unmarshal(out, &doc); err != nil {
			t.Fatalf("%s: unmarshal: %v", tt.name, err)
		}

		if len(tt.numFmts) == 0 {
			if doc.NumFmts != nil || strings.Contains(string(out), "<numFmts") {
				t.Errorf("%s: numFmts element should be absent", tt.name)
			}
		} else if doc.NumFmts == nil || doc.NumFmts.Count != len(tt.numFmts) || len(doc.NumFmts.NumFmt) != len(tt.numFmts) {
			t.Errorf("%s: numFmts = %+v, expected %d", tt.name, doc.NumFmts, len(tt.numFmts))
		}
		if doc.Fonts.Count != 2 || len(doc.Fonts.Font) != 2 {
			t.Errorf("%s: fonts count=%d len=%d", tt.name, doc.Fonts.Count, len(doc.Fonts.Font))
		}
		if doc.Fills.Count != 3 || len(doc.Fills.Fill) != 3 {
			t.Errorf("%s: fills count=%d len=%d", tt.name, doc.Fills.Count, len(doc.Fills.Fill))
		}
		if len(doc.Fills.Fill) == 3 && doc.Fills.Fill[1].PatternFill.PatternType != "gray125" {
			t.Errorf("%s: fill records must be wrapped in <fill>", tt.name)
		}
		if doc.Borders.Count != 1 || len(doc.Borders.Border) != 1 {
			t.Errorf("%s: borders count=%d len=%d", tt.name, doc.Borders.Count, len(doc.Borders.Border))
		}
		if doc.CellXfs.Count != 2 || len(doc.CellXfs.Xf) != 2 {
			t.Errorf("%s: cellXfs count=%d len=%d", tt.name, doc.CellXfs.Count, len(doc.CellXfs.Xf))
		}
		if tt.dxfs.Len() == 0 && doc.Dxfs != nil {
			t.Errorf("%s: dxfs should be absent", tt.name)
		}
		if tt.dxfs.Len() > 0 && (doc.Dxfs == nil || doc.Dxfs.Count != tt.dxfs.Len()) {
			t.Errorf("%s: dxfs = %+v", tt.name, doc.Dxfs)
		}
	}
}

func TestStylesElementOrder(t *testing.T) {
	data := models.StyleData{
		NumFmts: []models.NumFmt{{NumFmtID: 164, FormatCode: "0.0"}},
		Fonts:   []models.Font{{}},
		Fills:   []models.Fill{{}},
		Borders: []models.Border{{}},
		Dxfs:    models.DxfCollection{{}},
	}
	out, err := Styles(data, []models.CellFormat{{}})
	if err != nil {
		t.Fatalf("Styles failed: %v", err)
	}

	s := string(out)
	last := -1
	for _, el := range []string{"<numFmts", "<fonts", "<fills", "<borders", "<cellXfs", "<dxfs"} {
		pos := strings.Index(s, el)
		if pos < 0 {
			t.Fatalf("missing %s", el)
		}
		if pos < last {
			t.Errorf("%s out of order", el)
		}
		last = pos
	}
}
