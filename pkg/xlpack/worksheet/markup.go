package worksheet

import (
	"context"
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/ukaji3/xlpack-go/pkg/xlpack/opc"
	"github.com/xuri/excelize/v2"
)

// xlsxWorksheet directly maps the worksheet element. Field order is the order
// the schema requires.
type xlsxWorksheet struct {
	XMLName    xml.Name        `xml:"worksheet"`
	Xmlns      string          `xml:"xmlns,attr"`
	XmlnsR     string          `xml:"xmlns:r,attr"`
	Dimension  xlsxDimension   `xml:"dimension"`
	SheetData  xlsxSheetData   `xml:"sheetData"`
	MergeCells *xlsxMergeCells `xml:"mergeCells"`
	Hyperlinks *xlsxHyperlinks `xml:"hyperlinks"`
}

type xlsxDimension struct {
	Ref string `xml:"ref,attr"`
}

type xlsxSheetData struct {
	Row []xlsxRow `xml:"row"`
}

type xlsxRow struct {
	R int     `xml:"r,attr"`
	C []xlsxC `xml:"c"`
}

// xlsxC is one cell. T is empty for numbers and formulas.
type xlsxC struct {
	R  string  `xml:"r,attr"`
	S  int     `xml:"s,attr,omitempty"`
	T  string  `xml:"t,attr,omitempty"`
	F  *string `xml:"f"`
	V  *string `xml:"v"`
	IS *xlsxIS `xml:"is"`
}

type xlsxIS struct {
	T xlsxT `xml:"t"`
}

type xlsxT struct {
	Space string `xml:"xml:space,attr,omitempty"`
	Val   string `xml:",chardata"`
}

type xlsxMergeCells struct {
	Count int             `xml:"count,attr"`
	Cell  []xlsxMergeCell `xml:"mergeCell"`
}

type xlsxMergeCell struct {
	Ref string `xml:"ref,attr"`
}

type xlsxHyperlinks struct {
	Hyperlink []xlsxHyperlink `xml:"hyperlink"`
}

type xlsxHyperlink struct {
	Ref string `xml:"ref,attr"`
	RID string `xml:"r:id,attr"`
}

// Markup renders the worksheet part.
func (g *Grid) Markup(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ws := xlsxWorksheet{
		Xmlns:     opc.NSSpreadsheetML,
		XmlnsR:    opc.NSOfficeRels,
		Dimension: xlsxDimension{Ref: g.Dimension()},
	}

	rows, cols := g.rows()
	for _, r := range rows {
		row := xlsxRow{R: r}
		for _, c := range cols[r] {
			name, _ := excelize.CoordinatesToCellName(c, r)
			row.C = append(row.C, renderCell(name, g.cells[coord{row: r, col: c}]))
		}
		ws.SheetData.Row = append(ws.SheetData.Row, row)
	}

	if len(g.merges) > 0 {
		mc := &xlsxMergeCells{Count: len(g.merges)}
		for _, m := range g.merges {
			mc.Cell = append(mc.Cell, xlsxMergeCell{Ref: m.String()})
		}
		ws.MergeCells = mc
	}

	if len(g.links) > 0 {
		hl := &xlsxHyperlinks{}
		for i, l := range g.links {
			hl.Hyperlink = append(hl.Hyperlink, xlsxHyperlink{Ref: l.Ref, RID: opc.ID(i + 1).String()})
		}
		ws.Hyperlinks = hl
	}

	return opc.Marshal(&ws)
}

// RelsMarkup renders the sheet-local relationships, one external hyperlink
// relationship per link, or nil when the grid has no links.
func (g *Grid) RelsMarkup(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(g.links) == 0 {
		return nil, nil
	}
	rels := opc.NewRelationships()
	for i, l := range g.links {
		rels.AddExternal(opc.ID(i+1), opc.RelTypeHyperlink, l.Target)
	}
	return opc.Marshal(rels)
}

func renderCell(name string, cell Cell) xlsxC {
	c := xlsxC{R: name, S: cell.Style}
	switch cell.Kind {
	case KindSharedString:
		c.T = "s"
		c.V = ptr(strconv.Itoa(cell.Index))
	case KindNumber:
		c.V = ptr(strconv.FormatFloat(cell.Number, 'f', -1, 64))
	case KindBool:
		c.T = "b"
		if cell.Bool {
			c.V = ptr("1")
		} else {
			c.V = ptr("0")
		}
	case KindInlineString:
		c.T = "inlineStr"
		t := xlsxT{Val: cell.Text}
		if cell.Text != strings.TrimSpace(cell.Text) {
			t.Space = "preserve"
		}
		c.IS = &xlsxIS{T: t}
	case KindFormula:
		c.F = ptr(cell.Text)
	}
	return c
}

func ptr(s string) *string {
	return &s
}
