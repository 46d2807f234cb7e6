package parser

import (
	"github.com/ukaji3/xlpack-go/pkg/xlpack/document"
	"github.com/ukaji3/xlpack-go/pkg/xlpack/models"
	"github.com/xuri/excelize/v2"
)

// borderStyleNames maps excelize border style numbers to their names.
var borderStyleNames = map[int]string{
	1: "thin", 2: "medium", 3: "dashed", 4: "dotted", 5: "thick", 6: "double",
	7: "hair", 8: "mediumDashed", 9: "dashDot", 10: "mediumDashDot",
	11: "dashDotDot", 12: "mediumDashDotDot", 13: "slantDashDot",
}

// ReadDocument reads every sheet of f into a Document. With opts.Styles the
// referenced cell formats are read back into named styles.
func ReadDocument(f *excelize.File, opts CellOptions) (*models.Document, error) {
	doc := &models.Document{}
	used := make(map[string]int)

	for _, sheetName := range f.GetSheetList() {
		rows, err := ReadCells(f, sheetName, opts)
		if err != nil {
			return nil, err
		}
		sd := models.SheetDocument{Name: sheetName, Rows: rows}

		merges, err := f.GetMergeCells(sheetName)
		if err != nil {
			return nil, err
		}
		for _, m := range merges {
			sd.Merges = append(sd.Merges, m.GetStartAxis()+":"+m.GetEndAxis())
		}

		for _, row := range rows {
			for _, name := range row.Styles {
				used[name] = 0
			}
		}
		doc.Sheets = append(doc.Sheets, sd)
	}

	if len(used) == 0 {
		return doc, nil
	}
	doc.Styles = make(map[string]models.StyleDocument, len(used))
	for idx := 1; len(doc.Styles) < len(used); idx++ {
		name := StyleName(idx)
		if _, ok := used[name]; !ok {
			continue
		}
		style, err := f.GetStyle(idx)
		if err != nil {
			return nil, err
		}
		doc.Styles[name] = styleDocument(style)
	}
	return doc, nil
}

// styleDocument flattens an excelize style into the document form.
func styleDocument(s *excelize.Style) models.StyleDocument {
	var sd models.StyleDocument
	if s == nil {
		return sd
	}

	if s.CustomNumFmt != nil {
		sd.NumFmt = *s.CustomNumFmt
	} else if s.NumFmt != 0 {
		sd.NumFmt, _ = document.BuiltinNumFmtCode(s.NumFmt)
	}

	if s.Font != nil {
		sd.Bold = s.Font.Bold
		sd.Italic = s.Font.Italic
		sd.Underline = s.Font.Underline != "" && s.Font.Underline != "none"
		if s.Font.Family != "" && s.Font.Family != "Calibri" {
			sd.FontName = s.Font.Family
		}
		if s.Font.Size != 0 && s.Font.Size != 11 {
			sd.FontSize = s.Font.Size
		}
		sd.FontColor = s.Font.Color
	}

	if s.Fill.Type == "pattern" && s.Fill.Pattern == 1 && len(s.Fill.Color) > 0 {
		sd.Fill = s.Fill.Color[0]
	}

	for _, b := range s.Border {
		if name, ok := borderStyleNames[b.Style]; ok {
			sd.Border = name
			break
		}
	}

	if s.Alignment != nil {
		sd.Horizontal = s.Alignment.Horizontal
		sd.Vertical = s.Alignment.Vertical
		sd.WrapText = s.Alignment.WrapText
	}
	return sd
}
