// Package models defines the in-memory workbook consumed by the package
// assembler and the serializable document it is usually resolved from.
package models

// Workbook is everything needed to assemble one spreadsheet package. The
// assembler only reads it.
type Workbook struct {
	// Sheets is the ordered sheet list. Position defines sheetId and the
	// worksheet relationship id.
	Sheets []Sheet
	// SharedStrings is the shared string pool. Cell markup references entries
	// by index, so the order is significant and entries must be unique.
	SharedStrings []string
	// StyleData holds the positional style tables referenced by Styles.
	StyleData StyleData
	// Styles is the flat list of resolved cell formats (cellXfs).
	Styles []CellFormat
}

// SheetNames returns the sheet names in order.
func (wb *Workbook) SheetNames() []string {
	names := make([]string, len(wb.Sheets))
	for i, s := range wb.Sheets {
		if s != nil {
			names[i] = s.Name()
		}
	}
	return names
}
