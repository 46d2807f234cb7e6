// Package opc describes the Open Packaging Conventions layer of a spreadsheet
// package: relationship ids, part names, content types and relationship XML.
package opc

import "fmt"

// ID is a relationship id, unique within one relationship table.
type ID int

// String renders the id the way relationship tables reference it (rId<n>).
func (id ID) String() string {
	return fmt.Sprintf("rId%d", int(id))
}

// RootRelationship is the id of the package-level relationship to the workbook.
const RootRelationship ID = 1

// Scheme maps sheet positions and workbook-level parts to relationship ids in
// the workbook relationship table. Ids 1..N belong to worksheets in sheet
// order, N+1 to the shared strings part and N+2 to the styles part.
type Scheme struct {
	sheets int
}

// NewScheme returns the id scheme for a workbook with sheetCount sheets.
func NewScheme(sheetCount int) Scheme {
	return Scheme{sheets: sheetCount}
}

// SheetCount returns N.
func (s Scheme) SheetCount() int {
	return s.sheets
}

// Worksheet returns the relationship id of the worksheet at zero-based index i.
func (s Scheme) Worksheet(i int) ID {
	return ID(i + 1)
}

// SheetID returns the numeric sheetId of the sheet at index i. It coincides
// with the worksheet relationship id because both derive from position.
func (s Scheme) SheetID(i int) int {
	return int(s.Worksheet(i))
}

// SharedStrings returns the relationship id of the shared strings part.
func (s Scheme) SharedStrings() ID {
	return ID(s.sheets + 1)
}

// Styles returns the relationship id of the styles part.
func (s Scheme) Styles() ID {
	return ID(s.sheets + 2)
}

// IDs returns every id of the workbook relationship table in ascending order.
func (s Scheme) IDs() []ID {
	ids := make([]ID, 0, s.sheets+2)
	for i := 0; i < s.sheets; i++ {
		ids = append(ids, s.Worksheet(i))
	}
	return append(ids, s.SharedStrings(), s.Styles())
}
