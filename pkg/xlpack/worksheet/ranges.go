package worksheet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrInvalidRange indicates a cell range that cannot be parsed.
var ErrInvalidRange = errors.New("invalid cell range")

// Range is a rectangular block of cells with 1-based, inclusive bounds.
type Range struct {
	R1, C1 int
	R2, C2 int
}

// ParseRange parses a reference like $A$1:$D$10 or B2. Corners given in
// either order are normalized so that R1 <= R2 and C1 <= C2.
func ParseRange(ref string) (Range, error) {
	// Remove $ signs
	ref = strings.ReplaceAll(strings.TrimSpace(ref), "$", "")

	parts := strings.Split(ref, ":")
	if len(parts) > 2 || parts[0] == "" {
		return Range{}, fmt.Errorf("%q: %w", ref, ErrInvalidRange)
	}
	if len(parts) == 1 {
		parts = append(parts, parts[0])
	}

	startCol, startRow, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return Range{}, fmt.Errorf("%q: %w", ref, ErrInvalidRange)
	}
	endCol, endRow, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return Range{}, fmt.Errorf("%q: %w", ref, ErrInvalidRange)
	}

	return Range{
		R1: min(startRow, endRow),
		C1: min(startCol, endCol),
		R2: max(startRow, endRow),
		C2: max(startCol, endCol),
	}, nil
}

// Single reports whether the range covers exactly one cell.
func (r Range) Single() bool {
	return r.R1 == r.R2 && r.C1 == r.C2
}

// Overlaps reports whether r and o share at least one cell.
func (r Range) Overlaps(o Range) bool {
	return r.R1 <= o.R2 && o.R1 <= r.R2 && r.C1 <= o.C2 && o.C1 <= r.C2
}

// String renders the range as A1:D10, or A1 for a single cell.
func (r Range) String() string {
	start, _ := excelize.CoordinatesToCellName(r.C1, r.R1)
	if r.Single() {
		return start
	}
	end, _ := excelize.CoordinatesToCellName(r.C2, r.R2)
	return start + ":" + end
}

// bounds tracks the smallest range covering every cell it has seen.
type bounds struct {
	minRow, maxRow int
	minCol, maxCol int
}

func (b *bounds) add(row, col int) {
	if b.minRow == 0 || row < b.minRow {
		b.minRow = row
	}
	if row > b.maxRow {
		b.maxRow = row
	}
	if b.minCol == 0 || col < b.minCol {
		b.minCol = col
	}
	if col > b.maxCol {
		b.maxCol = col
	}
}

// dimension returns the covered range, or A1 when nothing was added.
func (b bounds) dimension() string {
	if b.maxRow == 0 {
		return "A1"
	}
	return Range{R1: b.minRow, C1: b.minCol, R2: b.maxRow, C2: b.maxCol}.String()
}
