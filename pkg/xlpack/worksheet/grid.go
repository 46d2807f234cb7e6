// Package worksheet provides Grid, a sheet that renders its own worksheet
// markup from typed cells.
package worksheet

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"

	"github.com/xuri/efp"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrInvalidFormula indicates a formula the tokenizer rejects.
	ErrInvalidFormula = errors.New("invalid formula")
	// ErrMergeOverlap indicates a merge that overlaps an existing merge.
	ErrMergeOverlap = errors.New("merged range overlaps another merge")
	// ErrInvalidHyperlink indicates a link target that is not an absolute URL.
	ErrInvalidHyperlink = errors.New("invalid hyperlink target")
	// ErrNegativeIndex indicates a negative shared string or style index.
	ErrNegativeIndex = errors.New("negative index")
	// ErrNonFiniteNumber indicates a NaN or infinite numeric cell.
	ErrNonFiniteNumber = errors.New("number is not finite")
	// ErrDuplicateHyperlink indicates a second link on the same cell.
	ErrDuplicateHyperlink = errors.New("cell already has a hyperlink")
)

// Kind is the type of a cell value.
type Kind int

const (
	KindBlank Kind = iota
	KindSharedString
	KindNumber
	KindBool
	KindInlineString
	KindFormula
)

// Cell is one typed cell value plus its cellXfs style index.
type Cell struct {
	Kind   Kind
	Index  int // shared string index
	Number float64
	Bool   bool
	Text   string // inline string or formula without the leading "="
	Style  int
}

// SharedString returns a cell referencing shared string index i.
func SharedString(i int) Cell { return Cell{Kind: KindSharedString, Index: i} }

// Number returns a numeric cell.
func Number(v float64) Cell { return Cell{Kind: KindNumber, Number: v} }

// Bool returns a boolean cell.
func Bool(v bool) Cell { return Cell{Kind: KindBool, Bool: v} }

// InlineString returns a cell holding its text inline.
func InlineString(s string) Cell { return Cell{Kind: KindInlineString, Text: s} }

// Formula returns a formula cell. A leading "=" is dropped.
func Formula(f string) Cell {
	return Cell{Kind: KindFormula, Text: strings.TrimPrefix(f, "=")}
}

// WithStyle returns c with the given style index.
func (c Cell) WithStyle(style int) Cell {
	c.Style = style
	return c
}

// Hyperlink is an external link anchored at a cell.
type Hyperlink struct {
	Ref    string
	Target string
}

type coord struct {
	row, col int
}

// Grid is a sheet built cell by cell. Once built it is only read, so Markup
// and RelsMarkup may be called from concurrent assemblies.
type Grid struct {
	name   string
	cells  map[coord]Cell
	merges []Range
	links  []Hyperlink
}

// New returns an empty grid named name.
func New(name string) *Grid {
	return &Grid{name: name, cells: make(map[coord]Cell)}
}

// Name returns the sheet name.
func (g *Grid) Name() string {
	return g.name
}

// Set stores c at the cell reference ref (e.g. "B3").
func (g *Grid) Set(ref string, c Cell) error {
	col, row, err := excelize.CellNameToCoordinates(strings.ReplaceAll(ref, "$", ""))
	if err != nil {
		return err
	}
	return g.SetAt(row, col, c)
}

// SetAt stores c at 1-based row and column.
func (g *Grid) SetAt(row, col int, c Cell) error {
	if _, err := excelize.CoordinatesToCellName(col, row); err != nil {
		return err
	}
	if c.Style < 0 || (c.Kind == KindSharedString && c.Index < 0) {
		return ErrNegativeIndex
	}
	if c.Kind == KindNumber && (math.IsNaN(c.Number) || math.IsInf(c.Number, 0)) {
		return fmt.Errorf("%v: %w", c.Number, ErrNonFiniteNumber)
	}
	if c.Kind == KindFormula {
		if err := checkFormula(c.Text); err != nil {
			return err
		}
	}
	g.cells[coord{row: row, col: col}] = c
	return nil
}

// Get returns the cell at ref.
func (g *Grid) Get(ref string) (Cell, bool) {
	col, row, err := excelize.CellNameToCoordinates(strings.ReplaceAll(ref, "$", ""))
	if err != nil {
		return Cell{}, false
	}
	c, ok := g.cells[coord{row: row, col: col}]
	return c, ok
}

// Merge records a merged range. Single cells and overlapping ranges are
// rejected.
func (g *Grid) Merge(ref string) error {
	r, err := ParseRange(ref)
	if err != nil {
		return err
	}
	if r.Single() {
		return fmt.Errorf("merge %q: %w", ref, ErrInvalidRange)
	}
	for _, m := range g.merges {
		if m.Overlaps(r) {
			return fmt.Errorf("merge %s with %s: %w", r, m, ErrMergeOverlap)
		}
	}
	g.merges = append(g.merges, r)
	return nil
}

// Merges returns the merged ranges in insertion order.
func (g *Grid) Merges() []Range {
	return g.merges
}

// AddHyperlink anchors an external link at ref. Each link becomes one
// sheet-local relationship; a cell holds at most one link.
func (g *Grid) AddHyperlink(ref, target string) error {
	col, row, err := excelize.CellNameToCoordinates(strings.ReplaceAll(ref, "$", ""))
	if err != nil {
		return err
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" {
		return fmt.Errorf("%q: %w", target, ErrInvalidHyperlink)
	}
	cell, _ := excelize.CoordinatesToCellName(col, row)
	for _, l := range g.links {
		if l.Ref == cell {
			return fmt.Errorf("%s: %w", cell, ErrDuplicateHyperlink)
		}
	}
	g.links = append(g.links, Hyperlink{Ref: cell, Target: target})
	return nil
}

// Hyperlinks returns the links in insertion order.
func (g *Grid) Hyperlinks() []Hyperlink {
	return g.links
}

// Dimension returns the range covering every cell and merge, or A1 for an
// empty grid.
func (g *Grid) Dimension() string {
	var b bounds
	for c := range g.cells {
		b.add(c.row, c.col)
	}
	for _, m := range g.merges {
		b.add(m.R1, m.C1)
		b.add(m.R2, m.C2)
	}
	return b.dimension()
}

// rows returns the populated row numbers in ascending order, each with its
// column numbers in ascending order.
func (g *Grid) rows() ([]int, map[int][]int) {
	cols := make(map[int][]int)
	for c := range g.cells {
		cols[c.row] = append(cols[c.row], c.col)
	}
	rows := make([]int, 0, len(cols))
	for r, cs := range cols {
		sort.Ints(cs)
		rows = append(rows, r)
	}
	sort.Ints(rows)
	return rows, cols
}

// checkFormula tokenizes f and rejects unknown tokens and unbalanced
// parentheses.
func checkFormula(f string) error {
	if strings.TrimSpace(f) == "" {
		return fmt.Errorf("empty: %w", ErrInvalidFormula)
	}
	ps := efp.ExcelParser()
	depth := 0
	for _, tok := range ps.Parse(f) {
		if tok.TType == efp.TokenTypeUnknown {
			return fmt.Errorf("%q: unexpected %q: %w", f, tok.TValue, ErrInvalidFormula)
		}
		if tok.TType != efp.TokenTypeFunction && tok.TType != efp.TokenTypeSubexpression {
			continue
		}
		switch tok.TSubType {
		case efp.TokenSubTypeStart:
			depth++
		case efp.TokenSubTypeStop:
			depth--
		}
		if depth < 0 {
			return fmt.Errorf("%q: unbalanced parentheses: %w", f, ErrInvalidFormula)
		}
	}
	if depth != 0 {
		return fmt.Errorf("%q: unbalanced parentheses: %w", f, ErrInvalidFormula)
	}
	return nil
}
