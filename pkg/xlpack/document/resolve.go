// Package document resolves the serializable workbook description into the
// indexed in-memory workbook the assembler consumes.
package document

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ukaji3/xlpack-go/pkg/xlpack/models"
	"github.com/ukaji3/xlpack-go/pkg/xlpack/worksheet"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnknownStyle indicates a cell referencing a style the document does
	// not define.
	ErrUnknownStyle = errors.New("unknown style")
	// ErrInvalidColumn indicates a column key that is not a positive integer.
	ErrInvalidColumn = errors.New("invalid column index")
	// ErrUnsupportedValue indicates a cell value of an unsupported type.
	ErrUnsupportedValue = errors.New("unsupported cell value")
)

// Resolve turns doc into a workbook. Strings are interned into the shared
// string pool in sheet, row and column order; named styles are indexed in
// name order after the default format at index 0.
func Resolve(doc *models.Document) (*models.Workbook, error) {
	if doc == nil {
		return nil, errors.New("document is nil")
	}

	sb := newStyleBuilder()
	styleIndex := make(map[string]int, len(doc.Styles))
	names := make([]string, 0, len(doc.Styles))
	for name := range doc.Styles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		idx, err := sb.cellFormat(doc.Styles[name])
		if err != nil {
			return nil, fmt.Errorf("style %q: %w", name, err)
		}
		styleIndex[name] = idx
	}

	var dxfs models.DxfCollection
	for i, sd := range doc.Dxfs {
		d, err := sb.dxf(sd)
		if err != nil {
			return nil, fmt.Errorf("dxf %d: %w", i, err)
		}
		dxfs = append(dxfs, d)
	}

	pool := models.NewStringPool()
	wb := &models.Workbook{}
	for _, sheetDoc := range doc.Sheets {
		g, err := resolveSheet(sheetDoc, pool, styleIndex)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheetDoc.Name, err)
		}
		wb.Sheets = append(wb.Sheets, g)
	}

	wb.SharedStrings = pool.Strings()
	wb.StyleData = sb.styleData(dxfs)
	wb.Styles = sb.xfs.items
	return wb, nil
}

func resolveSheet(sd models.SheetDocument, pool *models.StringPool, styles map[string]int) (*worksheet.Grid, error) {
	g := worksheet.New(sd.Name)

	for _, row := range sd.Rows {
		cols, err := rowColumns(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row.R, err)
		}
		for _, col := range cols {
			key := strconv.Itoa(col)
			cell, err := resolveValue(row.C[key], pool)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", row.R, col, err)
			}
			if name, ok := row.Styles[key]; ok {
				idx, ok := styles[name]
				if !ok {
					return nil, fmt.Errorf("row %d column %d: %q: %w", row.R, col, name, ErrUnknownStyle)
				}
				cell = cell.WithStyle(idx)
			}
			if err := g.SetAt(row.R, col, cell); err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", row.R, col, err)
			}
		}

		linkCols, err := sortedColumns(row.Links)
		if err != nil {
			return nil, fmt.Errorf("row %d links: %w", row.R, err)
		}
		for _, col := range linkCols {
			ref, err := excelize.CoordinatesToCellName(col, row.R)
			if err != nil {
				return nil, err
			}
			if err := g.AddHyperlink(ref, row.Links[strconv.Itoa(col)]); err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", row.R, col, err)
			}
		}
	}

	for _, m := range sd.Merges {
		if err := g.Merge(m); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// rowColumns returns every column that has a value or a style, ascending.
func rowColumns(row models.CellRow) ([]int, error) {
	set := make(map[string]string, len(row.C)+len(row.Styles))
	for k := range row.C {
		set[k] = ""
	}
	for k := range row.Styles {
		set[k] = ""
	}
	return sortedColumns(set)
}

func sortedColumns[V any](m map[string]V) ([]int, error) {
	cols := make([]int, 0, len(m))
	for k := range m {
		n, err := strconv.Atoi(k)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%q: %w", k, ErrInvalidColumn)
		}
		cols = append(cols, n)
	}
	sort.Ints(cols)
	return cols, nil
}

// resolveValue maps a decoded JSON or YAML scalar to a typed cell. Strings
// beginning with "=" are formulas; other strings go to the shared pool.
func resolveValue(v interface{}, pool *models.StringPool) (worksheet.Cell, error) {
	switch x := v.(type) {
	case nil:
		return worksheet.Cell{}, nil
	case string:
		if strings.HasPrefix(x, "=") && len(x) > 1 {
			return worksheet.Formula(x), nil
		}
		return worksheet.SharedString(pool.Intern(x)), nil
	case bool:
		return worksheet.Bool(x), nil
	case float64:
		return worksheet.Number(x), nil
	case float32:
		return worksheet.Number(float64(x)), nil
	case int:
		return worksheet.Number(float64(x)), nil
	case int64:
		return worksheet.Number(float64(x)), nil
	case uint64:
		return worksheet.Number(float64(x)), nil
	default:
		return worksheet.Cell{}, fmt.Errorf("%T: %w", v, ErrUnsupportedValue)
	}
}
