package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ukaji3/xlpack-go/pkg/xlpack/models"
	"github.com/xuri/excelize/v2"
)

// CellOptions selects what ReadCells returns besides values.
type CellOptions struct {
	// Links includes cell hyperlinks.
	Links bool
	// Styles includes non-default cell style indices, named by StyleName.
	Styles bool
}

// StyleName names the cellXfs entry at idx in read-back documents.
func StyleName(idx int) string {
	return "xf" + strconv.Itoa(idx)
}

// ReadCells extracts cell data from a sheet.
// It returns a slice of CellRow containing non-empty rows. Formula cells are
// returned as "=" followed by the formula.
func ReadCells(f *excelize.File, sheetName string, opts CellOptions) ([]models.CellRow, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	maxRow, maxCol := len(rows), 0
	for _, row := range rows {
		maxCol = max(maxCol, len(row))
	}
	// Formula cells without a cached value are absent from GetRows.
	if dim, err := f.GetSheetDimension(sheetName); err == nil && dim != "" {
		corners := strings.Split(dim, ":")
		if col, row, err := excelize.CellNameToCoordinates(corners[len(corners)-1]); err == nil {
			maxRow, maxCol = max(maxRow, row), max(maxCol, col)
		}
	}

	var result []models.CellRow
	for rowNum := 1; rowNum <= maxRow; rowNum++ {
		cellMap := make(map[string]interface{})
		linkMap := make(map[string]string)
		styleMap := make(map[string]string)

		for colNum := 1; colNum <= maxCol; colNum++ {
			colStr := strconv.Itoa(colNum) // 1-based column index as string
			cellName, _ := excelize.CoordinatesToCellName(colNum, rowNum)

			var cellValue string
			if rowNum <= len(rows) && colNum <= len(rows[rowNum-1]) {
				cellValue = rows[rowNum-1][colNum-1]
			}

			formula, err := f.GetCellFormula(sheetName, cellName)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", cellName, err)
			}
			switch {
			case formula != "":
				cellMap[colStr] = "=" + formula
			case cellValue != "":
				cellMap[colStr] = typedValue(f, sheetName, cellName, cellValue)
			}

			if opts.Styles {
				idx, err := f.GetCellStyle(sheetName, cellName)
				if err == nil && idx > 0 {
					styleMap[colStr] = StyleName(idx)
				}
			}

			// Extract hyperlink if requested
			if opts.Links {
				hasLink, target, err := f.GetCellHyperLink(sheetName, cellName)
				if err == nil && hasLink && target != "" {
					linkMap[colStr] = target
				}
			}
		}

		if len(cellMap) == 0 && len(styleMap) == 0 && len(linkMap) == 0 {
			continue
		}
		cellRow := models.CellRow{
			R: rowNum,
			C: cellMap,
		}
		if len(linkMap) > 0 {
			cellRow.Links = linkMap
		}
		if len(styleMap) > 0 {
			cellRow.Styles = styleMap
		}
		result = append(result, cellRow)
	}

	return result, nil
}

// typedValue returns a bool for boolean cells and otherwise defers to parseValue.
func typedValue(f *excelize.File, sheetName, cellName, s string) interface{} {
	if typ, err := f.GetCellType(sheetName, cellName); err == nil && typ == excelize.CellTypeBool {
		return s == "TRUE" || s == "1"
	}
	return parseValue(s)
}

// parseValue attempts to parse a string value as a number.
// Returns int64 for integers, float64 for decimals, or the original string.
func parseValue(s string) interface{} {
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	// Try float
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	// Return as string
	return s
}
