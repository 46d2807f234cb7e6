package document

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ukaji3/xlpack-go/pkg/xlpack/models"
	"github.com/xuri/nfp"
)

var (
	// ErrInvalidColor indicates a color that is not RGB or ARGB hex.
	ErrInvalidColor = errors.New("invalid color")
	// ErrInvalidNumFmt indicates a number format code that cannot be used.
	ErrInvalidNumFmt = errors.New("invalid number format")
	// ErrInvalidBorder indicates an unknown border style.
	ErrInvalidBorder = errors.New("invalid border style")
	// ErrInvalidAlignment indicates an unknown alignment value.
	ErrInvalidAlignment = errors.New("invalid alignment")
)

// FirstCustomNumFmtID is the first id available to custom number formats.
const FirstCustomNumFmtID = 164

const maxNumFmtLength = 255

// builtinNumFmts maps format codes to the ids the application predefines.
var builtinNumFmts = map[string]int{
	"General":       0,
	"0":             1,
	"0.00":          2,
	"#,##0":         3,
	"#,##0.00":      4,
	"0%":            9,
	"0.00%":         10,
	"0.00E+00":      11,
	"# ?/?":         12,
	"# ??/??":       13,
	"mm-dd-yy":      14,
	"d-mmm-yy":      15,
	"d-mmm":         16,
	"mmm-yy":        17,
	"h:mm AM/PM":    18,
	"h:mm:ss AM/PM": 19,
	"h:mm":          20,
	"h:mm:ss":       21,
	"m/d/yy h:mm":   22,
	"mm:ss":         45,
	"[h]:mm:ss":     46,
	"mmss.0":        47,
	"##0.0E+0":      48,
	"@":             49,
}

// BuiltinNumFmtCode returns the format code of a predefined number format id.
func BuiltinNumFmtCode(id int) (string, bool) {
	for code, i := range builtinNumFmts {
		if i == id {
			return code, true
		}
	}
	return "", false
}

var borderStyles = map[string]bool{
	"thin": true, "medium": true, "thick": true, "dashed": true, "dotted": true,
	"double": true, "hair": true, "mediumDashed": true, "dashDot": true,
	"mediumDashDot": true, "dashDotDot": true, "mediumDashDotDot": true, "slantDashDot": true,
}

var horizontalAlignments = map[string]bool{
	"general": true, "left": true, "center": true, "right": true, "fill": true,
	"justify": true, "centerContinuous": true, "distributed": true,
}

var verticalAlignments = map[string]bool{
	"top": true, "center": true, "bottom": true, "justify": true, "distributed": true,
}

// table deduplicates records by their JSON encoding and hands out positional
// indices in first-use order.
type table[T any] struct {
	items []T
	index map[string]int
}

func newTable[T any](defaults ...T) *table[T] {
	t := &table[T]{index: make(map[string]int)}
	for _, d := range defaults {
		t.add(d)
	}
	return t
}

func (t *table[T]) add(v T) int {
	key, _ := json.Marshal(v)
	if i, ok := t.index[string(key)]; ok {
		return i
	}
	i := len(t.items)
	t.index[string(key)] = i
	t.items = append(t.items, v)
	return i
}

// styleBuilder resolves flat style documents into indexed style tables.
type styleBuilder struct {
	fonts   *table[models.Font]
	fills   *table[models.Fill]
	borders *table[models.Border]
	xfs     *table[models.CellFormat]
	numFmts []models.NumFmt
	custom  map[string]int
}

func defaultFont() models.Font {
	return models.Font{
		Sz:     &models.FloatVal{Val: 11},
		Name:   &models.StringVal{Val: "Calibri"},
		Family: &models.IntVal{Val: 2},
		Scheme: &models.StringVal{Val: "minor"},
	}
}

func newStyleBuilder() *styleBuilder {
	return &styleBuilder{
		fonts: newTable(defaultFont()),
		fills: newTable(
			models.Fill{PatternFill: &models.PatternFill{PatternType: "none"}},
			models.Fill{PatternFill: &models.PatternFill{PatternType: "gray125"}},
		),
		borders: newTable(models.Border{}),
		xfs:     newTable(models.CellFormat{}),
		custom:  make(map[string]int),
	}
}

// numFmtID returns the id of code, minting a custom id for codes that are
// not built in.
func (b *styleBuilder) numFmtID(code string) (int, error) {
	if id, ok := builtinNumFmts[code]; ok {
		return id, nil
	}
	if id, ok := b.custom[code]; ok {
		return id, nil
	}
	if err := checkNumFmt(code); err != nil {
		return 0, err
	}
	id := FirstCustomNumFmtID + len(b.numFmts)
	b.custom[code] = id
	b.numFmts = append(b.numFmts, models.NumFmt{NumFmtID: id, FormatCode: code})
	return id, nil
}

// checkNumFmt rejects format codes that are too long, have more than four
// sections or contain tokens the parser cannot classify.
func checkNumFmt(code string) error {
	if len(code) > maxNumFmtLength {
		return fmt.Errorf("%q exceeds %d characters: %w", code, maxNumFmtLength, ErrInvalidNumFmt)
	}
	ps := nfp.NumberFormatParser()
	sections := ps.Parse(code)
	if len(sections) == 0 || len(sections) > 4 {
		return fmt.Errorf("%q has %d sections: %w", code, len(sections), ErrInvalidNumFmt)
	}
	for _, s := range sections {
		for _, tok := range s.Items {
			if tok.TType == nfp.TokenTypeUnknown {
				return fmt.Errorf("%q: unexpected %q: %w", code, tok.TValue, ErrInvalidNumFmt)
			}
		}
	}
	return nil
}

// parseColor normalizes RGB or ARGB hex, with or without '#', to ARGB.
func parseColor(s string) (*models.Color, error) {
	c := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if len(c) == 6 {
		c = "FF" + c
	}
	if len(c) != 8 {
		return nil, fmt.Errorf("%q: %w", s, ErrInvalidColor)
	}
	if _, err := hex.DecodeString(c); err != nil {
		return nil, fmt.Errorf("%q: %w", s, ErrInvalidColor)
	}
	return &models.Color{RGB: c}, nil
}

func font(sd models.StyleDocument) (models.Font, bool, error) {
	f := defaultFont()
	changed := false
	if sd.Bold {
		f.B = &models.Flag{}
		changed = true
	}
	if sd.Italic {
		f.I = &models.Flag{}
		changed = true
	}
	if sd.Underline {
		f.U = &models.StringVal{Val: "single"}
		changed = true
	}
	if sd.FontSize > 0 {
		f.Sz = &models.FloatVal{Val: sd.FontSize}
		changed = true
	}
	if sd.FontName != "" && sd.FontName != f.Name.Val {
		f.Name = &models.StringVal{Val: sd.FontName}
		f.Scheme = nil
		changed = true
	}
	if sd.FontColor != "" {
		c, err := parseColor(sd.FontColor)
		if err != nil {
			return models.Font{}, false, err
		}
		f.Color = c
		changed = true
	}
	return f, changed, nil
}

func border(style string) (models.Border, error) {
	if !borderStyles[style] {
		return models.Border{}, fmt.Errorf("%q: %w", style, ErrInvalidBorder)
	}
	edge := models.BorderEdge{Style: style, Color: &models.Color{Auto: true}}
	return models.Border{Left: edge, Right: edge, Top: edge, Bottom: edge}, nil
}

func alignment(sd models.StyleDocument) (*models.Alignment, error) {
	if sd.Horizontal == "" && sd.Vertical == "" && !sd.WrapText {
		return nil, nil
	}
	if sd.Horizontal != "" && !horizontalAlignments[sd.Horizontal] {
		return nil, fmt.Errorf("horizontal %q: %w", sd.Horizontal, ErrInvalidAlignment)
	}
	if sd.Vertical != "" && !verticalAlignments[sd.Vertical] {
		return nil, fmt.Errorf("vertical %q: %w", sd.Vertical, ErrInvalidAlignment)
	}
	return &models.Alignment{Horizontal: sd.Horizontal, Vertical: sd.Vertical, WrapText: sd.WrapText}, nil
}

// cellFormat resolves sd into a cellXfs entry and returns its index.
func (b *styleBuilder) cellFormat(sd models.StyleDocument) (int, error) {
	var xf models.CellFormat

	if sd.NumFmt != "" {
		id, err := b.numFmtID(sd.NumFmt)
		if err != nil {
			return 0, err
		}
		xf.NumFmtID = id
		xf.ApplyNumberFormat = id != 0
	}

	f, changed, err := font(sd)
	if err != nil {
		return 0, err
	}
	if changed {
		xf.FontID = b.fonts.add(f)
		xf.ApplyFont = true
	}

	if sd.Fill != "" {
		c, err := parseColor(sd.Fill)
		if err != nil {
			return 0, err
		}
		indexed := 64
		xf.FillID = b.fills.add(models.Fill{PatternFill: &models.PatternFill{
			PatternType: "solid",
			FgColor:     c,
			BgColor:     &models.Color{Indexed: &indexed},
		}})
		xf.ApplyFill = true
	}

	if sd.Border != "" {
		bd, err := border(sd.Border)
		if err != nil {
			return 0, err
		}
		xf.BorderID = b.borders.add(bd)
		xf.ApplyBorder = true
	}

	al, err := alignment(sd)
	if err != nil {
		return 0, err
	}
	if al != nil {
		xf.Alignment = al
		xf.ApplyAlignment = true
	}

	return b.xfs.add(xf), nil
}

// dxf resolves sd into a differential format. Solid dxf fills carry their
// color in bgColor.
func (b *styleBuilder) dxf(sd models.StyleDocument) (models.Dxf, error) {
	var d models.Dxf

	if sd.NumFmt != "" {
		id, err := b.numFmtID(sd.NumFmt)
		if err != nil {
			return d, err
		}
		d.NumFmt = &models.NumFmt{NumFmtID: id, FormatCode: sd.NumFmt}
	}

	if sd.Bold || sd.Italic || sd.Underline || sd.FontColor != "" {
		f := models.Font{}
		if sd.Bold {
			f.B = &models.Flag{}
		}
		if sd.Italic {
			f.I = &models.Flag{}
		}
		if sd.Underline {
			f.U = &models.StringVal{Val: "single"}
		}
		if sd.FontColor != "" {
			c, err := parseColor(sd.FontColor)
			if err != nil {
				return d, err
			}
			f.Color = c
		}
		d.Font = &f
	}

	if sd.Fill != "" {
		c, err := parseColor(sd.Fill)
		if err != nil {
			return d, err
		}
		d.Fill = &models.Fill{PatternFill: &models.PatternFill{PatternType: "solid", BgColor: c}}
	}

	if sd.Border != "" {
		bd, err := border(sd.Border)
		if err != nil {
			return d, err
		}
		d.Border = &bd
	}
	return d, nil
}

func (b *styleBuilder) styleData(dxfs models.DxfCollection) models.StyleData {
	return models.StyleData{
		NumFmts: b.numFmts,
		Fonts:   b.fonts.items,
		Fills:   b.fills.items,
		Borders: b.borders.items,
		Dxfs:    dxfs,
	}
}
