package models

// Document is the serializable description of a workbook accepted by the
// command line and the HTTP server.
type Document struct {
	// Sheets lists sheets in workbook order.
	Sheets []SheetDocument `json:"sheets" yaml:"sheets"`
	// Styles maps style names, as referenced from CellRow.Styles, to styles.
	Styles map[string]StyleDocument `json:"styles,omitempty" yaml:"styles,omitempty"`
	// Dxfs lists differential formats for conditional formatting.
	Dxfs []StyleDocument `json:"dxfs,omitempty" yaml:"dxfs,omitempty"`
}

// SheetDocument describes one sheet.
type SheetDocument struct {
	// Name is the sheet name.
	Name string `json:"name" yaml:"name"`
	// Rows contains rows with cell values, links and styles.
	Rows []CellRow `json:"rows,omitempty" yaml:"rows,omitempty"`
	// Merges lists merged ranges such as "A1:C1".
	Merges []string `json:"merges,omitempty" yaml:"merges,omitempty"`
}

// StyleDocument describes a cell style in flat form.
type StyleDocument struct {
	// NumFmt is a number format code, e.g. "0.00%" (optional).
	NumFmt string `json:"num_fmt,omitempty" yaml:"num_fmt,omitempty"`
	// Bold, Italic and Underline toggle font decorations.
	Bold      bool `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic    bool `json:"italic,omitempty" yaml:"italic,omitempty"`
	Underline bool `json:"underline,omitempty" yaml:"underline,omitempty"`
	// FontName and FontSize override the default Calibri 11.
	FontName string  `json:"font_name,omitempty" yaml:"font_name,omitempty"`
	FontSize float64 `json:"font_size,omitempty" yaml:"font_size,omitempty"`
	// FontColor is an ARGB or RGB hex color.
	FontColor string `json:"font_color,omitempty" yaml:"font_color,omitempty"`
	// Fill is the solid background color as ARGB or RGB hex.
	Fill string `json:"fill,omitempty" yaml:"fill,omitempty"`
	// Border is a border style applied to all four edges (e.g. "thin").
	Border string `json:"border,omitempty" yaml:"border,omitempty"`
	// Horizontal and Vertical set alignment.
	Horizontal string `json:"horizontal,omitempty" yaml:"horizontal,omitempty"`
	Vertical   string `json:"vertical,omitempty" yaml:"vertical,omitempty"`
	// WrapText enables text wrapping.
	WrapText bool `json:"wrap_text,omitempty" yaml:"wrap_text,omitempty"`
}
