package models

// StyleData is the set of positional style tables. Every CellFormat refers
// into these lists by zero-based index, except NumFmtID which is a number
// format id.
type StyleData struct {
	// NumFmts holds custom number formats (ids 164 and up).
	NumFmts []NumFmt
	// Fonts, Fills and Borders are addressed by position.
	Fonts   []Font
	Fills   []Fill
	Borders []Border
	// Dxfs holds differential formats for conditional formatting.
	Dxfs DxfCollection
}

// NumFmt maps a numFmt element.
type NumFmt struct {
	NumFmtID   int    `xml:"numFmtId,attr"`
	FormatCode string `xml:"formatCode,attr"`
}

// Flag maps an element whose presence alone switches a property on, such as <b/>.
type Flag struct{}

// StringVal maps an element carrying a val string attribute.
type StringVal struct {
	Val string `xml:"val,attr"`
}

// FloatVal maps an element carrying a val number attribute.
type FloatVal struct {
	Val float64 `xml:"val,attr"`
}

// IntVal maps an element carrying a val integer attribute.
type IntVal struct {
	Val int `xml:"val,attr"`
}

// Color maps color, fgColor and bgColor elements.
type Color struct {
	Auto    bool   `xml:"auto,attr,omitempty"`
	RGB     string `xml:"rgb,attr,omitempty"`
	Indexed *int   `xml:"indexed,attr"`
	Theme   *int   `xml:"theme,attr"`
}

// Font maps a font element.
type Font struct {
	B      *Flag      `xml:"b"`
	I      *Flag      `xml:"i"`
	Strike *Flag      `xml:"strike"`
	U      *StringVal `xml:"u"`
	Sz     *FloatVal  `xml:"sz"`
	Color  *Color     `xml:"color"`
	Name   *StringVal `xml:"name"`
	Family *IntVal    `xml:"family"`
	Scheme *StringVal `xml:"scheme"`
}

// Fill is the content of a fill element. The styles part wraps each record
// in its own <fill>.
type Fill struct {
	PatternFill *PatternFill `xml:"patternFill"`
}

// PatternFill maps a patternFill element.
type PatternFill struct {
	PatternType string `xml:"patternType,attr,omitempty"`
	FgColor     *Color `xml:"fgColor"`
	BgColor     *Color `xml:"bgColor"`
}

// Border maps a border element. All edges are always written.
type Border struct {
	Left     BorderEdge `xml:"left"`
	Right    BorderEdge `xml:"right"`
	Top      BorderEdge `xml:"top"`
	Bottom   BorderEdge `xml:"bottom"`
	Diagonal BorderEdge `xml:"diagonal"`
}

// BorderEdge maps one edge of a border.
type BorderEdge struct {
	Style string `xml:"style,attr,omitempty"`
	Color *Color `xml:"color"`
}

// Alignment maps an alignment element.
type Alignment struct {
	Horizontal string `xml:"horizontal,attr,omitempty"`
	Vertical   string `xml:"vertical,attr,omitempty"`
	WrapText   bool   `xml:"wrapText,attr,omitempty"`
	Indent     int    `xml:"indent,attr,omitempty"`
}

// CellFormat maps an xf element of cellXfs.
type CellFormat struct {
	NumFmtID          int        `xml:"numFmtId,attr"`
	FontID            int        `xml:"fontId,attr"`
	FillID            int        `xml:"fillId,attr"`
	BorderID          int        `xml:"borderId,attr"`
	ApplyNumberFormat bool       `xml:"applyNumberFormat,attr,omitempty"`
	ApplyFont         bool       `xml:"applyFont,attr,omitempty"`
	ApplyFill         bool       `xml:"applyFill,attr,omitempty"`
	ApplyBorder       bool       `xml:"applyBorder,attr,omitempty"`
	ApplyAlignment    bool       `xml:"applyAlignment,attr,omitempty"`
	Alignment         *Alignment `xml:"alignment"`
}

// Dxf maps a differential format.
type Dxf struct {
	Font   *Font   `xml:"font"`
	NumFmt *NumFmt `xml:"numFmt"`
	Fill   *Fill   `xml:"fill"`
	Border *Border `xml:"border"`
}

// DxfCollection is the optional differential format table.
type DxfCollection []Dxf

// Len returns the number of differential formats.
func (c DxfCollection) Len() int {
	return len(c)
}
