package opc

import "encoding/xml"

// XML namespaces used by the generated parts
const (
	NSContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
	NSRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
	NSSpreadsheetML = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	NSOfficeRels    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSMarkupCompat  = "http://schemas.openxmlformats.org/markup-compatibility/2006"
	NSX14AC         = "http://schemas.microsoft.com/office/spreadsheetml/2009/9/ac"
	NSX15           = "http://schemas.microsoft.com/office/spreadsheetml/2010/11/main"
)

// Content types
const (
	ContentTypeXML           = "application/xml"
	ContentTypeRelationships = "application/vnd.openxmlformats-package.relationships+xml"
	ContentTypeWorkbook      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	ContentTypeWorksheet     = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
	ContentTypeStyles        = "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"
	ContentTypeSharedStrings = "application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"
)

// Relationship types
const (
	RelTypeOfficeDocument = NSOfficeRels + "/officeDocument"
	RelTypeWorksheet      = NSOfficeRels + "/worksheet"
	RelTypeSharedStrings  = NSOfficeRels + "/sharedStrings"
	RelTypeStyles         = NSOfficeRels + "/styles"
	RelTypeHyperlink      = NSOfficeRels + "/hyperlink"
)

// TargetModeExternal marks a relationship whose target lives outside the package.
const TargetModeExternal = "External"

// Header is the XML declaration written at the top of every generated part.
const Header = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// Relationships directly maps the root element of a relationships part.
type Relationships struct {
	XMLName       xml.Name       `xml:"Relationships"`
	Xmlns         string         `xml:"xmlns,attr"`
	Relationships []Relationship `xml:"Relationship"`
}

// Relationship directly maps one Relationship element.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// NewRelationships returns an empty relationship table with its namespace set.
func NewRelationships() *Relationships {
	return &Relationships{Xmlns: NSRelationships}
}

// Add appends a relationship.
func (r *Relationships) Add(id ID, relType, target string) {
	r.Relationships = append(r.Relationships, Relationship{
		ID:     id.String(),
		Type:   relType,
		Target: target,
	})
}

// AddExternal appends a relationship with TargetMode="External".
func (r *Relationships) AddExternal(id ID, relType, target string) {
	r.Relationships = append(r.Relationships, Relationship{
		ID:         id.String(),
		Type:       relType,
		Target:     target,
		TargetMode: TargetModeExternal,
	})
}

// Marshal renders a part document: declaration plus two-space indented XML.
func Marshal(v any) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(Header)+len(body))
	out = append(out, Header...)
	return append(out, body...), nil
}
