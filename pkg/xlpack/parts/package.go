// Package parts builds the package-level and workbook-level XML parts of a
// spreadsheet package.
package parts

import (
	"encoding/xml"
	"fmt"
	"path"

	"github.com/ukaji3/xlpack-go/pkg/xlpack/opc"
)

// xlsxTypes directly maps the Types element of [Content_Types].xml.
type xlsxTypes struct {
	XMLName   xml.Name       `xml:"Types"`
	Xmlns     string         `xml:"xmlns,attr"`
	Defaults  []xlsxDefault  `xml:"Default"`
	Overrides []xlsxOverride `xml:"Override"`
}

// xlsxDefault maps an extension to a content type.
type xlsxDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// xlsxOverride maps one part name to a content type.
type xlsxOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// ContentTypes builds [Content_Types].xml from the plan: defaults for xml and
// rels, and one override per planned part.
func ContentTypes(plan opc.Plan) ([]byte, error) {
	types := xlsxTypes{
		Xmlns: opc.NSContentTypes,
		Defaults: []xlsxDefault{
			{Extension: "xml", ContentType: opc.ContentTypeXML},
			{Extension: "rels", ContentType: opc.ContentTypeRelationships},
		},
	}
	for _, part := range plan.Parts() {
		types.Overrides = append(types.Overrides, xlsxOverride{
			PartName:    part.PartName(),
			ContentType: part.ContentType,
		})
	}
	return opc.Marshal(&types)
}

// PackageRels builds _rels/.rels with the single relationship to the workbook.
func PackageRels() ([]byte, error) {
	rels := opc.NewRelationships()
	rels.Add(opc.RootRelationship, opc.RelTypeOfficeDocument, opc.WorkbookPath)
	return opc.Marshal(rels)
}

// xlsxWorkbook directly maps the workbook element of xl/workbook.xml.
type xlsxWorkbook struct {
	XMLName   xml.Name   `xml:"workbook"`
	Xmlns     string     `xml:"xmlns,attr"`
	XmlnsMC   string     `xml:"xmlns:mc,attr"`
	XmlnsR    string     `xml:"xmlns:r,attr"`
	XmlnsX15  string     `xml:"xmlns:x15,attr"`
	Ignorable string     `xml:"mc:Ignorable,attr"`
	Sheets    xlsxSheets `xml:"sheets"`
}

type xlsxSheets struct {
	Sheet []xlsxSheet `xml:"sheet"`
}

// xlsxSheet is one entry of the sheet catalog.
type xlsxSheet struct {
	Name    string `xml:"name,attr"`
	SheetID int    `xml:"sheetId,attr"`
	RID     string `xml:"r:id,attr"`
}

// Workbook builds xl/workbook.xml. sheetId and r:id of each entry both come
// from the plan's id scheme.
func Workbook(plan opc.Plan, names []string) ([]byte, error) {
	if len(names) != plan.SheetCount() {
		return nil, fmt.Errorf("workbook catalog: %d names for %d planned sheets", len(names), plan.SheetCount())
	}
	wb := xlsxWorkbook{
		Xmlns:     opc.NSSpreadsheetML,
		XmlnsMC:   opc.NSMarkupCompat,
		XmlnsR:    opc.NSOfficeRels,
		XmlnsX15:  opc.NSX15,
		Ignorable: "x15",
	}
	for i, name := range names {
		wb.Sheets.Sheet = append(wb.Sheets.Sheet, xlsxSheet{
			Name:    name,
			SheetID: plan.SheetID(i),
			RID:     plan.Worksheet(i).String(),
		})
	}
	return opc.Marshal(&wb)
}

// WorkbookRels builds xl/_rels/workbook.xml.rels: shared strings (N+1),
// styles (N+2) and one worksheet relationship per sheet (i+1).
func WorkbookRels(plan opc.Plan) ([]byte, error) {
	rels := opc.NewRelationships()
	rels.Add(plan.SharedStrings(), opc.RelTypeSharedStrings, path.Base(opc.SharedStringsPath))
	rels.Add(plan.Styles(), opc.RelTypeStyles, path.Base(opc.StylesPath))
	for i := 0; i < plan.SheetCount(); i++ {
		rels.Add(plan.Worksheet(i), opc.RelTypeWorksheet, plan.WorksheetTarget(i))
	}
	return opc.Marshal(rels)
}
