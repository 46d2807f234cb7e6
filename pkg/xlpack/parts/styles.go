package parts

import (
	"encoding/xml"

	"github.com/ukaji3/xlpack-go/pkg/xlpack/models"
	"github.com/ukaji3/xlpack-go/pkg/xlpack/opc"
)

// xlsxStyleSheet directly maps the styleSheet element of xl/styles.xml. Field
// order is the order the schema requires.
type xlsxStyleSheet struct {
	XMLName    xml.Name     `xml:"styleSheet"`
	Xmlns      string       `xml:"xmlns,attr"`
	XmlnsMC    string       `xml:"xmlns:mc,attr"`
	XmlnsX14ac string       `xml:"xmlns:x14ac,attr"`
	Ignorable  string       `xml:"mc:Ignorable,attr"`
	NumFmts    *xlsxNumFmts `xml:"numFmts"`
	Fonts      xlsxFonts    `xml:"fonts"`
	Fills      xlsxFills    `xml:"fills"`
	Borders    xlsxBorders  `xml:"borders"`
	CellXfs    xlsxCellXfs  `xml:"cellXfs"`
	Dxfs       *xlsxDxfs    `xml:"dxfs"`
}

type xlsxNumFmts struct {
	Count  int             `xml:"count,attr"`
	NumFmt []models.NumFmt `xml:"numFmt"`
}

type xlsxFonts struct {
	Count int           `xml:"count,attr"`
	Font  []models.Font `xml:"font"`
}

type xlsxFills struct {
	Count int           `xml:"count,attr"`
	Fill  []models.Fill `xml:"fill"`
}

type xlsxBorders struct {
	Count  int             `xml:"count,attr"`
	Border []models.Border `xml:"border"`
}

type xlsxCellXfs struct {
	Count int                 `xml:"count,attr"`
	Xf    []models.CellFormat `xml:"xf"`
}

type xlsxDxfs struct {
	Count int          `xml:"count,attr"`
	Dxf   []models.Dxf `xml:"dxf"`
}

// Styles builds xl/styles.xml. Each table's count attribute equals its
// element count; numFmts is omitted when empty and dxfs when the collection
// is empty.
func Styles(data models.StyleData, styles []models.CellFormat) ([]byte, error) {
	sheet := xlsxStyleSheet{
		Xmlns:      opc.NSSpreadsheetML,
		XmlnsMC:    opc.NSMarkupCompat,
		XmlnsX14ac: opc.NSX14AC,
		Ignorable:  "x14ac",
		Fonts:      xlsxFonts{Count: len(data.Fonts), Font: data.Fonts},
		Fills:      xlsxFills{Count: len(data.Fills), Fill: data.Fills},
		Borders:    xlsxBorders{Count: len(data.Borders), Border: data.Borders},
		CellXfs:    xlsxCellXfs{Count: len(styles), Xf: styles},
	}
	if len(data.NumFmts) > 0 {
		sheet.NumFmts = &xlsxNumFmts{Count: len(data.NumFmts), NumFmt: data.NumFmts}
	}
	if data.Dxfs.Len() > 0 {
		sheet.Dxfs = &xlsxDxfs{Count: data.Dxfs.Len(), Dxf: data.Dxfs}
	}
	return opc.Marshal(&sheet)
}
