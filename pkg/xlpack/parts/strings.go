package parts

import (
	"encoding/xml"
	"strings"

	"github.com/ukaji3/xlpack-go/pkg/xlpack/opc"
)

// xlsxSST directly maps the sst element of xl/sharedStrings.xml.
type xlsxSST struct {
	XMLName     xml.Name `xml:"sst"`
	Xmlns       string   `xml:"xmlns,attr"`
	Count       int      `xml:"count,attr"`
	UniqueCount int      `xml:"uniqueCount,attr"`
	SI          []xlsxSI `xml:"si"`
}

// xlsxSI is one string item.
type xlsxSI struct {
	T xlsxT `xml:"t"`
}

// xlsxT is a text element; whitespace at either end needs xml:space.
type xlsxT struct {
	Space string `xml:"xml:space,attr,omitempty"`
	Val   string `xml:",chardata"`
}

// SharedStrings builds xl/sharedStrings.xml. count and uniqueCount both equal
// the pool length, since the pool is already unique.
func SharedStrings(pool []string) ([]byte, error) {
	sst := xlsxSST{
		Xmlns:       opc.NSSpreadsheetML,
		Count:       len(pool),
		UniqueCount: len(pool),
		SI:          make([]xlsxSI, 0, len(pool)),
	}
	for _, s := range pool {
		t := xlsxT{Val: s}
		if s != strings.TrimSpace(s) {
			t.Space = "preserve"
		}
		sst.SI = append(sst.SI, xlsxSI{T: t})
	}
	return opc.Marshal(&sst)
}
