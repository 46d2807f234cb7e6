package models

// CellRow represents a single row of cells with optional hyperlinks and styles.
type CellRow struct {
	// R is the row index (1-based).
	R int `json:"r" yaml:"r"`
	// C maps column index (string) to cell value. Strings starting with "="
	// are formulas.
	C map[string]interface{} `json:"c" yaml:"c"`
	// Links maps column index to hyperlink URL (optional).
	Links map[string]string `json:"links,omitempty" yaml:"links,omitempty"`
	// Styles maps column index to a named style of the document (optional).
	Styles map[string]string `json:"styles,omitempty" yaml:"styles,omitempty"`
}
