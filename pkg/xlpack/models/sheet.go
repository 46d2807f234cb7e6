package models

import "context"

// Sheet produces the markup of one worksheet part.
type Sheet interface {
	// Name is the display label of the sheet.
	Name() string
	// Markup returns the worksheet part document.
	Markup(ctx context.Context) ([]byte, error)
	// RelsMarkup returns the sheet-local relationships part, or nil when the
	// sheet has no relationships of its own.
	RelsMarkup(ctx context.Context) ([]byte, error)
}
