package service

import (
	"context"
	"errors"

	"github.com/ukaji3/xlpack-go/pkg/xlpack"
)

// DocumentError wraps a document that could not be resolved.
type DocumentError struct {
	Err error
}

func (e *DocumentError) Error() string {
	return "invalid document: " + e.Err.Error()
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// PublishError wraps a storage failure after a successful assembly.
type PublishError struct {
	Err error
}

func (e *PublishError) Error() string {
	return "publish failed: " + e.Err.Error()
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies err for metrics and HTTP status mapping.
func ErrorKind(err error) string {
	var (
		docErr     *DocumentError
		invalidErr *xlpack.InvalidWorkbookError
		asmErr     *xlpack.AssemblyError
		pkgErr     *xlpack.PackagingError
		pubErr     *PublishError
	)
	switch {
	case errors.Is(err, ErrInvalidName), errors.As(err, &docErr):
		return "invalid_document"
	case errors.As(err, &invalidErr):
		return "invalid_workbook"
	case errors.As(err, &asmErr):
		if errors.Is(err, context.DeadlineExceeded) {
			return "timeout"
		}
		return "assembly"
	case errors.As(err, &pkgErr):
		return "packaging"
	case errors.As(err, &pubErr):
		return "storage"
	case errors.Is(err, ErrNoStore):
		return "no_store"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
