package xlpack

import (
	"context"
	"log/slog"
	"time"

	"github.com/ukaji3/xlpack-go/pkg/xlpack/archive"
	"github.com/ukaji3/xlpack-go/pkg/xlpack/models"
	"github.com/ukaji3/xlpack-go/pkg/xlpack/opc"
)

// sequencer stages worksheet parts strictly in sheet order.
type sequencer struct {
	plan    opc.Plan
	staging *archive.Staging
	timeout time.Duration
	log     *slog.Logger
	opts    Options
}

// run invokes Markup then RelsMarkup for each sheet, staging each result
// before the next sheet is touched. The first failure stops the loop.
func (s *sequencer) run(ctx context.Context, sheets []models.Sheet) error {
	for i, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return NewAssemblyError(i, sheet.Name(), StepMarkup, err)
		}
		start := time.Now()

		markup, err := s.call(ctx, sheet.Markup)
		if err == nil && len(markup) == 0 {
			err = ErrEmptyMarkup
		}
		if err != nil {
			return NewAssemblyError(i, sheet.Name(), StepMarkup, err)
		}
		path := s.plan.WorksheetPath(i)
		if err := s.staging.Add(path, markup); err != nil {
			return &PackagingError{Op: "stage", Part: path, Err: err}
		}
		s.log.Debug("staged worksheet", "index", i, "sheet", sheet.Name(), "path", path, "bytes", len(markup))

		rels, err := s.call(ctx, sheet.RelsMarkup)
		if err != nil {
			return NewAssemblyError(i, sheet.Name(), StepRelationships, err)
		}
		if len(rels) > 0 {
			path := s.plan.WorksheetRelsPath(i)
			if err := s.staging.Add(path, rels); err != nil {
				return &PackagingError{Op: "stage", Part: path, Err: err}
			}
			s.log.Debug("staged worksheet relationships", "index", i, "path", path, "bytes", len(rels))
		}

		s.opts.sheetDone(i, start)
	}
	return nil
}

type result struct {
	data []byte
	err  error
}

// call runs fn under the step timeout. A collaborator that ignores its
// context is abandoned once the deadline passes; its goroutine finishes into
// a buffered channel nobody reads.
func (s *sequencer) call(ctx context.Context, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	if s.timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		data, err := fn(ctx)
		done <- result{data: data, err: err}
	}()

	select {
	case r := <-done:
		return r.data, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
