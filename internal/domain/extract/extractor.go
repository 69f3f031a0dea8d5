// Package extract owns the asynchronous table-extraction boundary. CPU
// intensive extraction runs on a dedicated worker goroutine; callers
// submit a file buffer and a strategy tag, receive progress updates, and
// await exactly one terminal result per submission.
package extract

import (
	"context"
	"errors"

	"github.com/FACorreiaa/statement-converter/internal/domain/tabular"
)

// StrategySpatial clusters a PDF text layer by on-page position.
const StrategySpatial = "spatial"

var (
	// ErrUnknownStrategy is returned when no strategy is registered under
	// the requested tag.
	ErrUnknownStrategy = errors.New("unknown extraction strategy")
	// ErrClosed is returned for submissions after Close.
	ErrClosed = errors.New("extraction service is closed")
)

// Strategy turns a raw file buffer into tabular data. Implementations
// report coarse progress in the 0-100 range through report; the service
// guarantees report is never nil.
type Strategy interface {
	Extract(ctx context.Context, file []byte, report func(percent int)) (*tabular.TableData, error)
}

// LayoutFunc is the external text-layout collaborator: it renders the
// positioned text fragments of a document. PDF decoding itself lives with
// the host application, not in this module.
type LayoutFunc func(ctx context.Context, file []byte) ([]tabular.TextItem, error)

// SpatialStrategy implements the spatial clustering strategy on top of a
// host-supplied layout collaborator.
type SpatialStrategy struct {
	Layout LayoutFunc
}

// Extract renders the text layout and clusters it into a table. Progress
// is reported after layout (40), after clustering (90), and on completion.
func (s *SpatialStrategy) Extract(ctx context.Context, file []byte, report func(int)) (*tabular.TableData, error) {
	if s.Layout == nil {
		return nil, errors.New("spatial strategy has no layout collaborator")
	}

	report(0)
	items, err := s.Layout(ctx, file)
	if err != nil {
		return nil, err
	}
	report(40)

	table := tabular.ExtractTable(items)
	report(90)

	table = tabular.MergeMultilineRows(table)
	report(100)
	return table, nil
}
