package pact

import (
	"errors"
	"fmt"
	"math"

	"github.com/lpjones/PACT/blobstore"
	"github.com/lpjones/PACT/render"
	"github.com/lpjones/PACT/timelog"
	"github.com/lpjones/PACT/trace"
)

var (
	// ErrNoClusters is returned when no cluster reaches the minimum sample count.
	ErrNoClusters = errors.New("no clusters passed the access count threshold")

	// ErrEmptyTrace is returned when the trace holds no complete record.
	ErrEmptyTrace = trace.ErrEmptyTrace
	// ErrEmptyRange is returned when the percent window selects no record.
	ErrEmptyRange = trace.ErrEmptyRange
	// ErrDegenerate is returned when a cluster's samples share one cycle
	// while a wall-clock range is in use.
	ErrDegenerate = timelog.ErrDegenerate
	// ErrUnsupportedFormat is returned for an output extension the mode cannot write.
	ErrUnsupportedFormat = render.ErrUnsupportedFormat
	// ErrUnknownColorBy is returned for an unknown color scheme.
	ErrUnknownColorBy = render.ErrUnknownColorBy
	// ErrNotFound is returned when an input does not exist.
	ErrNotFound = blobstore.ErrNotFound
)

// ErrInvalidPercent indicates a percent window outside 0 <= start <= end <= 100.
type ErrInvalidPercent struct {
	Start float64
	End   float64
}

func (e *ErrInvalidPercent) Error() string {
	return fmt.Sprintf("invalid percent range: start=%g end=%g (want 0 <= start <= end <= 100)", e.Start, e.End)
}

// ErrClusterRender reports which cluster failed to render or upload.
//
// The underlying error can be accessed via errors.Unwrap.
type ErrClusterRender struct {
	Index int
	Name  string
	cause error
}

func (e *ErrClusterRender) Error() string {
	return fmt.Sprintf("cluster %d (%s): %v", e.Index, e.Name, e.cause)
}

func (e *ErrClusterRender) Unwrap() error { return e.cause }

func validatePercent(start, end float64) error {
	if math.IsNaN(start) || math.IsNaN(end) || start < 0 || end > 100 || start > end {
		return &ErrInvalidPercent{Start: start, End: end}
	}
	return nil
}
