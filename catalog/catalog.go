// Package catalog keeps a history of analysis runs per trace.
//
// Each run is stored as one DynamoDB item keyed by the trace URI and a
// version number that increases by one per run. Versions are claimed with
// a conditional put, so two runs against the same trace never share one.
//
// Table schema:
//   - Partition key: trace_uri (string)
//   - Sort key: version (number)
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name pact-runs \
//	  --attribute-definitions AttributeName=trace_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=trace_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
package catalog

import (
	"context"
	"errors"
	"time"
)

// ErrConcurrentRun is returned when another run keeps claiming the next
// version.
var ErrConcurrentRun = errors.New("catalog: concurrent run recorded the same version")

// Entry is one recorded run.
type Entry struct {
	TraceURI  string
	Version   uint64
	CreatedAt time.Time
	Codec     string
	Report    []byte
}

// Recorder stores run reports.
type Recorder interface {
	// Record stores report under the next version for traceURI and returns it.
	Record(ctx context.Context, traceURI, codec string, report []byte) (uint64, error)
	// History returns up to limit entries for traceURI, newest first.
	History(ctx context.Context, traceURI string, limit int) ([]Entry, error)
}

// Nop discards every run.
type Nop struct{}

func (Nop) Record(context.Context, string, string, []byte) (uint64, error) { return 0, nil }

func (Nop) History(context.Context, string, int) ([]Entry, error) { return nil, nil }

var _ Recorder = Nop{}
