package trace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/lpjones/PACT/blobstore"
)

var (
	// ErrEmptyTrace is returned when the trace holds no complete record.
	ErrEmptyTrace = errors.New("trace: empty trace file")
	// ErrEmptyRange is returned when the percent selection contains no record.
	ErrEmptyRange = errors.New("trace: no records in requested range")
)

// SelectRange returns the record window covering [startPct, endPct) of a
// trace holding total records. count is never negative.
func SelectRange(total int64, startPct, endPct float64) (first, count int64) {
	first = int64(math.Floor(float64(total) * startPct / 100))
	last := int64(math.Floor(float64(total) * endPct / 100))
	first = max(0, min(first, total))
	last = max(0, min(last, total))
	return first, max(0, last-first)
}

// ReadOptions selects the part of a trace to decode.
type ReadOptions struct {
	StartPercent float64
	EndPercent   float64
}

// DefaultReadOptions selects the whole trace.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{StartPercent: 0, EndPercent: 100}
}

// Info describes what Read found.
type Info struct {
	TotalRecords int64
	First        int64
	Count        int64
	Compression  Compression
}

// Read decodes the selected records of blob.
func Read(ctx context.Context, blob blobstore.Blob, opts ReadOptions) (Samples, error) {
	s, _, err := ReadWithInfo(ctx, blob, opts)
	return s, err
}

// ReadWithInfo is Read that also reports the selection it applied.
func ReadWithInfo(ctx context.Context, blob blobstore.Blob, opts ReadOptions) (Samples, Info, error) {
	var info Info

	size := blob.Size()
	if size >= magicLen {
		head := make([]byte, magicLen)
		if _, err := blob.ReadAt(ctx, head, 0); err != nil && !errors.Is(err, io.EOF) {
			return nil, info, fmt.Errorf("trace: read header: %w", err)
		}
		info.Compression = DetectCompression(head)
	}

	if info.Compression != CompressionNone {
		raw, err := blobstore.ReadAll(ctx, blob)
		if err != nil {
			return nil, info, fmt.Errorf("trace: read: %w", err)
		}
		if data, err := decompress(info.Compression, raw); err == nil && len(data)%RecordSize == 0 {
			return selectFrom(data, opts, info)
		}
		// Not a valid stream of whole records: the magic came from a raw cycle.
		info.Compression = CompressionNone
		return selectFrom(raw, opts, info)
	}

	info.TotalRecords = size / RecordSize
	if info.TotalRecords == 0 {
		return nil, info, ErrEmptyTrace
	}
	info.First, info.Count = SelectRange(info.TotalRecords, opts.StartPercent, opts.EndPercent)
	if info.Count == 0 {
		return nil, info, ErrEmptyRange
	}

	if err := ctx.Err(); err != nil {
		return nil, info, err
	}

	if m, ok := blob.(blobstore.Mappable); ok {
		data, err := m.Bytes()
		if err == nil {
			off := info.First * RecordSize
			return Decode(data[off : off+info.Count*RecordSize]), info, nil
		}
	}

	rc, err := blob.ReadRange(ctx, info.First*RecordSize, info.Count*RecordSize)
	if err != nil {
		return nil, info, fmt.Errorf("trace: read range: %w", err)
	}
	defer rc.Close()

	buf := make([]byte, info.Count*RecordSize)
	if _, err := io.ReadFull(rc, buf); err != nil {
		return nil, info, fmt.Errorf("trace: read range: %w", err)
	}
	return Decode(buf), info, nil
}

func selectFrom(data []byte, opts ReadOptions, info Info) (Samples, Info, error) {
	info.TotalRecords = int64(len(data) / RecordSize)
	if info.TotalRecords == 0 {
		return nil, info, ErrEmptyTrace
	}
	info.First, info.Count = SelectRange(info.TotalRecords, opts.StartPercent, opts.EndPercent)
	if info.Count == 0 {
		return nil, info, ErrEmptyRange
	}
	off := info.First * RecordSize
	return Decode(data[off : off+info.Count*RecordSize]), info, nil
}
