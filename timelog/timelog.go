// Package timelog extracts the wall-clock span of a sampler run from its
// debug log and maps sample cycles onto it.
package timelog

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
)

var (
	// ErrNoTimestamp is returned when the first or last line carries no [ts].
	ErrNoTimestamp = errors.New("timelog: no timestamp")
	// ErrDegenerate is returned when all cycles are equal.
	ErrDegenerate = errors.New("timelog: degenerate cycle range")
)

// DefaultName is the debug log file name the sampler writes next to the trace.
const DefaultName = "debuglog.txt"

var tsRe = regexp.MustCompile(`\[([0-9.]+)\]`)

const tailChunk = 4096

// Range is an absolute time span in seconds.
type Range struct {
	Start float64
	End   float64
}

// ParseRange returns the timestamps of the first line and of the last
// non-empty line of r.
func ParseRange(r io.ReadSeeker) (Range, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Range{}, err
	}
	first, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return Range{}, err
	}
	start, err := timestamp(first)
	if err != nil {
		return Range{}, fmt.Errorf("%w in first line", err)
	}

	last, err := lastLine(r)
	if err != nil {
		return Range{}, err
	}
	end, err := timestamp(last)
	if err != nil {
		return Range{}, fmt.Errorf("%w in last line", err)
	}
	return Range{Start: start, End: end}, nil
}

func timestamp(line string) (float64, error) {
	m := tsRe.FindStringSubmatch(line)
	if m == nil {
		return 0, ErrNoTimestamp
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNoTimestamp, m[1])
	}
	return v, nil
}

// lastLine reads backwards from the end until a complete non-empty line
// is buffered.
func lastLine(r io.ReadSeeker) (string, error) {
	pos, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return "", err
	}

	var tail []byte
	for pos > 0 {
		n := min(int64(tailChunk), pos)
		pos -= n
		if _, err := r.Seek(pos, io.SeekStart); err != nil {
			return "", err
		}
		buf := make([]byte, n, n+int64(len(tail)))
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		tail = append(buf, tail...)

		trimmed := bytes.TrimRight(tail, " \t\r\n")
		if i := bytes.LastIndexByte(trimmed, '\n'); i >= 0 {
			return string(bytes.TrimSpace(trimmed[i+1:])), nil
		}
	}
	return string(bytes.TrimSpace(tail)), nil
}

// Scale narrows the range to the [startPct, endPct] share of the run.
func (r Range) Scale(startPct, endPct float64) Range {
	span := r.End - r.Start
	return Range{
		Start: r.Start + span*startPct/100,
		End:   r.Start + span*endPct/100,
	}
}

// Map spreads cycles linearly over the range, the smallest cycle landing
// on Start and the largest on End.
func (r Range) Map(cycles []uint64) ([]float64, error) {
	if len(cycles) == 0 {
		return nil, nil
	}
	lo, hi := cycles[0], cycles[0]
	for _, c := range cycles[1:] {
		lo = min(lo, c)
		hi = max(hi, c)
	}
	if lo == hi {
		return nil, ErrDegenerate
	}

	scale := (r.End - r.Start) / float64(hi-lo)
	out := make([]float64, len(cycles))
	for i, c := range cycles {
		out[i] = r.Start + float64(c-lo)*scale
	}
	return out, nil
}

// Relative returns cycles offset by the smallest cycle. It is the x axis
// used when no debug log is available.
func Relative(cycles []uint64) []float64 {
	if len(cycles) == 0 {
		return nil
	}
	lo := cycles[0]
	for _, c := range cycles[1:] {
		lo = min(lo, c)
	}
	out := make([]float64, len(cycles))
	for i, c := range cycles {
		out[i] = float64(c - lo)
	}
	return out
}
