// Package stats plots the sparse "name: [value]" metric logs printed by
// the sampler.
package stats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidRange is returned when the end percent is not above the start.
var ErrInvalidRange = errors.New("stats: end percent must be greater than start percent")

var metricRe = regexp.MustCompile(`([A-Za-z0-9_]+)\s*:\s*\[\s*([+-]?[0-9]*\.?[0-9]+(?:[eE][+-]?\d+)?)\s*\]`)

// Series holds the sparse samples of one metric.
type Series struct {
	X []float64
	Y []float64
}

// Mean returns the average value, or 0 for an empty series.
func (s *Series) Mean() float64 {
	if len(s.Y) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.Y {
		sum += v
	}
	return sum / float64(len(s.Y))
}

// Metrics maps metric names to their series.
type Metrics map[string]*Series

// Names returns the metric names in sorted order.
func (m Metrics) Names() []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ReadLines splits r into lines without their terminators.
func ReadLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("stats: read: %w", err)
	}
	return lines, nil
}

// SliceLines returns the lines between startPct and endPct, both clamped
// to [0, 100]. At least one line is kept for non-empty input.
func SliceLines(lines []string, startPct, endPct float64) ([]string, error) {
	n := len(lines)
	if n == 0 {
		return nil, nil
	}
	sp := max(0, min(100, startPct))
	ep := max(0, min(100, endPct))
	if !(ep > sp) {
		return nil, fmt.Errorf("%w: start=%g end=%g", ErrInvalidRange, startPct, endPct)
	}

	lo := int(sp / 100 * float64(n))
	hi := int(ep / 100 * float64(n))
	if hi <= lo {
		hi = min(lo+1, n)
	}
	return lines[lo:hi], nil
}

// Period returns the number of lines per sampling step: the first line plus
// every tab-indented line directly following it.
func Period(lines []string) int {
	p := 1
	for _, l := range lines[min(1, len(lines)):] {
		if !strings.HasPrefix(l, "\t") {
			break
		}
		p++
	}
	return p
}

// Parse extracts every metric token. A value found on line i is placed at
// x = i / Period(lines).
func Parse(lines []string) Metrics {
	period := float64(Period(lines))
	out := make(Metrics)
	for i, line := range lines {
		x := float64(i) / period
		for _, m := range metricRe.FindAllStringSubmatch(line, -1) {
			v, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			s, ok := out[m[1]]
			if !ok {
				s = &Series{}
				out[m[1]] = s
			}
			s.X = append(s.X, x)
			s.Y = append(s.Y, v)
		}
	}
	return out
}

// ParseReader reads r, applies the percent window and parses the result.
func ParseReader(r io.Reader, startPct, endPct float64) (Metrics, error) {
	lines, err := ReadLines(r)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return Metrics{}, nil
	}
	sliced, err := SliceLines(lines, startPct, endPct)
	if err != nil {
		return nil, err
	}
	return Parse(sliced), nil
}
