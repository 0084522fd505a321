// Package neighbor parses the sampler's neighbor log.
//
// Each useful line has the form
//
//	[12.5] 0x7f0000001000 Neighbors: 0x7f0000001008, 0x7f0000001010,
//
// Any other line is ignored.
package neighbor

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
)

var (
	lineRe = regexp.MustCompile(
		`\[(?P<ts>[0-9.]+)\]\s*` +
			`(?P<root>0x[0-9a-fA-F]+)\s+Neighbors:\s*` +
			`(?P<nbrs>0x[0-9a-fA-F]+(?:\s*,\s*0x[0-9a-fA-F]+)*\s*,?)`)
	hexRe = regexp.MustCompile(`0x[0-9a-fA-F]+`)

	tsIdx   = lineRe.SubexpIndex("ts")
	rootIdx = lineRe.SubexpIndex("root")
	nbrsIdx = lineRe.SubexpIndex("nbrs")
)

// maxLineSize bounds a single log line.
const maxLineSize = 1 << 20

// Observation is one root address and the neighbors seen with it.
type Observation struct {
	Timestamp float64
	Root      uint64
	Neighbors []uint64
}

// Within reports whether the root lies in the inclusive range [start, end].
func (o Observation) Within(start, end uint64) bool {
	return start <= o.Root && o.Root <= end
}

// ParseLine parses one log line. ok is false when the line does not match.
func ParseLine(line string) (obs Observation, ok bool) {
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return Observation{}, false
	}

	ts, err := strconv.ParseFloat(m[tsIdx], 64)
	if err != nil {
		return Observation{}, false
	}
	root, err := parseHex(m[rootIdx])
	if err != nil {
		return Observation{}, false
	}

	obs = Observation{Timestamp: ts, Root: root}
	for _, h := range hexRe.FindAllString(m[nbrsIdx], -1) {
		v, err := parseHex(h)
		if err != nil {
			return Observation{}, false
		}
		obs.Neighbors = append(obs.Neighbors, v)
	}
	return obs, true
}

func parseHex(s string) (uint64, error) {
	return strconv.ParseUint(s[2:], 16, 64)
}

// Parse reads every matching line from r in order.
func Parse(r io.Reader) ([]Observation, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var out []Observation
	for sc.Scan() {
		if obs, ok := ParseLine(sc.Text()); ok {
			out = append(out, obs)
		}
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("neighbor: scan: %w", err)
	}
	return out, nil
}

// Point is an overlay marker position: timestamp and raw address.
type Point struct {
	Timestamp float64
	Addr      uint64
}

// Overlay collects the roots inside [start, end] and those of their
// neighbors that also fall inside the range.
func Overlay(obs []Observation, start, end uint64) (roots, neighbors []Point) {
	for _, o := range obs {
		if !o.Within(start, end) {
			continue
		}
		roots = append(roots, Point{Timestamp: o.Timestamp, Addr: o.Root})
		for _, n := range o.Neighbors {
			if start <= n && n <= end {
				neighbors = append(neighbors, Point{Timestamp: o.Timestamp, Addr: n})
			}
		}
	}
	return roots, neighbors
}
