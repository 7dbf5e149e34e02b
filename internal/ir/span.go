// Package ir defines the shared source model: spans, nodes, edges, stable
// identifiers, string interning, and arena allocation used by every later
// layer of the pipeline (parser adapter, IR builder, flow graphs, SSA,
// points-to, IFDS, and the auxiliary analyses).
package ir

import "fmt"

// Position is a 1-based line, 0-based column source location.
type Position struct {
	Line uint32
	Col  uint32
}

// Less reports whether p sorts strictly before other in line/col order.
func (p Position) Less(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}

	return p.Col < other.Col
}

// Span is a half-open[ish] source range: [Start, End]. Spans are value
// types and compared structurally. A zero-span (Start == End == zero
// Position) is only valid on synthetic nodes that have no source origin.
type Span struct {
	Start Position
	End   Position
}

// IsZero reports whether the span is the synthetic zero-span.
func (s Span) IsZero() bool {
	return s.Start == Position{} && s.End == Position{}
}

// Valid reports whether the span satisfies the Start <= End invariant.
func (s Span) Valid() bool {
	return s.IsZero() || !s.End.Less(s.Start)
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Col, s.End.Line, s.End.Col)
}
