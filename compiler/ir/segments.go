package ir

import (
	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/pattern"
)

// NewSegment converts a parsed pattern segment into its IR record.
func NewSegment(s pattern.Segment) *SegmentDefinition {
	seg := &SegmentDefinition{
		Kind:     int(s.Kind),
		Text:     s.Text,
		Name:     s.Name,
		Type:     s.Type,
		Optional: s.Optional,
		Repeated: s.Repeated,
		Short:    s.Short,
		Required: s.Required,
	}
	if s.Value != nil {
		seg.Value = NewSegment(*s.Value)
	}
	return seg
}

// NewSegments converts a parsed segment list, preserving order.
func NewSegments(segs []pattern.Segment) []*SegmentDefinition {
	out := make([]*SegmentDefinition, len(segs))
	for i := range segs {
		out[i] = NewSegment(segs[i])
	}
	return out
}

// IsPositional reports whether the segment consumes a positional argument.
func (s *SegmentDefinition) IsPositional() bool {
	return s.Kind == SegLiteral || s.Kind == SegParam || s.Kind == SegCatchAll
}

// Positionals returns the positional segments of a route in order, with the
// group prefix chain expanded as leading literals.
func (r *RouteDefinition) Positionals() []*SegmentDefinition {
	var out []*SegmentDefinition
	for _, p := range r.GroupPrefix {
		out = append(out, &SegmentDefinition{Kind: SegLiteral, Text: p})
	}
	for _, s := range r.Segments {
		if s.IsPositional() {
			out = append(out, s)
		}
	}
	return out
}

// Options returns the option segments of a route in declaration order.
func (r *RouteDefinition) Options() []*SegmentDefinition {
	var out []*SegmentDefinition
	for _, s := range r.Segments {
		if s.Kind == SegOption {
			out = append(out, s)
		}
	}
	return out
}
