package timeline

import (
	"math"

	"github.com/ivlev/slidecast/internal/motion"
)

// EmptyInputError means there is nothing to compose. This is the one image
// stage failure that stops the whole run.
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string {
	return "нет изображений для сборки видео"
}

// Span is a motion segment placed on the absolute timeline.
type Span struct {
	Segment motion.Segment
	Start   float64
	End     float64
}

// Timeline is the ordered visual sequence of a run. It is only ever
// mutated by tail truncation during audio reconciliation; spans keep their
// original order forever.
type Timeline struct {
	Spans []Span
	Total float64
}

// Build concatenates segments with cumulative offsets. No trimming and no
// transition blending happens here: cuts between spans are abrupt.
func Build(segments []motion.Segment) (*Timeline, error) {
	if len(segments) == 0 {
		return nil, &EmptyInputError{}
	}

	tl := &Timeline{Spans: make([]Span, 0, len(segments))}
	offset := 0.0
	for _, seg := range segments {
		span := Span{Segment: seg, Start: offset, End: offset + seg.Duration}
		tl.Spans = append(tl.Spans, span)
		offset = span.End
	}
	tl.Total = offset
	return tl, nil
}

const tolerance = 1e-3

// TruncateTo trims the timeline tail down to duration d. Spans that start
// at or beyond d are dropped; a span straddling the boundary keeps its
// scale trajectory but ends early: the end scale is re-evaluated at the cut
// point so the ramp rate stays the same. Returns true when anything changed.
func (t *Timeline) TruncateTo(d float64) bool {
	if d < 0 {
		d = 0
	}
	if t.Total <= d+tolerance {
		return false
	}

	var spans []Span
	for _, span := range t.Spans {
		if span.Start >= d {
			break
		}
		if span.End > d {
			cut := span
			cut.End = d
			cut.Segment.EndScale = span.Segment.ScaleAt(d - span.Start)
			cut.Segment.Duration = d - span.Start
			spans = append(spans, cut)
			break
		}
		spans = append(spans, span)
	}

	t.Spans = spans
	t.Total = d
	if len(spans) > 0 {
		t.Total = math.Min(d, spans[len(spans)-1].End)
	}
	return true
}
