package timeline

import (
	"errors"
	"math"
	"testing"

	"github.com/ivlev/slidecast/internal/motion"
)

func segments(durations ...float64) []motion.Segment {
	segs := make([]motion.Segment, 0, len(durations))
	for _, d := range durations {
		segs = append(segs, motion.Segment{Duration: d, StartScale: 1, EndScale: 1.2})
	}
	return segs
}

func TestBuildEmpty(t *testing.T) {
	_, err := Build(nil)
	var empty *EmptyInputError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyInputError, got %v", err)
	}
}

func TestBuildCumulativeOffsets(t *testing.T) {
	tl, err := Build(segments(4, 4, 2))
	if err != nil {
		t.Fatal(err)
	}
	if tl.Total != 10.0 {
		t.Errorf("expected total 10.0, got %g", tl.Total)
	}

	wantStarts := []float64{0, 4, 8}
	wantEnds := []float64{4, 8, 10}
	for i, span := range tl.Spans {
		if span.Start != wantStarts[i] || span.End != wantEnds[i] {
			t.Errorf("span %d: got [%g, %g], want [%g, %g]", i, span.Start, span.End, wantStarts[i], wantEnds[i])
		}
	}
}

func TestTruncateToMidSegment(t *testing.T) {
	tl, _ := Build(segments(4, 4, 4))

	if !tl.TruncateTo(6.0) {
		t.Fatal("expected truncation to report a change")
	}
	if tl.Total != 6.0 {
		t.Errorf("expected total 6.0, got %g", tl.Total)
	}
	if len(tl.Spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(tl.Spans))
	}

	cut := tl.Spans[1]
	if cut.End != 6.0 {
		t.Errorf("boundary span end: got %g, want 6.0", cut.End)
	}
	if cut.Segment.Duration != 2.0 {
		t.Errorf("boundary segment duration: got %g, want 2.0", cut.Segment.Duration)
	}
	// The ramp rate survives: the segment stops halfway up, not compressed
	// into the shorter window.
	if math.Abs(cut.Segment.EndScale-1.1) > 1e-9 {
		t.Errorf("boundary end scale: got %g, want 1.1", cut.Segment.EndScale)
	}
	if got := cut.Segment.ScaleAt(1.0); math.Abs(got-1.05) > 1e-9 {
		t.Errorf("ramp rate changed: ScaleAt(1.0) = %g, want 1.05", got)
	}
}

func TestTruncateToExactBoundary(t *testing.T) {
	tl, _ := Build(segments(4, 4))

	if !tl.TruncateTo(4.0) {
		t.Fatal("expected change")
	}
	if len(tl.Spans) != 1 || tl.Total != 4.0 {
		t.Errorf("got %d spans, total %g", len(tl.Spans), tl.Total)
	}
}

func TestTruncateToNoop(t *testing.T) {
	tl, _ := Build(segments(4, 4))

	if tl.TruncateTo(8.0) {
		t.Error("truncation to full length must be a no-op")
	}
	if tl.TruncateTo(9.0) {
		t.Error("truncation beyond total must be a no-op")
	}
	if tl.Total != 8.0 || len(tl.Spans) != 2 {
		t.Errorf("timeline mutated: total=%g spans=%d", tl.Total, len(tl.Spans))
	}
}

func TestTruncateToWithinTolerance(t *testing.T) {
	tl, _ := Build(segments(4, 4))
	if tl.TruncateTo(8.0 - 1e-4) {
		t.Error("sub-tolerance difference must not truncate")
	}
	if math.Abs(tl.Total-8.0) > 1e-9 {
		t.Errorf("total changed: %g", tl.Total)
	}
}
