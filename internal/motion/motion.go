package motion

import (
	"fmt"
	"math/rand"

	"github.com/ivlev/slidecast/internal/config"
	"github.com/ivlev/slidecast/internal/frame"
)

// Direction of the Ken Burns zoom for one segment.
type Direction int

const (
	// DirectionNone means constant scale 1.0 (effect disabled or failed).
	DirectionNone Direction = iota
	// DirectionIn starts at the zoom factor and settles to 1.0.
	DirectionIn
	// DirectionOut starts at 1.0 and grows to the zoom factor.
	DirectionOut
)

func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "in"
	case DirectionOut:
		return "out"
	default:
		return "none"
	}
}

// Segment is one picture's slot on the timeline: a fixed display duration
// plus a linear scale trajectory. One of StartScale/EndScale is always 1.0;
// the other is the configured zoom factor.
type Segment struct {
	Frame      *frame.Normalized
	Duration   float64
	StartScale float64
	EndScale   float64
	Direction  Direction
	Note       string
}

// ScaleAt evaluates the trajectory at elapsed time t, clamped to
// [0, Duration]. ScaleAt(0) == StartScale, ScaleAt(Duration) == EndScale.
func (s Segment) ScaleAt(t float64) float64 {
	if s.Duration <= 0 {
		return s.StartScale
	}
	if t < 0 {
		t = 0
	}
	if t > s.Duration {
		t = s.Duration
	}
	return s.StartScale + (s.EndScale-s.StartScale)*(t/s.Duration)
}

// Engine builds motion segments. Randomness comes from the injected rng so
// a run can be replayed deterministically from its seed; direction draws
// happen on the caller's goroutine, never inside the parallel phase.
type Engine struct {
	factor    float64
	enabled   bool
	randomize bool
	rng       *rand.Rand
}

func NewEngine(factor float64, enabled, randomize bool, rng *rand.Rand) *Engine {
	return &Engine{factor: factor, enabled: enabled, randomize: randomize, rng: rng}
}

// NextDirection draws the direction for the next segment. Fixed mode always
// zooms in; random mode picks uniformly per segment.
func (e *Engine) NextDirection() Direction {
	if !e.enabled {
		return DirectionNone
	}
	if !e.randomize {
		return DirectionIn
	}
	if e.rng.Intn(2) == 0 {
		return DirectionIn
	}
	return DirectionOut
}

// Apply attaches a scale trajectory to a normalized frame. A non-positive
// duration is a configuration error; any internal effect problem degrades
// to the un-animated segment instead of failing the composition.
func (e *Engine) Apply(f *frame.Normalized, duration float64, dir Direction) (Segment, error) {
	if duration <= 0 {
		return Segment{}, &config.InvalidParameterError{
			Param:  "duration",
			Reason: fmt.Sprintf("длительность сегмента должна быть положительной, получено %g", duration),
		}
	}

	seg := Segment{
		Frame:      f,
		Duration:   duration,
		StartScale: 1.0,
		EndScale:   1.0,
		Direction:  DirectionNone,
	}

	if !e.enabled || dir == DirectionNone {
		return seg, nil
	}

	if e.factor < 1.0 {
		// Best-effort effect: a broken factor must not sink the run.
		seg.Note = fmt.Sprintf("zoom factor %g below 1.0, effect skipped", e.factor)
		return seg, nil
	}

	switch dir {
	case DirectionIn:
		seg.StartScale = e.factor
		seg.EndScale = 1.0
	case DirectionOut:
		seg.StartScale = 1.0
		seg.EndScale = e.factor
	}
	seg.Direction = dir
	return seg, nil
}
