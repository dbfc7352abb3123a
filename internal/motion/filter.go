package motion

import (
	"fmt"
	"math"
)

// ZoomFilter renders the segment's trajectory as an ffmpeg zoompan filter
// for a width x height canvas. Constant-scale segments need no filter and
// return "".
//
// zoompan evaluates z per output frame index `on`; the expression below is
// the same linear ramp as ScaleAt, sampled at frame boundaries so that the
// first frame shows StartScale and the last EndScale.
func (s Segment) ZoomFilter(width, height, fps int) string {
	if s.Direction == DirectionNone || s.StartScale == s.EndScale {
		return ""
	}

	frames := int(math.Round(s.Duration * float64(fps)))
	if frames < 2 {
		return ""
	}

	zExpr := fmt.Sprintf("%.6f+(%.6f)*on/%d", s.StartScale, s.EndScale-s.StartScale, frames-1)

	return fmt.Sprintf(
		"zoompan=z='%s':d=%d:x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':s=%dx%d:fps=%d",
		zExpr, frames, width, height, fps,
	)
}
