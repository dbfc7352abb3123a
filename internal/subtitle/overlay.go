package subtitle

import (
	"fmt"
	"strings"
)

// Layout carries the rendering knobs shared by every cue of a run.
type Layout struct {
	Position    string // bottom, top, center, left-bottom, right-bottom
	FontSize    int
	Color       string
	StrokeColor string
	StrokeWidth int
	Margin      int
	Font        string
}

// Overlay is one cue mapped onto the final timeline with its layout.
type Overlay struct {
	Cue    Cue
	Layout Layout
}

// OverlaySet is the ordered collection of cues that intersect the final
// timeline. Overlapping cues are kept as-is and render independently.
type OverlaySet struct {
	Overlays []Overlay
	Notes    []string
}

// BuildOverlays clips cues against the final duration: a cue ending past
// the timeline is cut at finalDuration, a cue starting at or past it is
// dropped. A cue whose text cannot be prepared for rendering is skipped
// with a note; zero surviving cues is not an error.
func BuildOverlays(cues []Cue, finalDuration float64, layout Layout) OverlaySet {
	var set OverlaySet
	for _, cue := range cues {
		if cue.Start >= finalDuration {
			set.Notes = append(set.Notes, fmt.Sprintf("cue %d (%.2f-%.2f) is beyond the timeline, dropped", cue.Index, cue.Start, cue.End))
			continue
		}
		if cue.End > finalDuration {
			cue.End = finalDuration
		}
		if strings.TrimSpace(cue.Text) == "" {
			set.Notes = append(set.Notes, fmt.Sprintf("cue %d has no renderable text, skipped", cue.Index))
			continue
		}
		set.Overlays = append(set.Overlays, Overlay{Cue: cue, Layout: layout})
	}
	return set
}

// DrawtextFilter renders the overlay as an ffmpeg drawtext filter, active
// only inside the cue's interval.
func (o Overlay) DrawtextFilter() string {
	x, y := o.Layout.positionExpr()

	parts := []string{
		fmt.Sprintf("text='%s'", escapeDrawtext(o.Cue.Text)),
		fmt.Sprintf("fontsize=%d", o.Layout.FontSize),
		fmt.Sprintf("fontcolor=%s", o.Layout.Color),
		fmt.Sprintf("x=%s", x),
		fmt.Sprintf("y=%s", y),
		fmt.Sprintf("enable='between(t,%.3f,%.3f)'", o.Cue.Start, o.Cue.End),
	}
	if o.Layout.Font != "" {
		parts = append(parts, fmt.Sprintf("font='%s'", escapeDrawtext(o.Layout.Font)))
	}
	if o.Layout.StrokeWidth > 0 {
		parts = append(parts,
			fmt.Sprintf("borderw=%d", o.Layout.StrokeWidth),
			fmt.Sprintf("bordercolor=%s", o.Layout.StrokeColor),
		)
	}
	return "drawtext=" + strings.Join(parts, ":")
}

func (l Layout) positionExpr() (x, y string) {
	margin := l.Margin
	switch l.Position {
	case "top":
		return "(w-text_w)/2", fmt.Sprintf("%d", margin)
	case "center":
		return "(w-text_w)/2", "(h-text_h)/2"
	case "left-bottom":
		return fmt.Sprintf("%d", margin), fmt.Sprintf("h-text_h-%d", margin)
	case "right-bottom":
		return fmt.Sprintf("w-text_w-%d", margin), fmt.Sprintf("h-text_h-%d", margin)
	default: // bottom
		return "(w-text_w)/2", fmt.Sprintf("h-text_h-%d", margin)
	}
}

// escapeDrawtext quotes the characters drawtext treats specially. The text
// sits inside a '...' run where the graph parser takes everything literally,
// so a literal quote has to close the run, emit an escaped quote and reopen
// it. Newlines survive: drawtext renders them as line breaks.
func escapeDrawtext(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `'\''`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return r.Replace(s)
}
