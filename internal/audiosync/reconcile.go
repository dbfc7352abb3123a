package audiosync

import (
	"fmt"
	"math"

	"github.com/ivlev/slidecast/internal/timeline"
)

// Policy selects how an audio/video duration mismatch is resolved.
type Policy string

const (
	PolicyLoopAudio Policy = "loop_audio"
	PolicyCutVideo  Policy = "cut_video"
	PolicyCutAudio  Policy = "cut_audio"
)

// Tolerance below which two durations count as equal. MoviePy relied on
// float equality here; an explicit epsilon makes the branch reachable.
const Tolerance = 1e-3

// Reconciled describes the final audio span: Loops copies of the track
// concatenated and truncated to Duration. Deterministic given the inputs.
type Reconciled struct {
	Track    Track
	Loops    int
	Duration float64
}

// Result of reconciliation. VideoDuration is the (possibly truncated)
// timeline total; Notes carry warning-level outcomes such as the known
// short-audio gap.
type Result struct {
	Audio         Reconciled
	VideoDuration float64
	Notes         []string
}

// Reconcile applies the sync policy decision table. The timeline is
// truncated in place when a branch calls for cutting video; audio is never
// padded with silence — when the loop cap leaves it short, it simply ends
// early and the gap is reported as a note.
//
// Known quirk, preserved on purpose: under loop_audio, audio shorter than
// half the video falls back to truncating the *video* to the audio length,
// regardless of the nominal policy. Existing outputs depend on it.
func Reconcile(track Track, tl *timeline.Timeline, policy Policy, maxLoops int) Result {
	if maxLoops < 1 {
		maxLoops = 1
	}

	res := Result{
		Audio:         Reconciled{Track: track, Loops: 1, Duration: track.Duration},
		VideoDuration: tl.Total,
	}
	video := tl.Total

	switch {
	case math.Abs(track.Duration-video) <= Tolerance:
		// Pass both through unchanged.
		res.Audio.Duration = track.Duration

	case track.Duration > video:
		res.Audio.Duration = video
		res.note("аудио обрезано до %.2f сек", video)

	default: // audio shorter than video
		switch policy {
		case PolicyLoopAudio:
			if track.Duration*2 >= video {
				loops := int(video/track.Duration) + 1
				if loops > maxLoops {
					loops = maxLoops
				}
				res.Audio.Loops = loops
				res.Audio.Duration = math.Min(float64(loops)*track.Duration, video)
				res.note("аудио зациклено %d раз(а)", loops)
				if res.Audio.Duration < video-Tolerance {
					res.note("аудио короче видео на %.2f сек: лимит повторов %d исчерпан, тишина не добавляется",
						video-res.Audio.Duration, maxLoops)
				}
			} else {
				// Cross-policy fallback: audio far too short to loop once,
				// so the video is cut to the audio length instead.
				tl.TruncateTo(track.Duration)
				res.VideoDuration = tl.Total
				res.Audio.Duration = track.Duration
				res.note("аудио слишком короткое для зацикливания: видео обрезано до %.2f сек (fallback от loop_audio)", track.Duration)
			}

		case PolicyCutVideo:
			tl.TruncateTo(track.Duration)
			res.VideoDuration = tl.Total
			res.Audio.Duration = track.Duration
			res.note("видео обрезано до %.2f сек", track.Duration)

		case PolicyCutAudio:
			// Cutting audio that is already shorter is meaningless; leave
			// it as-is and surface the gap.
			res.note("аудио короче видео на %.2f сек: режим cut_audio оставляет его без изменений",
				video-track.Duration)

		default:
			res.note("неизвестный режим синхронизации %q: аудио оставлено без изменений", string(policy))
		}
	}

	return res
}

func (r *Result) note(format string, args ...any) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}
