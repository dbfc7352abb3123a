package composer

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/slidecast/internal/audiosync"
	"github.com/ivlev/slidecast/internal/subtitle"
	"github.com/ivlev/slidecast/internal/timeline"
)

// Manifest — YAML-слепок собранного плана композиции, записывается рядом
// с выходным файлом. По нему запуск можно разобрать и воспроизвести.
type Manifest struct {
	Version   string            `yaml:"version"`
	RunID     string            `yaml:"run_id"`
	CreatedAt string            `yaml:"created_at"`
	Output    string            `yaml:"output"`
	Video     ManifestVideo     `yaml:"video"`
	Segments  []ManifestSegment `yaml:"segments"`
	Audio     ManifestAudio     `yaml:"audio"`
	Cues      []ManifestCue     `yaml:"cues,omitempty"`
}

type ManifestVideo struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	FPS      int     `yaml:"fps"`
	Duration float64 `yaml:"duration"`
}

type ManifestSegment struct {
	Source     string  `yaml:"source"`
	Start      float64 `yaml:"start"`
	End        float64 `yaml:"end"`
	Zoom       string  `yaml:"zoom"`
	StartScale float64 `yaml:"start_scale"`
	EndScale   float64 `yaml:"end_scale"`
}

type ManifestAudio struct {
	Path     string  `yaml:"path"`
	Natural  float64 `yaml:"natural_duration"`
	Loops    int     `yaml:"loops"`
	Duration float64 `yaml:"final_duration"`
}

type ManifestCue struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
	Text  string  `yaml:"text"`
}

func (c *Composer) writeManifest(req Request, res *Result, tl *timeline.Timeline, sync audiosync.Result, overlays subtitle.OverlaySet) error {
	m := Manifest{
		Version:   "1.0",
		RunID:     res.RunID,
		CreatedAt: time.Now().Format(time.RFC3339),
		Output:    req.OutputPath,
		Video: ManifestVideo{
			Width:    c.cfg.Width,
			Height:   c.cfg.Height,
			FPS:      c.cfg.FPS,
			Duration: sync.VideoDuration,
		},
		Audio: ManifestAudio{
			Path:     sync.Audio.Track.Path,
			Natural:  sync.Audio.Track.Duration,
			Loops:    sync.Audio.Loops,
			Duration: sync.Audio.Duration,
		},
	}

	for _, span := range tl.Spans {
		m.Segments = append(m.Segments, ManifestSegment{
			Source:     span.Segment.Frame.SourcePath,
			Start:      span.Start,
			End:        span.End,
			Zoom:       span.Segment.Direction.String(),
			StartScale: span.Segment.StartScale,
			EndScale:   span.Segment.EndScale,
		})
	}
	for _, o := range overlays.Overlays {
		m.Cues = append(m.Cues, ManifestCue{Start: o.Cue.Start, End: o.Cue.End, Text: o.Cue.Text})
	}

	data, err := yaml.Marshal(&m)
	if err != nil {
		return err
	}
	return os.WriteFile(req.OutputPath+".plan.yaml", data, 0644)
}
