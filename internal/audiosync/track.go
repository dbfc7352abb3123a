package audiosync

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Track is one decoded audio source: its path plus the natural duration
// reported by the probe. Immutable once read.
type Track struct {
	Path     string
	Duration float64
}

// NoAudioTrackError means the audio file could not be probed or decoded at
// all. Duration mismatches are never reported through this type.
type NoAudioTrackError struct {
	Path string
	Err  error
}

func (e *NoAudioTrackError) Error() string {
	return fmt.Sprintf("аудиодорожка %s недоступна: %v", e.Path, e.Err)
}

func (e *NoAudioTrackError) Unwrap() error { return e.Err }

// Probe reads the track duration via ffprobe.
func Probe(ctx context.Context, path string) (Track, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return Track{}, &NoAudioTrackError{Path: path, Err: errors.Wrap(err, strings.TrimSpace(string(out)))}
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return Track{}, &NoAudioTrackError{Path: path, Err: errors.Wrap(err, "не удалось разобрать длительность")}
	}
	if duration <= 0 {
		return Track{}, &NoAudioTrackError{Path: path, Err: errors.Errorf("нулевая длительность %g", duration)}
	}

	return Track{Path: path, Duration: duration}, nil
}
