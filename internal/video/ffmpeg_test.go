package video

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ivlev/slidecast/internal/audiosync"
	"github.com/ivlev/slidecast/internal/subtitle"
)

func testRequest() Request {
	return Request{
		Frames: []FrameInput{
			{Path: "/tmp/frame_00000.png", Duration: 4.0, ZoomFilter: "zoompan=z='1.2+(-0.2)*on/95':d=96:x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':s=1024x768:fps=24"},
			{Path: "/tmp/frame_00001.png", Duration: 4.0},
		},
		Audio:      audiosync.Reconciled{Track: audiosync.Track{Path: "/tmp/audio.mp3", Duration: 4.0}, Loops: 2, Duration: 8.0},
		Duration:   8.0,
		OutputPath: "/tmp/out.mp4",
		Params: Params{
			Width: 1024, Height: 768, FPS: 24,
			VideoCodec: "libx264", AudioCodec: "aac",
			VideoBitrate: "2000k", AudioBitrate: "128k",
		},
	}
}

func joined(args []string) string { return strings.Join(args, " ") }

func TestBuildArgs(t *testing.T) {
	e := NewFFmpegEncoder(zerolog.Nop())
	args := e.buildArgs(testRequest())
	cmd := joined(args)

	for _, want := range []string{
		"-y",
		"-i /tmp/frame_00000.png",
		"-loop 1 -t 4.000000 -i /tmp/frame_00001.png",
		"-stream_loop 1 -i /tmp/audio.mp3",
		"-map [vout] -map [aout]",
		"-t 8.000000",
		"-r 24",
		"-c:v libx264",
		"-b:v 2000k",
		"-pix_fmt yuv420p",
		"-c:a aac",
		"-b:a 128k",
	} {
		if !strings.Contains(cmd, want) {
			t.Errorf("args missing %q:\n%s", want, cmd)
		}
	}

	if args[len(args)-1] != "/tmp/out.mp4" {
		t.Errorf("output path must be the last argument, got %s", args[len(args)-1])
	}

	// Zoompan input must NOT be looped by the demuxer.
	if strings.Contains(cmd, "-loop 1 -t 4.000000 -i /tmp/frame_00000.png") {
		t.Error("zoompan frame must be a plain input")
	}
}

func TestBuildArgsNoStreamLoopForSinglePass(t *testing.T) {
	req := testRequest()
	req.Audio.Loops = 1
	e := NewFFmpegEncoder(zerolog.Nop())
	if cmd := joined(e.buildArgs(req)); strings.Contains(cmd, "-stream_loop") {
		t.Errorf("unexpected -stream_loop for a single pass:\n%s", cmd)
	}
}

func TestBuildFilterGraph(t *testing.T) {
	e := NewFFmpegEncoder(zerolog.Nop())
	req := testRequest()
	graph := e.buildFilterGraph(req, len(req.Frames))

	for _, want := range []string{
		// Zoompan chain scales with a 2x margin against subpixel jitter.
		"[0:v]scale=2048:1536:force_original_aspect_ratio=decrease",
		"zoompan=",
		// Static chain normalizes to canvas size and fixes the frame rate.
		"[1:v]scale=1024:768:force_original_aspect_ratio=decrease",
		"fps=24",
		"concat=n=2:v=1:a=0[vout]",
		"[2:a]atrim=0:8.000000,asetpts=PTS-STARTPTS[aout]",
	} {
		if !strings.Contains(graph, want) {
			t.Errorf("graph missing %q:\n%s", want, graph)
		}
	}

	if strings.Contains(graph, "drawtext") {
		t.Error("no overlays requested, drawtext must be absent")
	}
}

func TestBuildFilterGraphWithOverlays(t *testing.T) {
	e := NewFFmpegEncoder(zerolog.Nop())
	req := testRequest()
	req.Overlays = subtitle.OverlaySet{Overlays: []subtitle.Overlay{
		{Cue: subtitle.Cue{Start: 1, End: 3, Text: "привет"}, Layout: subtitle.Layout{Position: "bottom", FontSize: 50, Color: "white", Margin: 50}},
	}}

	graph := e.buildFilterGraph(req, len(req.Frames))

	if !strings.Contains(graph, "concat=n=2:v=1:a=0[vcat]") {
		t.Errorf("concat must feed [vcat] when overlays exist:\n%s", graph)
	}
	if !strings.Contains(graph, "[vcat]drawtext=") || !strings.Contains(graph, "[vout]") {
		t.Errorf("drawtext chain must bridge [vcat] to [vout]:\n%s", graph)
	}
}

func TestBuildAudioChainEffects(t *testing.T) {
	e := NewFFmpegEncoder(zerolog.Nop())
	req := testRequest()
	req.Params.Volume = 0.8
	req.Params.FadeIn = 1.0
	req.Params.FadeOut = 2.0

	chain := e.buildAudioChain(req, 2)

	for _, want := range []string{
		"volume=0.800000",
		"afade=t=in:st=0:d=1.000000",
		"afade=t=out:st=6.000000:d=2.000000",
	} {
		if !strings.Contains(chain, want) {
			t.Errorf("audio chain missing %q:\n%s", want, chain)
		}
	}
}

func TestEncodeRejectsEmptyFrames(t *testing.T) {
	e := NewFFmpegEncoder(zerolog.Nop())
	req := testRequest()
	req.Frames = nil

	err := e.Encode(context.Background(), req)
	if _, ok := err.(*EncodeError); !ok {
		t.Fatalf("expected EncodeError, got %v", err)
	}
}
