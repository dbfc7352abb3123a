package video

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// FFmpegEncoder кодирует итоговое видео одним вызовом ffmpeg:
// каждый кадр — отдельный вход, вся сборка (zoompan, concat, аудио,
// drawtext) — в одном filter_complex.
type FFmpegEncoder struct {
	Binary string
	Log    zerolog.Logger
}

func NewFFmpegEncoder(log zerolog.Logger) *FFmpegEncoder {
	return &FFmpegEncoder{Binary: "ffmpeg", Log: log}
}

func (e *FFmpegEncoder) Encode(ctx context.Context, req Request) error {
	if len(req.Frames) == 0 {
		return &EncodeError{Output: req.OutputPath, Err: errors.New("пустой список кадров")}
	}

	if dir := filepath.Dir(req.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &EncodeError{Output: req.OutputPath, Err: err}
		}
	}

	args := e.buildArgs(req)
	e.Log.Debug().Strs("args", args).Msg("запуск ffmpeg")

	cmd := exec.CommandContext(ctx, e.binary(), args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return &EncodeError{Output: req.OutputPath, Log: tail(out.String(), 4000), Err: err}
	}
	return nil
}

func (e *FFmpegEncoder) binary() string {
	if e.Binary == "" {
		return "ffmpeg"
	}
	return e.Binary
}

func (e *FFmpegEncoder) buildArgs(req Request) []string {
	args := []string{"-y"}

	// Видеовходы. Сегмент с zoompan получает один исходный кадр —
	// фильтр сам размножит его до нужного числа кадров. Статичный
	// сегмент зацикливается демиксером на свою длительность.
	for _, f := range req.Frames {
		if f.ZoomFilter == "" {
			args = append(args, "-loop", "1", "-t", fmt.Sprintf("%f", f.Duration))
		}
		args = append(args, "-i", f.Path)
	}

	audioIndex := len(req.Frames)
	if req.Audio.Loops > 1 {
		args = append(args, "-stream_loop", fmt.Sprintf("%d", req.Audio.Loops-1))
	}
	args = append(args, "-i", req.Audio.Track.Path)

	args = append(args, "-filter_complex", e.buildFilterGraph(req, audioIndex))
	args = append(args, "-map", "[vout]", "-map", "[aout]")

	args = append(args,
		"-t", fmt.Sprintf("%f", req.Duration),
		"-r", fmt.Sprintf("%d", req.Params.FPS),
		"-c:v", req.Params.VideoCodec,
		"-b:v", req.Params.VideoBitrate,
		"-pix_fmt", "yuv420p",
		"-c:a", req.Params.AudioCodec,
		"-b:a", req.Params.AudioBitrate,
	)

	args = append(args, req.OutputPath)
	return args
}

func (e *FFmpegEncoder) buildFilterGraph(req Request, audioIndex int) string {
	w, h := req.Params.Width, req.Params.Height
	var graph []string

	// Каждый вход приводится к размеру холста. Кадры уже нормализованы,
	// но деградированные (пропущенные без масштабирования) выравниваются
	// именно здесь. Для zoompan масштабируем с двукратным запасом, чтобы
	// убрать дрожание субпиксельного панорамирования.
	for i, f := range req.Frames {
		var chain []string
		if f.ZoomFilter != "" {
			chain = append(chain,
				fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", w*2, h*2),
				fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=black", w*2, h*2),
				"setsar=1",
				f.ZoomFilter,
				"setsar=1",
			)
		} else {
			chain = append(chain,
				fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", w, h),
				fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=black", w, h),
				"setsar=1",
				fmt.Sprintf("fps=%d", req.Params.FPS),
			)
		}
		graph = append(graph, fmt.Sprintf("[%d:v]%s[v%d]", i, strings.Join(chain, ","), i))
	}

	var concatInputs strings.Builder
	for i := range req.Frames {
		fmt.Fprintf(&concatInputs, "[v%d]", i)
	}
	videoOut := "[vout]"
	if len(req.Overlays.Overlays) > 0 {
		videoOut = "[vcat]"
	}
	graph = append(graph, fmt.Sprintf("%sconcat=n=%d:v=1:a=0%s", concatInputs.String(), len(req.Frames), videoOut))

	// Субтитры — цепочка drawtext поверх склеенного видеоряда.
	if len(req.Overlays.Overlays) > 0 {
		var texts []string
		for _, o := range req.Overlays.Overlays {
			texts = append(texts, o.DrawtextFilter())
		}
		graph = append(graph, fmt.Sprintf("[vcat]%s[vout]", strings.Join(texts, ",")))
	}

	graph = append(graph, e.buildAudioChain(req, audioIndex))
	return strings.Join(graph, ";")
}

func (e *FFmpegEncoder) buildAudioChain(req Request, audioIndex int) string {
	chain := []string{
		fmt.Sprintf("atrim=0:%f", req.Audio.Duration),
		"asetpts=PTS-STARTPTS",
	}

	if req.Params.Volume > 0 && req.Params.Volume != 1.0 {
		chain = append(chain, fmt.Sprintf("volume=%f", req.Params.Volume))
	}
	if req.Params.FadeIn > 0 && req.Params.FadeIn < req.Audio.Duration {
		chain = append(chain, fmt.Sprintf("afade=t=in:st=0:d=%f", req.Params.FadeIn))
	}
	if req.Params.FadeOut > 0 && req.Params.FadeOut < req.Audio.Duration {
		chain = append(chain, fmt.Sprintf("afade=t=out:st=%f:d=%f", req.Audio.Duration-req.Params.FadeOut, req.Params.FadeOut))
	}

	return fmt.Sprintf("[%d:a]%s[aout]", audioIndex, strings.Join(chain, ","))
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
