package video

import (
	"context"
	"fmt"

	"github.com/ivlev/slidecast/internal/audiosync"
	"github.com/ivlev/slidecast/internal/subtitle"
)

// FrameInput — один подготовленный кадр для энкодера: PNG из scratch-папки,
// длительность показа и (опционально) готовый zoompan-фильтр сегмента.
type FrameInput struct {
	Path       string
	Duration   float64
	ZoomFilter string
}

// Params — параметры кодирования, передаются в ffmpeg как есть.
type Params struct {
	Width        int
	Height       int
	FPS          int
	VideoCodec   string
	AudioCodec   string
	VideoBitrate string
	AudioBitrate string
	Volume       float64
	FadeIn       float64
	FadeOut      float64
}

// Request — единственный запрос на кодирование за весь запуск: собранная
// видеопоследовательность, выверенный аудиоспан и набор субтитров.
type Request struct {
	Frames     []FrameInput
	Audio      audiosync.Reconciled
	Overlays   subtitle.OverlaySet
	Duration   float64
	OutputPath string
	Params     Params
}

// Encoder — внешний коллаборатор кодирования. Для пайплайна он синхронный
// и непрозрачный: успех или EncodeError.
type Encoder interface {
	Encode(ctx context.Context, req Request) error
}

// EncodeError — фатальная ошибка внешнего энкодера.
type EncodeError struct {
	Output string
	Log    string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("кодирование %s: %v", e.Output, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
