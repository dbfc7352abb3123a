package config

import "fmt"

// InvalidParameterError сигнализирует о недопустимом значении настройки.
// Валидация выполняется до начала обработки: с такой ошибкой запуск
// не стартует вовсе.
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("недопустимый параметр %s: %s", e.Param, e.Reason)
}

var validSyncModes = map[string]bool{
	"loop_audio": true,
	"cut_video":  true,
	"cut_audio":  true,
}

var validPositions = map[string]bool{
	"bottom":       true,
	"top":          true,
	"center":       true,
	"left-bottom":  true,
	"right-bottom": true,
}

// Validate проверяет конфигурацию перед запуском.
// Возвращает первую найденную ошибку.
func (c *Config) Validate() error {
	if c.FPS < 1 || c.FPS > 120 {
		return &InvalidParameterError{Param: "fps", Reason: fmt.Sprintf("должен быть от 1 до 120, получено %d", c.FPS)}
	}
	if c.Width <= 0 || c.Height <= 0 {
		return &InvalidParameterError{Param: "resolution", Reason: fmt.Sprintf("ширина и высота должны быть положительными, получено %dx%d", c.Width, c.Height)}
	}
	if c.ImageDuration <= 0 {
		return &InvalidParameterError{Param: "image_duration", Reason: "длительность показа должна быть положительной"}
	}
	if c.ZoomFactor < 1.0 {
		return &InvalidParameterError{Param: "zoom_factor", Reason: fmt.Sprintf("должен быть >= 1.0, получено %g", c.ZoomFactor)}
	}
	if !validSyncModes[c.AudioSyncMode] {
		return &InvalidParameterError{Param: "audio_sync_mode", Reason: fmt.Sprintf("ожидается loop_audio, cut_video или cut_audio, получено %q", c.AudioSyncMode)}
	}
	if c.MaxAudioLoops < 1 {
		return &InvalidParameterError{Param: "max_audio_loops", Reason: "должно быть >= 1"}
	}
	if c.AudioVolume < 0 {
		return &InvalidParameterError{Param: "audio_volume", Reason: "громкость не может быть отрицательной"}
	}
	if c.SubtitleFontSize <= 0 {
		return &InvalidParameterError{Param: "subtitle_fontsize", Reason: "размер шрифта должен быть положительным"}
	}
	if c.SubtitleMargin < 0 {
		return &InvalidParameterError{Param: "subtitle_margin", Reason: "отступ не может быть отрицательным"}
	}
	if !validPositions[c.SubtitlePosition] {
		return &InvalidParameterError{Param: "subtitle_position", Reason: fmt.Sprintf("неизвестная позиция %q", c.SubtitlePosition)}
	}
	if c.Workers < 0 {
		return &InvalidParameterError{Param: "workers", Reason: "число потоков не может быть отрицательным"}
	}
	return nil
}
