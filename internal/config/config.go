package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config собирает все настройки одного запуска композиции.
// YAML-файл перекрывает только заданные в нём поля поверх Default().
type Config struct {
	// Видео
	FPS           int     `yaml:"fps"`
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	ImageDuration float64 `yaml:"image_duration"`

	// Эффекты
	ZoomEnabled         bool    `yaml:"zoom_enabled"`
	ZoomFactor          float64 `yaml:"zoom_factor"`
	RandomZoomDirection bool    `yaml:"random_zoom_direction"`
	SmoothTransitions   bool    `yaml:"smooth_transitions"`
	TransitionDuration  float64 `yaml:"transition_duration"`

	// Субтитры
	SubtitleFontSize    int    `yaml:"subtitle_fontsize"`
	SubtitleColor       string `yaml:"subtitle_color"`
	SubtitleStrokeColor string `yaml:"subtitle_stroke_color"`
	SubtitleStrokeWidth int    `yaml:"subtitle_stroke_width"`
	SubtitlePosition    string `yaml:"subtitle_position"`
	SubtitleMargin      int    `yaml:"subtitle_margin"`
	SubtitleFont        string `yaml:"subtitle_font"`

	// Аудио
	AudioSyncMode string  `yaml:"audio_sync_mode"`
	MaxAudioLoops int     `yaml:"max_audio_loops"`
	AudioVolume   float64 `yaml:"audio_volume"`
	AudioFadeIn   float64 `yaml:"audio_fadein"`
	AudioFadeOut  float64 `yaml:"audio_fadeout"`

	// Кодирование
	VideoCodec   string `yaml:"video_codec"`
	AudioCodec   string `yaml:"audio_codec"`
	VideoBitrate string `yaml:"video_bitrate"`
	AudioBitrate string `yaml:"audio_bitrate"`

	// Выполнение
	Workers int   `yaml:"workers"` // 0 = авто по числу ядер
	Seed    int64 `yaml:"seed"`    // 0 = от текущего времени
}

// Default возвращает конфигурацию стандартного профиля.
func Default() *Config {
	return &Config{
		FPS:           24,
		Width:         1024,
		Height:        768,
		ImageDuration: 4.0,

		ZoomEnabled:         true,
		ZoomFactor:          1.2,
		RandomZoomDirection: true,
		SmoothTransitions:   false,
		TransitionDuration:  0.5,

		SubtitleFontSize:    50,
		SubtitleColor:       "white",
		SubtitleStrokeColor: "black",
		SubtitleStrokeWidth: 2,
		SubtitlePosition:    "bottom",
		SubtitleMargin:      50,
		SubtitleFont:        "Arial",

		AudioSyncMode: "loop_audio",
		MaxAudioLoops: 3,
		AudioVolume:   1.0,
		AudioFadeIn:   0.5,
		AudioFadeOut:  1.0,

		VideoCodec:   "libx264",
		AudioCodec:   "aac",
		VideoBitrate: "2000k",
		AudioBitrate: "128k",
	}
}

// Preset возвращает именованный профиль поверх стандартного.
func Preset(name string) (*Config, error) {
	cfg := Default()
	switch name {
	case "", "default":
	case "fast":
		cfg.Width, cfg.Height = 854, 480
		cfg.ImageDuration = 3.0
		cfg.ZoomEnabled = false
		cfg.VideoBitrate = "1000k"
	case "high_quality":
		cfg.FPS = 30
		cfg.Width, cfg.Height = 1920, 1080
		cfg.ImageDuration = 5.0
		cfg.VideoBitrate = "4000k"
		cfg.AudioBitrate = "192k"
	case "social_media":
		cfg.FPS = 30
		cfg.Width, cfg.Height = 1080, 1080
		cfg.ImageDuration = 3.0
		cfg.SubtitleFontSize = 60
		cfg.SubtitlePosition = "center"
	default:
		return nil, &InvalidParameterError{Param: "preset", Reason: fmt.Sprintf("неизвестный профиль %q", name)}
	}
	return cfg, nil
}

// Load читает YAML-файл поверх стандартной конфигурации.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}
	return cfg, nil
}
