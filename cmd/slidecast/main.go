package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ivlev/slidecast/internal/composer"
	"github.com/ivlev/slidecast/internal/config"
	"github.com/ivlev/slidecast/internal/logging"
	"github.com/ivlev/slidecast/internal/source"
	"github.com/ivlev/slidecast/internal/system"
	"github.com/ivlev/slidecast/internal/video"
)

func main() {
	imagesPtr := flag.String("images", "input/images", "Папка с изображениями или PDF-файл")
	audioPtr := flag.String("audio", "", "Путь к аудио (по умолчанию: самый свежий файл в input/audio/)")
	subtitlesPtr := flag.String("subtitles", "", "Путь к субтитрам .srt (по умолчанию: самый свежий в input/subtitles/, 'none' — без субтитров)")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	configPtr := flag.String("config", "", "YAML-файл конфигурации")
	presetPtr := flag.String("preset", "", "Профиль: default, fast, high_quality, social_media")
	widthPtr := flag.Int("width", 0, "Ширина (перекрывает конфигурацию)")
	heightPtr := flag.Int("height", 0, "Высота (перекрывает конфигурацию)")
	fpsPtr := flag.Int("fps", 0, "FPS (перекрывает конфигурацию)")
	durationPtr := flag.Float64("image-duration", 0, "Длительность показа одного изображения в секундах")
	seedPtr := flag.Int64("seed", 0, "Seed генератора направлений зума (0 — от времени)")
	workersPtr := flag.Int("workers", 0, "Потоки обработки изображений (0 — авто)")
	dpiPtr := flag.Float64("dpi", 150, "DPI растеризации PDF")
	qrPtr := flag.String("qr", "", "URL для QR-кода финальным слайдом")
	verbosePtr := flag.Bool("verbose", false, "Подробные логи")

	flag.Parse()

	logging.Init(*verbosePtr)
	logger := logging.WithComponent("slidecast")

	system.InitResourceLimits()
	if err := system.CheckFFmpeg(); err != nil {
		fatalf("Ошибка: %v. Установите FFmpeg.", err)
	}

	// Создаем нужные директории, если их нет
	for _, d := range []string{"input/images", "input/audio", "input/subtitles", "output"} {
		os.MkdirAll(d, 0755)
	}

	cfg, err := loadConfig(*configPtr, *presetPtr)
	if err != nil {
		fatalf("Ошибка конфигурации: %v", err)
	}

	// Флаги перекрывают конфигурацию, только если заданы явно.
	if *widthPtr > 0 {
		cfg.Width = *widthPtr
	}
	if *heightPtr > 0 {
		cfg.Height = *heightPtr
	}
	if *fpsPtr > 0 {
		cfg.FPS = *fpsPtr
	}
	if *durationPtr > 0 {
		cfg.ImageDuration = *durationPtr
	}
	if *seedPtr != 0 {
		cfg.Seed = *seedPtr
	}
	if *workersPtr > 0 {
		cfg.Workers = *workersPtr
	}

	if cfg.VideoCodec == "libx264" {
		if enc := system.BestH264Encoder(); enc != "libx264" {
			fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", enc)
			cfg.VideoCodec = enc
		}
	}

	if err := cfg.Validate(); err != nil {
		fatalf("Ошибка конфигурации: %v", err)
	}

	src, err := openSource(*imagesPtr, *dpiPtr, *qrPtr)
	if err != nil {
		fatalf("Ошибка источника изображений: %v", err)
	}
	defer src.Close()
	fmt.Printf("[*] Источник: %s | Изображений: %d\n", *imagesPtr, src.Count())

	audioPath := *audioPtr
	if audioPath == "" {
		latest, err := system.FindLatestAudio("input/audio")
		if err != nil {
			fatalf("Ошибка: %v. Положите аудио в input/audio/ или укажите -audio.", err)
		}
		audioPath = latest
		fmt.Printf("[*] Выбрано аудио: %s\n", audioPath)
	}

	subtitlesPath := *subtitlesPtr
	switch subtitlesPath {
	case "none":
		subtitlesPath = ""
	case "":
		if latest, err := system.FindLatestSubtitles("input/subtitles"); err == nil {
			subtitlesPath = latest
			fmt.Printf("[*] Выбраны субтитры: %s\n", subtitlesPath)
		}
	}

	outputPath := *outputPtr
	if outputPath == "" {
		base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
		cleanName := strings.ReplaceAll(base, " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		outputPath = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
	}

	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS | Показ кадра: %.1fs\n", cfg.Width, cfg.Height, cfg.FPS, cfg.ImageDuration)

	// Прерывание по Ctrl+C: между этапами запуск останавливается чисто,
	// на этапе кодирования возможен недописанный файл.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	comp := composer.New(cfg, video.NewFFmpegEncoder(logger), logger)

	fmt.Println("[*] Сборка видео...")
	started := time.Now()
	res, err := comp.Run(ctx, composer.Request{
		Source:        src,
		AudioPath:     audioPath,
		SubtitlesPath: subtitlesPath,
		OutputPath:    outputPath,
	})

	for _, w := range res.Warnings {
		fmt.Printf("[!] %s: %s\n", w.Stage, w.Message)
	}
	if err != nil {
		fatalf("Ошибка композиции: %v", err)
	}

	fmt.Printf("[+++] Успех! Результат: %s (%.1f МБ, %.1fs) за %.1fs\n",
		res.OutputPath, float64(res.Size)/(1024*1024), res.Duration, time.Since(started).Seconds())
}

func loadConfig(path, preset string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.Preset(preset)
}

func openSource(path string, dpi float64, qrURL string) (source.Source, error) {
	var src source.Source
	var err error
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		src, err = source.NewPDFSource(path, dpi)
	} else {
		src, err = source.NewFolderSource(path)
	}
	if err != nil {
		return nil, err
	}
	if qrURL != "" {
		return source.WithQROutro(src, qrURL, 512)
	}
	return src, nil
}

func fatalf(format string, args ...any) {
	fmt.Printf("[-] "+format+"\n", args...)
	os.Exit(1)
}
