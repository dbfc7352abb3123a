package system

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
)

// InitResourceLimits поднимает лимит открытых файлов (macOS/Linux):
// параллельная нормализация держит много кадров одновременно.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Debug().Err(err).Msg("не удалось получить лимит файлов")
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Debug().Err(err).Msg("не удалось установить лимит файлов")
	}
}

// CheckFFmpeg проверяет наличие ffmpeg и ffprobe в PATH.
func CheckFFmpeg() error {
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("%s не найден в PATH: %w", bin, err)
		}
	}
	return nil
}

// WorkerCount возвращает размер пула для параллельной обработки кадров.
// configured > 0 задаёт размер явно; иначе берём число физических ядер.
func WorkerCount(configured int) int {
	if configured > 0 {
		return configured
	}
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// BestH264Encoder выбирает аппаратный H.264-энкодер, если ffmpeg его
// поддерживает. Порядок: VideoToolbox (macOS), NVENC, затем libx264.
func BestH264Encoder() string {
	cmd := exec.Command("ffmpeg", "-hide_banner", "-encoders")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "libx264"
	}

	for _, enc := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), enc) {
			return enc
		}
	}
	return "libx264"
}

func findLatest(dir string, extensions []string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := strings.ToLower(f.Name())
		matched := false
		for _, ext := range extensions {
			if strings.HasSuffix(name, ext) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено подходящих файлов", dir)
	}
	return latestFile, nil
}

// FindLatestAudio возвращает самый свежий аудиофайл в папке.
func FindLatestAudio(dir string) (string, error) {
	return findLatest(dir, []string{".mp3", ".wav", ".m4a", ".ogg", ".aac", ".flac"})
}

// FindLatestSubtitles возвращает самый свежий файл субтитров в папке.
func FindLatestSubtitles(dir string) (string, error) {
	return findLatest(dir, []string{".srt"})
}
