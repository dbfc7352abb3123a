package system

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWorkerCountConfigured(t *testing.T) {
	if got := WorkerCount(3); got != 3 {
		t.Errorf("WorkerCount(3) = %d", got)
	}
}

func TestWorkerCountAuto(t *testing.T) {
	if got := WorkerCount(0); got < 1 {
		t.Errorf("auto worker count must be at least 1, got %d", got)
	}
}

func TestFindLatestAudio(t *testing.T) {
	dir := t.TempDir()

	old := filepath.Join(dir, "old.mp3")
	fresh := filepath.Join(dir, "fresh.wav")
	os.WriteFile(old, []byte("x"), 0644)
	os.WriteFile(fresh, []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0644)

	// Разносим mtime явно, чтобы не зависеть от разрешения ФС.
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	got, err := FindLatestAudio(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != fresh {
		t.Errorf("got %s, want %s", got, fresh)
	}
}

func TestFindLatestAudioEmpty(t *testing.T) {
	if _, err := FindLatestAudio(t.TempDir()); err == nil {
		t.Fatal("expected error for empty dir")
	}
}

func TestFindLatestSubtitles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lecture.srt")
	os.WriteFile(path, []byte("1\n00:00:00,000 --> 00:00:01,000\nhi\n"), 0644)
	os.WriteFile(filepath.Join(dir, "lecture.vtt"), []byte("x"), 0644)

	got, err := FindLatestSubtitles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != path {
		t.Errorf("got %s, want %s", got, path)
	}
}
