package subtitle

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Cue is one subtitle entry: a half-open time interval plus text, in
// seconds relative to timeline start.
type Cue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// ParseSRT reads an SRT file (UTF-8). Malformed blocks are skipped, not
// fatal: the composition proceeds with whatever cues survive.
func ParseSRT(path string) ([]Cue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}

	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	content = strings.TrimPrefix(content, "\uFEFF")

	var cues []Cue
	for _, block := range strings.Split(strings.TrimSpace(content), "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}

		// First line is the sequence number; tolerate its absence.
		timingIdx := 0
		index := len(cues) + 1
		if n, err := strconv.Atoi(strings.TrimSpace(lines[0])); err == nil {
			index = n
			timingIdx = 1
		}
		if timingIdx >= len(lines) || !strings.Contains(lines[timingIdx], "-->") {
			continue
		}

		parts := strings.SplitN(lines[timingIdx], "-->", 2)
		start, errStart := parseTimestamp(parts[0])
		end, errEnd := parseTimestamp(parts[1])
		if errStart != nil || errEnd != nil || end <= start || start < 0 {
			continue
		}

		text := strings.TrimSpace(strings.Join(lines[timingIdx+1:], "\n"))
		if text == "" {
			continue
		}

		cues = append(cues, Cue{Index: index, Start: start, End: end, Text: text})
	}

	return cues, nil
}

// parseTimestamp converts "HH:MM:SS,mmm" to seconds. A period instead of
// the standard comma is accepted.
func parseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	value = strings.ReplaceAll(value, ".", ",")

	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}

	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}

	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}
