package subtitle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSRT(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "subs.srt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseSRT(t *testing.T) {
	path := writeSRT(t, `1
00:00:01,000 --> 00:00:03,500
Первая реплика

2
00:00:04,000 --> 00:00:06,000
Вторая реплика
на двух строках
`)

	cues, err := ParseSRT(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}

	if cues[0].Start != 1.0 || cues[0].End != 3.5 {
		t.Errorf("cue 1 timing: %g-%g", cues[0].Start, cues[0].End)
	}
	if cues[1].Text != "Вторая реплика\nна двух строках" {
		t.Errorf("cue 2 text: %q", cues[1].Text)
	}
}

func TestParseSRTSkipsMalformedBlocks(t *testing.T) {
	path := writeSRT(t, `1
00:00:01,000 --> 00:00:02,000
Годная реплика

2
this is not a timing line
Мусор

3
00:00:05,000 --> 00:00:04,000
Интервал задом наперед

4
00:00:06,000 --> 00:00:07,000

5
00:00:08.000 --> 00:00:09.250
Точки вместо запятых
`)

	cues, err := ParseSRT(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 surviving cues, got %d: %+v", len(cues), cues)
	}
	if cues[1].Start != 8.0 || cues[1].End != 9.25 {
		t.Errorf("period timestamps not tolerated: %g-%g", cues[1].Start, cues[1].End)
	}
}

func TestParseSRTStripsBOM(t *testing.T) {
	path := writeSRT(t, "\uFEFF1\n00:00:01,000 --> 00:00:02,000\nПосле BOM\n")

	cues, err := ParseSRT(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(cues))
	}
	if cues[0].Index != 1 || cues[0].Text != "После BOM" {
		t.Errorf("BOM leaked into the first block: %+v", cues[0])
	}
}

func TestParseSRTMissingFile(t *testing.T) {
	if _, err := ParseSRT(filepath.Join(t.TempDir(), "nope.srt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestBuildOverlaysClipsAndDrops(t *testing.T) {
	cues := []Cue{
		{Index: 1, Start: 1.0, End: 3.0, Text: "inside"},
		{Index: 2, Start: 9.5, End: 11.0, Text: "straddles the end"},
		{Index: 3, Start: 10.5, End: 12.0, Text: "beyond"},
	}

	set := BuildOverlays(cues, 10.0, Layout{Position: "bottom", FontSize: 50, Color: "white", Margin: 50})

	if len(set.Overlays) != 2 {
		t.Fatalf("expected 2 overlays, got %d", len(set.Overlays))
	}
	if set.Overlays[0].Cue.End != 3.0 {
		t.Errorf("cue 1 must be untouched, end=%g", set.Overlays[0].Cue.End)
	}
	if set.Overlays[1].Cue.End != 10.0 {
		t.Errorf("straddling cue must be clipped to 10.0, got %g", set.Overlays[1].Cue.End)
	}
	if len(set.Notes) != 1 || !strings.Contains(set.Notes[0], "dropped") {
		t.Errorf("expected a drop note, got %v", set.Notes)
	}
}

func TestDrawtextFilter(t *testing.T) {
	o := Overlay{
		Cue: Cue{Start: 1.0, End: 3.5, Text: "100% жара: 'да'"},
		Layout: Layout{
			Position:    "bottom",
			FontSize:    50,
			Color:       "white",
			StrokeColor: "black",
			StrokeWidth: 2,
			Margin:      50,
			Font:        "Arial",
		},
	}

	filter := o.DrawtextFilter()

	for _, want := range []string{
		"drawtext=",
		`text='100\% жара\: '\''да'\'''`,
		"fontsize=50",
		"fontcolor=white",
		"y=h-text_h-50",
		"enable='between(t,1.000,3.500)'",
		"borderw=2",
		"bordercolor=black",
	} {
		if !strings.Contains(filter, want) {
			t.Errorf("filter missing %q:\n%s", want, filter)
		}
	}
}

func TestDrawtextFilterQuoteStaysClosed(t *testing.T) {
	o := Overlay{
		Cue:    Cue{Start: 1.0, End: 2.0, Text: "it's fine"},
		Layout: Layout{Position: "bottom", FontSize: 50, Color: "white", Margin: 50},
	}

	filter := o.DrawtextFilter()

	// Внутри '...' парсер графа ничего не экранирует: одиночная кавычка
	// должна закрыть сегмент и открыть новый, иначе остаток текста утекает
	// в разбор графа и валит весь прогон.
	if !strings.Contains(filter, `text='it'\''s fine'`) {
		t.Errorf("quote not re-opened ffmpeg-style:\n%s", filter)
	}
	if !strings.Contains(filter, "enable='between(t,1.000,2.000)'") {
		t.Errorf("enable clause mangled:\n%s", filter)
	}
}

func TestPositionExpr(t *testing.T) {
	cases := map[string][2]string{
		"bottom":       {"(w-text_w)/2", "h-text_h-30"},
		"top":          {"(w-text_w)/2", "30"},
		"center":       {"(w-text_w)/2", "(h-text_h)/2"},
		"left-bottom":  {"30", "h-text_h-30"},
		"right-bottom": {"w-text_w-30", "h-text_h-30"},
	}

	for pos, want := range cases {
		x, y := Layout{Position: pos, Margin: 30}.positionExpr()
		if x != want[0] || y != want[1] {
			t.Errorf("%s: got (%s, %s), want (%s, %s)", pos, x, y, want[0], want[1])
		}
	}
}
