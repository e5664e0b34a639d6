package transcript

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseJSON(t *testing.T) {
	data := []byte(`[
		{"id":"a","text":"Hello","start":1.2,"end":3.4},
		{"id":"b","text":"世界","start":3.4,"end":5.0,"speaker":"S1"}
	]`)
	entries, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Start != 1.2 || entries[0].End != 3.4 {
		t.Errorf("bounds = (%v, %v)", entries[0].Start, entries[0].End)
	}
	if entries[1].Speaker != "S1" {
		t.Errorf("speaker = %q, want S1", entries[1].Speaker)
	}
}

func TestParseJSONRejectsGarbage(t *testing.T) {
	if _, err := ParseJSON([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed json")
	}
}

const srtSample = `1
00:00:01,200 --> 00:00:03,400
Hello there

2
00:00:03,400 --> 00:00:07,000
General Kenobi
across two lines

not-a-cue-block

3
00:01:00,000 --> 00:01:02,500
Final line
`

func TestParseSRT(t *testing.T) {
	entries, err := ParseSRT(srtSample)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(entries))
	}
	if entries[0].Start != 1200 || entries[0].End != 3400 {
		t.Errorf("first cue bounds = (%v, %v), want (1200, 3400)", entries[0].Start, entries[0].End)
	}
	if entries[1].Text != "General Kenobi across two lines" {
		t.Errorf("multi-line text = %q", entries[1].Text)
	}
	if entries[2].Start != 60000 {
		t.Errorf("minute timestamp = %v, want 60000", entries[2].Start)
	}
}

func TestParseSRTNoCues(t *testing.T) {
	if _, err := ParseSRT("just some prose\nwithout timings"); err == nil {
		t.Fatal("expected error for a file with no cues")
	}
}

func TestLoadFileDispatch(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "t.json")
	if err := os.WriteFile(jsonPath, []byte(`[{"text":"hi","start":0,"end":1.5}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	entries, err := LoadFile(jsonPath)
	if err != nil || len(entries) != 1 {
		t.Fatalf("json load: entries=%d err=%v", len(entries), err)
	}

	srtPath := filepath.Join(dir, "t.srt")
	if err := os.WriteFile(srtPath, []byte("1\n00:00:00,000 --> 00:00:02,000\nhi\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	entries, err = LoadFile(srtPath)
	if err != nil || len(entries) != 1 {
		t.Fatalf("srt load: entries=%d err=%v", len(entries), err)
	}

	if entries, err := LoadFile(""); err != nil || entries != nil {
		t.Fatalf("empty path should be the no-transcript case, got entries=%v err=%v", entries, err)
	}
}
