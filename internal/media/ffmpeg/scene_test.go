package ffmpeg

import (
	"testing"

	"shotsplit/internal/segmentation"
)

const showinfoSample = `
[Parsed_showinfo_1 @ 0x55e] n:   0 pts:  12800 pts_time:4.2667 duration:512 fmt:yuv420p
[Parsed_showinfo_1 @ 0x55e] n:   1 pts:  38400 pts_time:12.8   duration:512 fmt:yuv420p
frame=    2 fps=0.0 q=-0.0 size=N/A
[Parsed_showinfo_1 @ 0x55e] n:   2 pts:  64000 pts_time:21.3333 duration:512 fmt:yuv420p
`

func TestParseShowinfoTimestamps(t *testing.T) {
	got := ParseShowinfoTimestamps(showinfoSample)
	want := []int64{4267, 12800, 21333}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("timestamp %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestParseShowinfoTimestampsEmpty(t *testing.T) {
	if got := ParseShowinfoTimestamps("frame= 0 fps=0.0\n"); len(got) != 0 {
		t.Errorf("expected no timestamps, got %v", got)
	}
}

func TestBoundariesToIntervals(t *testing.T) {
	boundaries := []int64{4267, 12800, 21333}
	got := boundariesToIntervals(boundaries, 0, 30000, 1000)
	want := []segmentation.Interval{
		{StartMs: 0, EndMs: 4267},
		{StartMs: 4267, EndMs: 12800},
		{StartMs: 12800, EndMs: 21333},
		{StartMs: 21333, EndMs: 30000},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("interval %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBoundariesToIntervalsSuppressesShortScenes(t *testing.T) {
	// The 4467 boundary is only 200ms past the previous cut and is skipped.
	boundaries := []int64{4267, 4467, 12800}
	got := boundariesToIntervals(boundaries, 0, 30000, 1000)
	if len(got) != 3 {
		t.Fatalf("got %d intervals, want 3: %+v", len(got), got)
	}
	if got[1].EndMs != 12800 {
		t.Errorf("second interval end = %d, want 12800", got[1].EndMs)
	}
}

func TestBoundariesToIntervalsIgnoresOutOfRange(t *testing.T) {
	boundaries := []int64{1000, 25000}
	got := boundariesToIntervals(boundaries, 5000, 20000, 0)
	if len(got) != 1 {
		t.Fatalf("got %+v, want single whole-range interval", got)
	}
	if got[0].StartMs != 5000 || got[0].EndMs != 20000 {
		t.Errorf("interval = %+v", got[0])
	}
}

func TestCropFilter(t *testing.T) {
	if _, ok := cropFilter("4:3"); ok {
		t.Error("unexpected crop filter for unsupported aspect")
	}
	if filter, ok := cropFilter("9:16"); !ok || filter == "" {
		t.Error("expected a crop filter for 9:16")
	}
	if filter, ok := cropFilter("16:9"); !ok || filter == "" {
		t.Error("expected a crop filter for 16:9")
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0.000"},
		{1234, "1.234"},
		{60000, "60.000"},
	}
	for _, tt := range tests {
		if got := formatSeconds(tt.ms); got != tt.want {
			t.Errorf("formatSeconds(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}
