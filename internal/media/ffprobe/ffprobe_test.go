package ffprobe

import "testing"

func TestDurationMsPrefersFormat(t *testing.T) {
	result := Result{
		Format:  Format{Duration: "12.345"},
		Streams: []Stream{{CodecType: "video", Duration: "11.0"}},
	}
	if got := result.DurationMs(); got != 12345 {
		t.Errorf("DurationMs() = %d, want 12345", got)
	}
}

func TestDurationMsFallsBackToLongestStream(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio", Duration: "10.5"},
			{CodecType: "video", Duration: "11.25"},
		},
	}
	if got := result.DurationMs(); got != 11250 {
		t.Errorf("DurationMs() = %d, want 11250", got)
	}
}

func TestDurationMsEmpty(t *testing.T) {
	if got := (Result{}).DurationMs(); got != 0 {
		t.Errorf("DurationMs() = %d, want 0", got)
	}
}

func TestHasVideo(t *testing.T) {
	withVideo := Result{Streams: []Stream{{CodecType: "audio"}, {CodecType: "Video"}}}
	if !withVideo.HasVideo() {
		t.Error("expected video stream to be detected case-insensitively")
	}
	audioOnly := Result{Streams: []Stream{{CodecType: "audio"}}}
	if audioOnly.HasVideo() {
		t.Error("audio-only container reported as video")
	}
}
