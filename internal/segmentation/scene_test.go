package segmentation

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

type stubDetector struct {
	intervals []Interval
	err       error
	calls     int
}

func (s *stubDetector) Detect(ctx context.Context, media MediaHandle, threshold float64, minSceneLenMs int64, r *SourceRange) ([]Interval, error) {
	s.calls++
	return s.intervals, s.err
}

// scriptedFrames returns a flat luma frame per sample, switching brightness at
// the configured timestamps so the sampler sees a histogram jump.
type scriptedFrames struct {
	switchAtMs []int64
	err        error
}

func (s *scriptedFrames) SampleLuma(ctx context.Context, media MediaHandle, timestampMs int64) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	shade := byte(10)
	for _, at := range s.switchAtMs {
		if timestampMs >= at {
			shade += 120
		}
	}
	return bytes.Repeat([]byte{shade}, 1024), nil
}

func sceneRequest() Request {
	return Request{
		AssetID:  "asset",
		Strategy: StrategyScene,
		Scene:    DefaultSceneTunables(),
	}
}

func TestSceneStrategyUsesDetectorIntervals(t *testing.T) {
	detector := &stubDetector{intervals: []Interval{
		{StartMs: 0, EndMs: 4000},
		{StartMs: 4000, EndMs: 9000},
		{StartMs: 9000, EndMs: 20000},
	}}
	strategy := NewSceneStrategy(detector, nil, nil)

	clips, err := strategy.Segment(context.Background(), sceneRequest(), MediaHandle{DurationMs: 20000}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clips) != 3 {
		t.Fatalf("expected 3 clips, got %d", len(clips))
	}
	if clips[0].TimelineStart != 0 {
		t.Errorf("first clip timeline start = %d, want 0", clips[0].TimelineStart)
	}
	for i := 1; i < len(clips); i++ {
		if clips[i-1].TimelineEnd != clips[i].TimelineStart {
			t.Errorf("clips %d/%d not contiguous", i-1, i)
		}
	}
}

func TestSceneStrategyAttachesTranscriptText(t *testing.T) {
	detector := &stubDetector{intervals: []Interval{
		{StartMs: 0, EndMs: 5000},
		{StartMs: 5000, EndMs: 10000},
	}}
	transcript := []TranscriptSegment{
		{Text: "first words", StartMs: 1000, EndMs: 4000},
		{Text: "second words", StartMs: 6000, EndMs: 9000},
	}
	strategy := NewSceneStrategy(detector, nil, nil)

	clips, err := strategy.Segment(context.Background(), sceneRequest(), MediaHandle{DurationMs: 10000}, transcript)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clips[0].Text != "first words" {
		t.Errorf("first clip text = %q", clips[0].Text)
	}
	if clips[1].Text != "second words" {
		t.Errorf("second clip text = %q", clips[1].Text)
	}
}

func TestSceneStrategyDetectorFailureFallsBackToSampler(t *testing.T) {
	detector := &stubDetector{err: errors.New("detector offline")}
	frames := &scriptedFrames{switchAtMs: []int64{10000}}
	strategy := NewSceneStrategy(detector, frames, nil)

	clips, err := strategy.Segment(context.Background(), sceneRequest(), MediaHandle{DurationMs: 20000}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clips) != 2 {
		t.Fatalf("expected sampler to cut once, got %d clips", len(clips))
	}
	if clips[0].SourceStart != 0 || clips[1].SourceEnd != 20000 {
		t.Errorf("clips do not cover range: %+v", clips)
	}
}

func TestSceneStrategySamplerRefractoryGap(t *testing.T) {
	// Two scripted switches 1s apart: the second falls inside the 2000ms
	// refractory gap and must not produce a boundary.
	detector := &stubDetector{}
	frames := &scriptedFrames{switchAtMs: []int64{10000, 11000}}
	strategy := NewSceneStrategy(detector, frames, nil)

	clips, err := strategy.Segment(context.Background(), sceneRequest(), MediaHandle{DurationMs: 20000}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clips) != 2 {
		t.Fatalf("expected exactly one boundary, got %d clips", len(clips))
	}
}

func TestSceneStrategyEmptyDetectorAndQuietSamplerYieldWholeRange(t *testing.T) {
	detector := &stubDetector{intervals: nil}
	frames := &scriptedFrames{} // no switches, zero boundaries
	strategy := NewSceneStrategy(detector, frames, nil)

	clips, err := strategy.Segment(context.Background(), sceneRequest(), MediaHandle{DurationMs: 15000}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clips) != 1 {
		t.Fatalf("expected single whole-range clip, got %d", len(clips))
	}
	if clips[0].SourceStart != 0 || clips[0].SourceEnd != 15000 {
		t.Errorf("clip = [%d, %d), want [0, 15000)", clips[0].SourceStart, clips[0].SourceEnd)
	}
}

func TestSceneStrategySamplerFailurePropagates(t *testing.T) {
	detector := &stubDetector{err: errors.New("detector offline")}
	frames := &scriptedFrames{err: errors.New("decoder broken")}
	strategy := NewSceneStrategy(detector, frames, nil)

	_, err := strategy.Segment(context.Background(), sceneRequest(), MediaHandle{DurationMs: 20000}, nil)
	if !errors.Is(err, ErrStrategyExecution) {
		t.Fatalf("expected ErrStrategyExecution from the fallback path, got %v", err)
	}
}

func TestSceneStrategyClampsToRecursiveRange(t *testing.T) {
	detector := &stubDetector{intervals: []Interval{
		{StartMs: 0, EndMs: 6000},     // straddles range start
		{StartMs: 6000, EndMs: 9000},  // inside
		{StartMs: 9000, EndMs: 30000}, // straddles range end
	}}
	req := sceneRequest()
	req.Range = &SourceRange{StartMs: 5000, EndMs: 12000}
	req.ParentClipID = "parent-9"
	strategy := NewSceneStrategy(detector, nil, nil)

	clips, err := strategy.Segment(context.Background(), req, MediaHandle{DurationMs: 30000}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clips) == 0 {
		t.Fatal("expected clips")
	}
	for _, clip := range clips {
		if clip.SourceStart < 5000 || clip.SourceEnd > 12000 {
			t.Errorf("clip [%d, %d) escapes range [5000, 12000)", clip.SourceStart, clip.SourceEnd)
		}
		if clip.ParentClipID != "parent-9" {
			t.Errorf("clip parent = %q, want parent-9", clip.ParentClipID)
		}
	}
}

func TestHistogramDivergence(t *testing.T) {
	flatDark := lumaHistogram(bytes.Repeat([]byte{10}, 256))
	flatBright := lumaHistogram(bytes.Repeat([]byte{240}, 256))
	if got := histogramDivergence(flatDark, flatDark); got != 0 {
		t.Errorf("identical frames divergence = %v, want 0", got)
	}
	if got := histogramDivergence(flatDark, flatBright); got != 1 {
		t.Errorf("disjoint frames divergence = %v, want 1", got)
	}
}
