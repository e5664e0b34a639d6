package segmentation

import (
	"context"
	"log/slog"
	"strings"

	"shotsplit/internal/logging"
)

// Interval is one detected scene span within the source, [StartMs, EndMs).
type Interval struct {
	StartMs int64
	EndMs   int64
}

// Detector is the external frame-diff scene detection capability. A nil range
// pointer means "whole asset". Implementations may be unavailable; the scene
// strategy then degrades to its internal sampler.
type Detector interface {
	Detect(ctx context.Context, media MediaHandle, threshold float64, minSceneLenMs int64, r *SourceRange) ([]Interval, error)
}

// FrameSource supplies grayscale frame data for the fallback sampler. The
// returned byte slice holds one luma value per pixel of a small uniformly
// scaled frame.
type FrameSource interface {
	SampleLuma(ctx context.Context, media MediaHandle, timestampMs int64) ([]byte, error)
}

// SceneStrategy proposes clips at visual scene changes. It prefers the
// injected detector and falls back to sampling frames itself when the detector
// is absent, fails, or returns nothing usable.
type SceneStrategy struct {
	detector Detector
	frames   FrameSource
	logger   *slog.Logger
}

// NewSceneStrategy constructs the scene-change strategy. Both collaborators
// may be nil.
func NewSceneStrategy(detector Detector, frames FrameSource, logger *slog.Logger) *SceneStrategy {
	return &SceneStrategy{
		detector: detector,
		frames:   frames,
		logger:   logging.NewComponentLogger(logger, "scene-strategy"),
	}
}

func (s *SceneStrategy) Key() StrategyKey { return StrategyScene }

func (s *SceneStrategy) RequiresTranscript() bool { return false }

// Segment detects scene intervals within the requested range and maps each to
// a clip, attaching overlapping transcript text when a transcript is present.
func (s *SceneStrategy) Segment(ctx context.Context, req Request, media MediaHandle, transcript []TranscriptSegment) ([]Clip, error) {
	rangeStart, rangeEnd := resolveRange(req, media)
	if rangeEnd <= rangeStart {
		return nil, nil
	}
	tunables := req.Scene
	if tunables.Threshold <= 0 {
		tunables.Threshold = DefaultSceneTunables().Threshold
	}
	if tunables.SamplerRateHz <= 0 {
		tunables.SamplerRateHz = DefaultSceneTunables().SamplerRateHz
	}
	if tunables.SamplerDiverge <= 0 {
		tunables.SamplerDiverge = DefaultSceneTunables().SamplerDiverge
	}
	if tunables.SamplerMinGapMs <= 0 {
		tunables.SamplerMinGapMs = DefaultSceneTunables().SamplerMinGapMs
	}

	intervals := s.detectIntervals(ctx, media, tunables, req.Range)
	if len(intervals) < 2 {
		sampled, err := s.sampleIntervals(ctx, media, tunables, rangeStart, rangeEnd)
		if err != nil {
			return nil, err
		}
		intervals = sampled
	}
	intervals = clampIntervals(intervals, rangeStart, rangeEnd)
	if len(intervals) < 2 {
		intervals = []Interval{{StartMs: rangeStart, EndMs: rangeEnd}}
	}

	clips := make([]Clip, 0, len(intervals))
	for _, iv := range intervals {
		clip := NewClip(req.AssetID, iv.StartMs, iv.EndMs, StrategyScene, req.ParentClipID)
		clip.Text = overlappingText(transcript, iv.StartMs, iv.EndMs)
		clips = append(clips, clip)
	}
	return ValidateAndReflow(clips, tunables.MinSceneLenMs), nil
}

// detectIntervals runs the external detector; any failure is logged and
// swallowed so the sampler can take over.
func (s *SceneStrategy) detectIntervals(ctx context.Context, media MediaHandle, tunables SceneTunables, r *SourceRange) []Interval {
	if s.detector == nil {
		return nil
	}
	intervals, err := s.detector.Detect(ctx, media, tunables.Threshold, tunables.MinSceneLenMs, r)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		s.logger.Warn("scene detector failed, using internal sampler", logging.Error(err), logging.String("asset_id", media.AssetID))
		return nil
	}
	return intervals
}

// sampleIntervals is the internal fallback: sample frames at a fixed rate and
// cut wherever histogram divergence exceeds the threshold, subject to a
// refractory gap that prevents boundary flooding on noisy footage. A frame
// source failure here is a failure of the fallback path itself and propagates.
func (s *SceneStrategy) sampleIntervals(ctx context.Context, media MediaHandle, tunables SceneTunables, rangeStart, rangeEnd int64) ([]Interval, error) {
	if s.frames == nil {
		return nil, nil
	}
	stepMs := int64(1000 / tunables.SamplerRateHz)
	if stepMs <= 0 {
		stepMs = 500
	}

	boundaries := make([]int64, 0, 8)
	var prev []float64
	lastBoundary := rangeStart
	for ts := rangeStart; ts < rangeEnd; ts += stepMs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		luma, err := s.frames.SampleLuma(ctx, media, ts)
		if err != nil {
			return nil, Wrap(ErrStrategyExecution, StrategyScene, "fallback sampler", "sample frame", err)
		}
		hist := lumaHistogram(luma)
		if prev != nil {
			divergence := histogramDivergence(prev, hist)
			if divergence > tunables.SamplerDiverge && ts-lastBoundary >= tunables.SamplerMinGapMs {
				boundaries = append(boundaries, ts)
				lastBoundary = ts
			}
		}
		prev = hist
	}
	if len(boundaries) == 0 {
		return nil, nil
	}

	intervals := make([]Interval, 0, len(boundaries)+1)
	cursor := rangeStart
	for _, b := range boundaries {
		intervals = append(intervals, Interval{StartMs: cursor, EndMs: b})
		cursor = b
	}
	intervals = append(intervals, Interval{StartMs: cursor, EndMs: rangeEnd})
	return intervals, nil
}

const lumaBins = 32

// lumaHistogram buckets grayscale pixel values into a normalized histogram.
func lumaHistogram(luma []byte) []float64 {
	hist := make([]float64, lumaBins)
	if len(luma) == 0 {
		return hist
	}
	for _, v := range luma {
		hist[int(v)*lumaBins/256]++
	}
	total := float64(len(luma))
	for i := range hist {
		hist[i] /= total
	}
	return hist
}

// histogramDivergence is half the L1 distance between two normalized
// histograms, ranging from 0 (identical) to 1 (disjoint).
func histogramDivergence(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum / 2
}

func clampIntervals(intervals []Interval, rangeStart, rangeEnd int64) []Interval {
	clamped := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.EndMs <= rangeStart || iv.StartMs >= rangeEnd {
			continue
		}
		if iv.StartMs < rangeStart {
			iv.StartMs = rangeStart
		}
		if iv.EndMs > rangeEnd {
			iv.EndMs = rangeEnd
		}
		if iv.EndMs > iv.StartMs {
			clamped = append(clamped, iv)
		}
	}
	return clamped
}

// overlappingText concatenates transcript text overlapping [startMs, endMs).
func overlappingText(transcript []TranscriptSegment, startMs, endMs int64) string {
	if len(transcript) == 0 {
		return ""
	}
	parts := make([]string, 0, 4)
	for _, seg := range transcript {
		if seg.EndMs <= startMs || seg.StartMs >= endMs {
			continue
		}
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, " ")
}
