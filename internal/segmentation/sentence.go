package segmentation

import (
	"context"
	"log/slog"

	"shotsplit/internal/logging"
)

// SentenceStrategy maps transcript sentences 1:1 onto clips after merging
// segments that are too short to stand alone.
type SentenceStrategy struct {
	logger *slog.Logger
}

// NewSentenceStrategy constructs the transcript-sentence strategy.
func NewSentenceStrategy(logger *slog.Logger) *SentenceStrategy {
	return &SentenceStrategy{logger: logging.NewComponentLogger(logger, "sentence-strategy")}
}

func (s *SentenceStrategy) Key() StrategyKey { return StrategySentence }

func (s *SentenceStrategy) RequiresTranscript() bool { return true }

// Segment range-filters the transcript, merges short sentences, and emits one
// clip per merged segment.
func (s *SentenceStrategy) Segment(ctx context.Context, req Request, media MediaHandle, transcript []TranscriptSegment) ([]Clip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(transcript) == 0 {
		return nil, Wrap(ErrMissingTranscript, StrategySentence, "", "sentence strategy requires a transcript", nil)
	}
	segments := FilterByRange(transcript, req.Range)
	if len(segments) == 0 {
		return nil, nil
	}

	tunables := req.Sentence
	if tunables.MergeShort && tunables.MinDurationMs > 0 {
		segments = mergeShortSentences(segments, tunables.MinDurationMs, tunables.MaxDurationMs)
	}

	clips := make([]Clip, 0, len(segments))
	for _, seg := range segments {
		clip := NewClip(req.AssetID, seg.StartMs, seg.EndMs, StrategySentence, req.ParentClipID)
		clip.Text = seg.Text
		clips = append(clips, clip)
	}
	// The merge pass already enforced the real minimum; reflow only needs the
	// practical floor.
	return ValidateAndReflow(clips, reflowFloorMs), nil
}

// mergeShortSentences is a single left-to-right scan with one pending buffer
// segment. A segment shorter than minDuration extends the buffer when the
// merged result stays within maxDuration; the same rule rescues a still-short
// buffer before it is flushed. Every emitted segment therefore either meets
// minDuration or could not have been merged without exceeding maxDuration.
func mergeShortSentences(segments []TranscriptSegment, minDurationMs, maxDurationMs int64) []TranscriptSegment {
	if len(segments) == 0 {
		return segments
	}
	merged := make([]TranscriptSegment, 0, len(segments))
	buffer := segments[0]
	for _, seg := range segments[1:] {
		mergedEnd := seg.EndMs
		mergedDuration := mergedEnd - buffer.StartMs
		needsMerge := seg.DurationMs() < minDurationMs || buffer.DurationMs() < minDurationMs
		if needsMerge && (maxDurationMs <= 0 || mergedDuration <= maxDurationMs) {
			buffer.Text = joinSentenceText(buffer.Text, seg.Text)
			buffer.EndMs = mergedEnd
			continue
		}
		merged = append(merged, buffer)
		buffer = seg
	}
	merged = append(merged, buffer)
	return merged
}

func joinSentenceText(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
