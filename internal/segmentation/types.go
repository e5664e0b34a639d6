package segmentation

import (
	"fmt"
	"strings"
)

// StrategyKey identifies one of the interchangeable segmentation algorithms.
type StrategyKey string

const (
	StrategyScene     StrategyKey = "scene"
	StrategySentence  StrategyKey = "sentence"
	StrategyParagraph StrategyKey = "paragraph"
)

// ParseStrategyKey maps a user-supplied string onto a known strategy key.
func ParseStrategyKey(value string) (StrategyKey, error) {
	switch StrategyKey(strings.ToLower(strings.TrimSpace(value))) {
	case StrategyScene:
		return StrategyScene, nil
	case StrategySentence:
		return StrategySentence, nil
	case StrategyParagraph:
		return StrategyParagraph, nil
	default:
		return "", fmt.Errorf("%w: unknown strategy %q (expected scene, sentence, or paragraph)", ErrInvalidStrategy, value)
	}
}

// MediaHandle references the source asset a segmentation run operates on.
// Path is whatever the injected detector/extractor implementations accept;
// DurationMs bounds first-pass (non-recursive) runs.
type MediaHandle struct {
	AssetID    string
	Path       string
	DurationMs int64
}

// Clip is one proposed segment of the source asset. Timeline positions locate
// the clip in the newly produced contiguous sequence (always starting at 0);
// source positions locate it within the original asset or, for recursive runs,
// within the parent clip's source range. All values are milliseconds.
type Clip struct {
	ID            string
	AssetID       string
	TimelineStart int64
	TimelineEnd   int64
	SourceStart   int64
	SourceEnd     int64
	ParentClipID  string
	Text          string
	Title         string
	ThumbnailRef  string
	Strategy      StrategyKey
	Index         int
}

// SourceDuration returns the length of the clip's slice of the source.
func (c Clip) SourceDuration() int64 {
	return c.SourceEnd - c.SourceStart
}

// RawEntry is a transcript entry as delivered by an upstream transcript
// provider, before unit normalization. Start and End may be seconds or
// milliseconds; NormalizeTranscript decides per entry.
type RawEntry struct {
	ID      string  `json:"id"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker,omitempty"`
}

// TranscriptSegment is a normalized transcript entry with millisecond bounds.
type TranscriptSegment struct {
	ID      string
	Text    string
	StartMs int64
	EndMs   int64
	Speaker string
}

// DurationMs returns the segment length in milliseconds.
func (s TranscriptSegment) DurationMs() int64 {
	return s.EndMs - s.StartMs
}

// SourceRange restricts a recursive segmentation run to a sub-range of the
// source, expressed as [StartMs, EndMs).
type SourceRange struct {
	StartMs int64
	EndMs   int64
}

// SceneTunables configures the scene-change strategy.
type SceneTunables struct {
	Threshold       float64
	MinSceneLenMs   int64
	SamplerDiverge  float64
	SamplerMinGapMs int64
	SamplerRateHz   float64
}

// SentenceTunables configures the transcript-sentence strategy.
type SentenceTunables struct {
	MinDurationMs int64
	MaxDurationMs int64
	MergeShort    bool
}

// ParagraphTunables configures the semantic-paragraph strategy. A zero
// TargetCount lets the strategy derive one from the transcript duration.
type ParagraphTunables struct {
	TargetCount   int
	MinDurationMs int64
	MaxDurationMs int64
}

// Request describes one segmentation run.
type Request struct {
	AssetID      string
	Strategy     StrategyKey
	Range        *SourceRange
	ParentClipID string
	SessionID    string
	Scene        SceneTunables
	Sentence     SentenceTunables
	Paragraph    ParagraphTunables
	Thumbnails   bool
}

// Result is the ordered outcome of a segmentation run.
type Result struct {
	Clips           []Clip
	TotalDurationMs int64
	Strategy        StrategyKey
	ParentClipID    string
	ClipCount       int
}

// ParagraphDescriptor is the semantic paragraph proposer's view of one
// paragraph, expressed as an inclusive sentence-index span.
type ParagraphDescriptor struct {
	Index              int    `json:"index"`
	Title              string `json:"title"`
	Summary            string `json:"summary"`
	StartSentenceIndex int    `json:"start_sentence_index"`
	EndSentenceIndex   int    `json:"end_sentence_index"`
}

// DefaultSceneTunables returns the scene tunables used when the coordinator
// downgrades to the scene strategy on fallback.
func DefaultSceneTunables() SceneTunables {
	return SceneTunables{
		Threshold:       0.4,
		MinSceneLenMs:   1000,
		SamplerDiverge:  0.5,
		SamplerMinGapMs: 2000,
		SamplerRateHz:   2,
	}
}
