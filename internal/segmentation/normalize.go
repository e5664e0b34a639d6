package segmentation

import (
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// reflowFloorMs is the practical minimum clip duration applied by
// ValidateAndReflow. Callers that need genuine minimum-duration guarantees
// (e.g. sentence merging) enforce them before reflow; this floor only sheds
// degenerate slivers.
const reflowFloorMs = 200

// NormalizeTranscript canonicalizes raw transcript entries into millisecond
// segments. Entries whose trimmed text is empty are dropped as silence. Unit
// detection runs independently per entry to tolerate mixed-precision inputs:
// when both bounds are below 1000 and at least one carries a fractional part,
// the entry is assumed to be in seconds and scaled by 1000; otherwise the
// values are taken as already-integer milliseconds.
func NormalizeTranscript(raw []RawEntry) []TranscriptSegment {
	segments := make([]TranscriptSegment, 0, len(raw))
	for _, entry := range raw {
		text := strings.TrimSpace(entry.Text)
		if text == "" {
			continue
		}
		start, end := entry.Start, entry.End
		if looksLikeSeconds(start, end) {
			start *= 1000
			end *= 1000
		}
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			id = uuid.NewString()
		}
		segments = append(segments, TranscriptSegment{
			ID:      id,
			Text:    text,
			StartMs: int64(math.Round(start)),
			EndMs:   int64(math.Round(end)),
			Speaker: strings.TrimSpace(entry.Speaker),
		})
	}
	return segments
}

func looksLikeSeconds(start, end float64) bool {
	if start >= 1000 || end >= 1000 {
		return false
	}
	return start != math.Trunc(start) || end != math.Trunc(end)
}

// FilterByRange keeps segments overlapping [r.StartMs, r.EndMs), clamping each
// kept segment's bounds to the range. A nil range is the first-pass
// (non-recursive) case and returns the input unchanged.
func FilterByRange(segments []TranscriptSegment, r *SourceRange) []TranscriptSegment {
	if r == nil {
		return segments
	}
	kept := make([]TranscriptSegment, 0, len(segments))
	for _, seg := range segments {
		if seg.EndMs <= r.StartMs || seg.StartMs >= r.EndMs {
			continue
		}
		clamped := seg
		if clamped.StartMs < r.StartMs {
			clamped.StartMs = r.StartMs
		}
		if clamped.EndMs > r.EndMs {
			clamped.EndMs = r.EndMs
		}
		kept = append(kept, clamped)
	}
	return kept
}

// ValidateAndReflow sorts clips by source start, drops clips whose source
// slice is below min(minDurationMs, 200ms), and reassigns timeline positions
// contiguously from zero in source order. The returned clips satisfy
// TimelineEnd-TimelineStart == SourceEnd-SourceStart and
// clips[i].TimelineEnd == clips[i+1].TimelineStart.
func ValidateAndReflow(clips []Clip, minDurationMs int64) []Clip {
	floor := minDurationMs
	if floor > reflowFloorMs {
		floor = reflowFloorMs
	}
	ordered := make([]Clip, len(clips))
	copy(ordered, clips)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SourceStart < ordered[j].SourceStart
	})

	result := make([]Clip, 0, len(ordered))
	var cursor int64
	for _, clip := range ordered {
		duration := clip.SourceDuration()
		if duration < floor {
			continue
		}
		clip.TimelineStart = cursor
		clip.TimelineEnd = cursor + duration
		clip.Index = len(result)
		cursor += duration
		result = append(result, clip)
	}
	return result
}

// NewClip builds a clip with a fresh identity. Timeline positions mirror the
// source slice until ValidateAndReflow re-times them.
func NewClip(assetID string, sourceStart, sourceEnd int64, strategy StrategyKey, parentClipID string) Clip {
	return Clip{
		ID:            uuid.NewString(),
		AssetID:       assetID,
		TimelineStart: 0,
		TimelineEnd:   sourceEnd - sourceStart,
		SourceStart:   sourceStart,
		SourceEnd:     sourceEnd,
		ParentClipID:  parentClipID,
		Strategy:      strategy,
	}
}
