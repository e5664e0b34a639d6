package segmentation

import "context"

// Strategy is one interchangeable segmentation algorithm. Implementations are
// stateless across calls; all per-run state lives in the arguments.
type Strategy interface {
	Key() StrategyKey
	RequiresTranscript() bool
	Segment(ctx context.Context, req Request, media MediaHandle, transcript []TranscriptSegment) ([]Clip, error)
}

// ProgressFunc receives coarse progress milestones (0-100) while a run is in
// flight. Implementations must be fast; the engine calls them inline. A nil
// sink disables reporting.
type ProgressFunc func(percent int, stage string)

func report(progress ProgressFunc, percent int, stage string) {
	if progress != nil {
		progress(percent, stage)
	}
}

// resolveRange returns the effective [start, end) search boundary for a run:
// the recursive range when present, otherwise the whole asset.
func resolveRange(req Request, media MediaHandle) (int64, int64) {
	if req.Range != nil {
		return req.Range.StartMs, req.Range.EndMs
	}
	return 0, media.DurationMs
}
