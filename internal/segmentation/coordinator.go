package segmentation

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"shotsplit/internal/logging"
	"shotsplit/internal/services"
)

// Coordinator selects a strategy per request, enforces preconditions,
// classifies failures, and assembles results. It holds no per-call state and
// may be shared across concurrent calls.
type Coordinator struct {
	strategies  map[StrategyKey]Strategy
	thumbnailer *Thumbnailer
	logger      *slog.Logger
}

// NewCoordinator builds a coordinator over the supplied strategies. The
// thumbnailer may be nil; requests asking for thumbnails then get clips
// without thumbnail references.
func NewCoordinator(strategies []Strategy, thumbnailer *Thumbnailer, logger *slog.Logger) *Coordinator {
	table := make(map[StrategyKey]Strategy, len(strategies))
	for _, strategy := range strategies {
		if strategy != nil {
			table[strategy.Key()] = strategy
		}
	}
	return &Coordinator{
		strategies:  table,
		thumbnailer: thumbnailer,
		logger:      logging.NewComponentLogger(logger, "segmentation"),
	}
}

// Segment runs one segmentation pass. Raw transcript entries are normalized
// once here and shared by the selected strategy. Progress is reported at
// coarse milestones through the optional sink.
func (c *Coordinator) Segment(ctx context.Context, req Request, media MediaHandle, raw []RawEntry, progress ProgressFunc) (*Result, error) {
	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := c.logger.With(
		logging.String("asset_id", req.AssetID),
		logging.String("strategy", string(req.Strategy)),
	)

	report(progress, 5, "resolve strategy")
	strategy, ok := c.strategies[req.Strategy]
	if !ok {
		return nil, Wrap(ErrInvalidStrategy, req.Strategy, "", "no such strategy registered", nil)
	}

	report(progress, 10, "normalize transcript")
	transcript := NormalizeTranscript(raw)
	if strategy.RequiresTranscript() && len(transcript) == 0 {
		return nil, Wrap(ErrMissingTranscript, req.Strategy, "", string(req.Strategy)+" strategy requires a transcript", nil)
	}

	report(progress, 20, "segment")
	clips, err := strategy.Segment(ctx, req, media, transcript)
	if err != nil {
		if IsCancellation(err) {
			return nil, err
		}
		if errors.Is(err, ErrMissingTranscript) || errors.Is(err, ErrInvalidStrategy) || errors.Is(err, ErrStrategyExecution) {
			return nil, err
		}
		return nil, Wrap(ErrStrategyExecution, req.Strategy, "segment", "", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report(progress, 60, "segmented")
	if req.Thumbnails && c.thumbnailer != nil {
		clips = c.thumbnailer.Attach(ctx, media, req.SessionID, clips, progress)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	report(progress, 95, "assemble result")
	var total int64
	for _, clip := range clips {
		total += clip.SourceDuration()
	}
	result := &Result{
		Clips:           clips,
		TotalDurationMs: total,
		Strategy:        req.Strategy,
		ParentClipID:    req.ParentClipID,
		ClipCount:       len(clips),
	}
	logger.Info("segmentation complete",
		logging.Int("clips", result.ClipCount),
		logging.Int64("total_ms", result.TotalDurationMs),
	)
	report(progress, 100, "done")
	return result, nil
}

// SegmentWithFallback behaves like Segment, except a missing-transcript
// failure on a non-scene strategy triggers exactly one retry using the scene
// strategy with the same recursion range and default scene tunables. A second
// failure is not retried further.
func (c *Coordinator) SegmentWithFallback(ctx context.Context, req Request, media MediaHandle, raw []RawEntry, progress ProgressFunc) (*Result, error) {
	result, err := c.Segment(ctx, req, media, raw, progress)
	if err == nil || req.Strategy == StrategyScene || !errors.Is(err, ErrMissingTranscript) {
		return result, err
	}

	c.logger.Warn("transcript unavailable, downgrading to scene strategy",
		logging.String("asset_id", req.AssetID),
		logging.String("requested_strategy", string(req.Strategy)),
	)
	downgraded := req
	downgraded.Strategy = StrategyScene
	downgraded.Scene = DefaultSceneTunables()
	return c.Segment(ctx, downgraded, media, raw, progress)
}
