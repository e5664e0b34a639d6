package segmentation

import (
	"context"
	"log/slog"

	"shotsplit/internal/logging"
)

// FrameExtractor is the external single-frame extraction capability. The
// returned reference identifies the stored image (a path or object key).
// targetAspect is empty when no aspect-aware cropping is wanted.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, media MediaHandle, timestampMs int64, targetAspect string) (string, error)
}

// AspectLookup resolves the editing session's target aspect ratio ("9:16",
// "16:9", or empty when unset) so extraction can crop safely before
// downscaling.
type AspectLookup interface {
	TargetAspectRatio(ctx context.Context, sessionID string) (string, error)
}

// Thumbnailer requests one representative frame per clip, taken at the
// midpoint of the clip's source slice. Extraction failures are per-clip and
// never fail the overall segmentation.
type Thumbnailer struct {
	extractor FrameExtractor
	aspects   AspectLookup
	logger    *slog.Logger
}

// NewThumbnailer constructs thumbnail coordination. The aspect lookup may be
// nil to skip aspect-aware cropping.
func NewThumbnailer(extractor FrameExtractor, aspects AspectLookup, logger *slog.Logger) *Thumbnailer {
	return &Thumbnailer{
		extractor: extractor,
		aspects:   aspects,
		logger:    logging.NewComponentLogger(logger, "thumbnails"),
	}
}

// Attach requests a midpoint frame for every clip and records the returned
// reference on the clip. Progress advances proportionally between the 60 and
// 95 percent milestones.
func (t *Thumbnailer) Attach(ctx context.Context, media MediaHandle, sessionID string, clips []Clip, progress ProgressFunc) []Clip {
	if t == nil || t.extractor == nil || len(clips) == 0 {
		return clips
	}
	aspect := t.resolveAspect(ctx, sessionID)
	for i := range clips {
		if ctx.Err() != nil {
			return clips
		}
		midpoint := clips[i].SourceStart + clips[i].SourceDuration()/2
		ref, err := t.extractor.ExtractFrame(ctx, media, midpoint, aspect)
		if err != nil {
			t.logger.Warn("thumbnail extraction failed, clip kept without thumbnail",
				logging.Error(err),
				logging.String("clip_id", clips[i].ID),
				logging.Int64("timestamp_ms", midpoint),
			)
			continue
		}
		clips[i].ThumbnailRef = ref
		report(progress, 60+35*(i+1)/len(clips), "thumbnails")
	}
	return clips
}

func (t *Thumbnailer) resolveAspect(ctx context.Context, sessionID string) string {
	if t.aspects == nil || sessionID == "" {
		return ""
	}
	aspect, err := t.aspects.TargetAspectRatio(ctx, sessionID)
	if err != nil {
		t.logger.Warn("aspect ratio lookup failed, extracting uncropped", logging.Error(err), logging.String("session_id", sessionID))
		return ""
	}
	return aspect
}
