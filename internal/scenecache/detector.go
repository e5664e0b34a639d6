package scenecache

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"shotsplit/internal/logging"
	"shotsplit/internal/segmentation"
)

// lockRetryDelay paces TryLockContext polling while another process holds the
// populate lock.
const lockRetryDelay = 100 * time.Millisecond

// CachingDetector decorates a scene detector with the interval cache. A
// process-level file lock serializes populate runs so concurrent invocations
// over the same cache never execute the detector twice for one key.
type CachingDetector struct {
	inner  segmentation.Detector
	store  *Store
	lock   *flock.Flock
	logger *slog.Logger
}

// NewCachingDetector wraps inner with the cache at store.
func NewCachingDetector(inner segmentation.Detector, store *Store, logger *slog.Logger) *CachingDetector {
	return &CachingDetector{
		inner:  inner,
		store:  store,
		lock:   flock.New(store.Path() + ".lock"),
		logger: logging.NewComponentLogger(logger, "scene-cache"),
	}
}

// Detect implements segmentation.Detector. Cache read problems degrade to a
// detector run; cache write problems are logged and the fresh result is still
// returned.
func (d *CachingDetector) Detect(ctx context.Context, media segmentation.MediaHandle, threshold float64, minSceneLenMs int64, r *segmentation.SourceRange) ([]segmentation.Interval, error) {
	key := Key{
		AssetID:       media.AssetID,
		Threshold:     threshold,
		MinSceneLenMs: minSceneLenMs,
	}
	if r != nil {
		key.RangeStart, key.RangeEnd = r.StartMs, r.EndMs
	} else {
		key.RangeEnd = media.DurationMs
	}

	if intervals, ok, err := d.store.Get(ctx, key); err == nil && ok {
		d.logger.Debug("scene cache hit", logging.String("asset_id", key.AssetID))
		return intervals, nil
	} else if err != nil {
		d.logger.Warn("scene cache read failed, running detector", logging.Error(err))
	}

	locked, err := d.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, err
	}
	if locked {
		defer func() { _ = d.lock.Unlock() }()
		// Another process may have populated the entry while we waited.
		if intervals, ok, err := d.store.Get(ctx, key); err == nil && ok {
			return intervals, nil
		}
	}

	intervals, err := d.inner.Detect(ctx, media, threshold, minSceneLenMs, r)
	if err != nil {
		return nil, err
	}
	if putErr := d.store.Put(ctx, key, intervals); putErr != nil {
		d.logger.Warn("scene cache write failed", logging.Error(putErr))
	}
	return intervals, nil
}
