package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"shotsplit/internal/logging"
	"shotsplit/internal/segmentation"
	"shotsplit/internal/textutil"
)

// sampleSize is the edge length of the uniformly scaled grayscale frames fed
// to the fallback sampler's histogram.
const sampleSize = 32

// FrameExtractor writes one JPEG frame per request under dir and returns its
// path. It implements segmentation.FrameExtractor.
type FrameExtractor struct {
	executor *Executor
	dir      string
}

// NewFrameExtractor constructs a frame extractor storing thumbnails under
// dir.
func NewFrameExtractor(executor *Executor, dir string) *FrameExtractor {
	return &FrameExtractor{executor: executor, dir: dir}
}

// ExtractFrame grabs a single frame at timestampMs. When targetAspect is
// "9:16" or "16:9" the frame is center-cropped to that aspect before
// encoding, so later downscaling cannot distort it.
func (x *FrameExtractor) ExtractFrame(ctx context.Context, media segmentation.MediaHandle, timestampMs int64, targetAspect string) (string, error) {
	if err := os.MkdirAll(x.dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure thumbnail dir: %w", err)
	}
	name := fmt.Sprintf("%s_%d.jpg", textutil.SanitizeToken(media.AssetID), timestampMs)
	outPath := filepath.Join(x.dir, name)

	args := []string{
		"-ss", formatSeconds(timestampMs),
		"-i", media.Path,
		"-frames:v", "1",
		"-q:v", "2",
	}
	if filter, ok := cropFilter(targetAspect); ok {
		args = append(args, "-vf", filter)
	}
	args = append(args, "-y", outPath)

	if _, _, err := x.executor.run(ctx, args); err != nil {
		return "", fmt.Errorf("extract frame at %dms: %w", timestampMs, err)
	}
	x.executor.logger.Debug("frame extracted",
		logging.String("asset_id", media.AssetID),
		logging.Int64("timestamp_ms", timestampMs),
		logging.String("path", outPath),
	)
	return outPath, nil
}

func cropFilter(targetAspect string) (string, bool) {
	switch targetAspect {
	case "9:16":
		return "crop='min(iw,ih*9/16)':'min(ih,iw*16/9)'", true
	case "16:9":
		return "crop='min(iw,ih*16/9)':'min(ih,iw*9/16)'", true
	default:
		return "", false
	}
}

// SampleLuma implements segmentation.FrameSource: it decodes one frame at
// timestampMs, scales it to sampleSize x sampleSize, and returns the raw
// grayscale plane.
func (x *FrameExtractor) SampleLuma(ctx context.Context, media segmentation.MediaHandle, timestampMs int64) ([]byte, error) {
	args := []string{
		"-ss", formatSeconds(timestampMs),
		"-i", media.Path,
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=%d:%d,format=gray", sampleSize, sampleSize),
		"-f", "rawvideo", "-",
	}
	stdout, _, err := x.executor.run(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("sample luma at %dms: %w", timestampMs, err)
	}
	if len(stdout) < sampleSize*sampleSize {
		return nil, fmt.Errorf("sample luma at %dms: short frame (%d bytes)", timestampMs, len(stdout))
	}
	return stdout[:sampleSize*sampleSize], nil
}
