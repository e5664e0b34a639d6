package ffmpeg

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"shotsplit/internal/logging"
	"shotsplit/internal/segmentation"
)

// Detect finds scene-change intervals using ffmpeg's scene filter. Boundary
// timestamps are parsed from showinfo output and folded into contiguous
// intervals covering the requested range. Boundaries closer together than
// minSceneLenMs are suppressed.
func (e *Executor) Detect(ctx context.Context, media segmentation.MediaHandle, threshold float64, minSceneLenMs int64, r *segmentation.SourceRange) ([]segmentation.Interval, error) {
	rangeStart, rangeEnd := int64(0), media.DurationMs
	if r != nil {
		rangeStart, rangeEnd = r.StartMs, r.EndMs
	}
	if rangeEnd <= rangeStart {
		return nil, nil
	}

	args := make([]string, 0, 12)
	if rangeStart > 0 {
		args = append(args, "-ss", formatSeconds(rangeStart))
	}
	if rangeEnd < media.DurationMs || r != nil {
		args = append(args, "-to", formatSeconds(rangeEnd))
	}
	args = append(args,
		"-i", media.Path,
		"-vf", fmt.Sprintf("select='gt(scene,%g)',showinfo", threshold),
		"-f", "null", "-",
	)

	_, stderr, err := e.run(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("scene detection: %w", err)
	}

	// Seeking with -ss rebases showinfo timestamps to the seek point.
	boundaries := ParseShowinfoTimestamps(string(stderr))
	for i := range boundaries {
		boundaries[i] += rangeStart
	}
	intervals := boundariesToIntervals(boundaries, rangeStart, rangeEnd, minSceneLenMs)
	e.logger.Info("scene detection complete",
		logging.String("asset_id", media.AssetID),
		logging.Int("intervals", len(intervals)),
	)
	return intervals, nil
}

// ParseShowinfoTimestamps extracts pts_time values (as milliseconds) from
// ffmpeg showinfo stderr output.
func ParseShowinfoTimestamps(output string) []int64 {
	var stamps []int64
	for _, line := range strings.Split(output, "\n") {
		idx := strings.Index(line, "pts_time:")
		if idx < 0 {
			continue
		}
		rest := strings.TrimSpace(line[idx+len("pts_time:"):])
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		seconds, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			continue
		}
		stamps = append(stamps, int64(math.Round(seconds*1000)))
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i] < stamps[j] })
	return stamps
}

func boundariesToIntervals(boundaries []int64, rangeStart, rangeEnd, minSceneLenMs int64) []segmentation.Interval {
	intervals := make([]segmentation.Interval, 0, len(boundaries)+1)
	cursor := rangeStart
	for _, b := range boundaries {
		if b <= cursor || b >= rangeEnd {
			continue
		}
		if minSceneLenMs > 0 && b-cursor < minSceneLenMs {
			continue
		}
		intervals = append(intervals, segmentation.Interval{StartMs: cursor, EndMs: b})
		cursor = b
	}
	if cursor < rangeEnd {
		intervals = append(intervals, segmentation.Interval{StartMs: cursor, EndMs: rangeEnd})
	}
	return intervals
}

func formatSeconds(ms int64) string {
	return strconv.FormatFloat(float64(ms)/1000, 'f', 3, 64)
}
