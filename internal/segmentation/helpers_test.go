package segmentation

import "fmt"

func testMedia(durationMs int64) MediaHandle {
	return MediaHandle{
		AssetID:    "asset-test",
		Path:       "/tmp/asset-test.mp4",
		DurationMs: durationMs,
	}
}

// testSentences builds normalized transcript segments from (start, end) pairs,
// numbering their texts.
func testSentences(bounds ...[2]int64) []TranscriptSegment {
	segments := make([]TranscriptSegment, 0, len(bounds))
	for i, b := range bounds {
		segments = append(segments, TranscriptSegment{
			ID:      fmt.Sprintf("seg-%d", i),
			Text:    fmt.Sprintf("sentence %d", i),
			StartMs: b[0],
			EndMs:   b[1],
		})
	}
	return segments
}
