package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"shotsplit/internal/segmentation"
	"shotsplit/internal/textutil"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type clipView struct {
	ID            string `json:"id"`
	TimelineStart int64  `json:"timeline_start_ms"`
	TimelineEnd   int64  `json:"timeline_end_ms"`
	SourceStart   int64  `json:"source_start_ms"`
	SourceEnd     int64  `json:"source_end_ms"`
	ParentClipID  string `json:"parent_clip_id,omitempty"`
	Title         string `json:"title,omitempty"`
	Text          string `json:"text,omitempty"`
	ThumbnailRef  string `json:"thumbnail,omitempty"`
}

type resultViewDoc struct {
	Strategy        string     `json:"strategy"`
	ClipCount       int        `json:"clip_count"`
	TotalDurationMs int64      `json:"total_duration_ms"`
	ParentClipID    string     `json:"parent_clip_id,omitempty"`
	Clips           []clipView `json:"clips"`
}

func resultView(result *segmentation.Result) resultViewDoc {
	doc := resultViewDoc{
		Strategy:        string(result.Strategy),
		ClipCount:       result.ClipCount,
		TotalDurationMs: result.TotalDurationMs,
		ParentClipID:    result.ParentClipID,
		Clips:           make([]clipView, 0, len(result.Clips)),
	}
	for _, clip := range result.Clips {
		doc.Clips = append(doc.Clips, clipView{
			ID:            clip.ID,
			TimelineStart: clip.TimelineStart,
			TimelineEnd:   clip.TimelineEnd,
			SourceStart:   clip.SourceStart,
			SourceEnd:     clip.SourceEnd,
			ParentClipID:  clip.ParentClipID,
			Title:         clip.Title,
			Text:          clip.Text,
			ThumbnailRef:  clip.ThumbnailRef,
		})
	}
	return doc
}

func renderResultTable(result *segmentation.Result) string {
	rows := make([][]string, 0, len(result.Clips))
	for _, clip := range result.Clips {
		label := clip.Title
		if label == "" {
			label = textutil.Truncate(clip.Text, 48)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", clip.Index+1),
			formatMs(clip.TimelineStart) + " - " + formatMs(clip.TimelineEnd),
			formatMs(clip.SourceStart) + " - " + formatMs(clip.SourceEnd),
			formatMs(clip.SourceDuration()),
			label,
		})
	}
	header := fmt.Sprintf("strategy=%s clips=%d total=%s",
		result.Strategy, result.ClipCount, formatMs(result.TotalDurationMs))
	return header + "\n" + renderTable(
		[]string{"#", "Timeline", "Source", "Length", "Content"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func formatMs(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	if d >= time.Hour {
		return fmt.Sprintf("%d:%02d:%02d.%01d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60, ms%1000/100)
	}
	return fmt.Sprintf("%d:%02d.%01d", int(d.Minutes()), int(d.Seconds())%60, ms%1000/100)
}
