// Package transcript loads aligned transcripts from upstream provider
// exports so the CLI can hand raw entries to the segmentation engine.
// JSON files carry arrays of {id,text,start,end,speaker}; SRT files are
// parsed cue by cue.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"shotsplit/internal/segmentation"
)

// LoadFile reads a transcript export, dispatching on file extension. An empty
// path returns nil entries, the no-transcript case.
func LoadFile(path string) ([]segmentation.RawEntry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt":
		return ParseSRT(string(data))
	default:
		return ParseJSON(data)
	}
}

// ParseJSON decodes a JSON array of raw transcript entries.
func ParseJSON(data []byte) ([]segmentation.RawEntry, error) {
	var entries []segmentation.RawEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse transcript json: %w", err)
	}
	return entries, nil
}

// ParseSRT converts SubRip cues into raw entries with millisecond bounds.
// Malformed cues are skipped rather than failing the whole file.
func ParseSRT(content string) ([]segmentation.RawEntry, error) {
	var entries []segmentation.RawEntry
	blocks := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n")
	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}
		// Optional numeric cue index on the first line.
		cueID := ""
		timingLine := lines[0]
		textStart := 1
		if _, err := strconv.Atoi(strings.TrimSpace(lines[0])); err == nil {
			if len(lines) < 3 {
				continue
			}
			cueID = strings.TrimSpace(lines[0])
			timingLine = lines[1]
			textStart = 2
		}
		startMs, endMs, ok := parseSRTTiming(timingLine)
		if !ok {
			continue
		}
		text := strings.TrimSpace(strings.Join(lines[textStart:], " "))
		if text == "" {
			continue
		}
		entries = append(entries, segmentation.RawEntry{
			ID:    cueID,
			Text:  text,
			Start: float64(startMs),
			End:   float64(endMs),
		})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("parse srt: no usable cues")
	}
	return entries, nil
}

func parseSRTTiming(line string) (int64, int64, bool) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, ok := parseSRTTimestamp(strings.TrimSpace(parts[0]))
	if !ok {
		return 0, 0, false
	}
	end, ok := parseSRTTimestamp(strings.TrimSpace(parts[1]))
	if !ok {
		return 0, 0, false
	}
	return start, end, true
}

// parseSRTTimestamp reads "HH:MM:SS,mmm" (or with a '.' separator).
func parseSRTTimestamp(value string) (int64, bool) {
	value = strings.ReplaceAll(value, ",", ".")
	fields := strings.Split(value, ":")
	if len(fields) != 3 {
		return 0, false
	}
	hours, err1 := strconv.ParseInt(fields[0], 10, 64)
	minutes, err2 := strconv.ParseInt(fields[1], 10, 64)
	seconds, err3 := strconv.ParseFloat(fields[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	return hours*3600000 + minutes*60000 + int64(seconds*1000), true
}
