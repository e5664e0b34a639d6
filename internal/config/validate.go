package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	var problems []string

	if c.Scene.Threshold <= 0 || c.Scene.Threshold >= 1 {
		problems = append(problems, fmt.Sprintf("scene.threshold must be in (0, 1), got %v", c.Scene.Threshold))
	}
	if c.Scene.MinSceneLenMs < 0 {
		problems = append(problems, "scene.min_scene_len_ms must not be negative")
	}
	if c.Scene.SamplerDiverge <= 0 || c.Scene.SamplerDiverge > 1 {
		problems = append(problems, fmt.Sprintf("scene.sampler_divergence must be in (0, 1], got %v", c.Scene.SamplerDiverge))
	}
	if c.Scene.SamplerMinGapMs <= 0 {
		problems = append(problems, "scene.sampler_min_gap_ms must be positive")
	}
	if c.Scene.SamplerRateHz <= 0 {
		problems = append(problems, "scene.sampler_rate_hz must be positive")
	}
	if c.Sentence.MinDurationMs <= 0 {
		problems = append(problems, "sentence.min_duration_ms must be positive")
	}
	if c.Sentence.MaxDurationMs > 0 && c.Sentence.MaxDurationMs < c.Sentence.MinDurationMs {
		problems = append(problems, "sentence.max_duration_ms must be at least sentence.min_duration_ms")
	}
	if c.Paragraph.TargetCount < 0 {
		problems = append(problems, "paragraph.target_count must not be negative")
	}
	if c.Paragraph.MinDurationMs < 0 {
		problems = append(problems, "paragraph.min_duration_ms must not be negative")
	}
	if c.SceneCache.Enabled && strings.TrimSpace(c.SceneCache.Path) == "" {
		problems = append(problems, "scene_cache.path is required when scene_cache.enabled is true")
	}
	if c.Thumbnails.Enabled && strings.TrimSpace(c.Thumbnails.Dir) == "" {
		problems = append(problems, "thumbnails.dir is required when thumbnails.enabled is true")
	}
	if strings.TrimSpace(c.FFmpeg.Binary) == "" {
		problems = append(problems, "ffmpeg.binary must not be empty")
	}
	if strings.TrimSpace(c.FFmpeg.ProbeBinary) == "" {
		problems = append(problems, "ffmpeg.probe_binary must not be empty")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
