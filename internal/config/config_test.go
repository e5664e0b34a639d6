package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestSampleConfigDecodes(t *testing.T) {
	cfg := Default()
	if err := toml.Unmarshal([]byte(SampleConfig()), &cfg); err != nil {
		t.Fatalf("sample config does not decode: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config invalid: %v", err)
	}
	if cfg.Scene.Threshold != 0.4 {
		t.Errorf("sample scene threshold = %v, want 0.4", cfg.Scene.Threshold)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")
	cfg, resolved, read, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if read {
		t.Error("expected read=false for a missing file")
	}
	if resolved != path {
		t.Errorf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Sentence.MinDurationMs != 1500 {
		t.Errorf("defaults not applied: %+v", cfg.Sentence)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[sentence]\nmin_duration_ms = 2500\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, read, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !read {
		t.Error("expected read=true")
	}
	if cfg.Sentence.MinDurationMs != 2500 {
		t.Errorf("override not applied: %d", cfg.Sentence.MinDurationMs)
	}
	if cfg.Scene.Threshold != 0.4 {
		t.Errorf("untouched defaults lost: %v", cfg.Scene.Threshold)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"threshold too high", func(c *Config) { c.Scene.Threshold = 1.5 }, "scene.threshold"},
		{"zero sampler gap", func(c *Config) { c.Scene.SamplerMinGapMs = 0 }, "sampler_min_gap_ms"},
		{"max below min", func(c *Config) { c.Sentence.MaxDurationMs = 100 }, "max_duration_ms"},
		{"negative target", func(c *Config) { c.Paragraph.TargetCount = -1 }, "target_count"},
		{"cache without path", func(c *Config) { c.SceneCache.Path = " " }, "scene_cache.path"},
		{"empty ffmpeg binary", func(c *Config) { c.FFmpeg.Binary = "" }, "ffmpeg.binary"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}
