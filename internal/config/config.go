// Package config loads and validates the TOML configuration for the shot
// segmentation engine and its collaborator adapters.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Scene contains tunables for the scene-change strategy and its fallback
// sampler.
type Scene struct {
	Threshold       float64 `toml:"threshold"`
	MinSceneLenMs   int64   `toml:"min_scene_len_ms"`
	SamplerDiverge  float64 `toml:"sampler_divergence"`
	SamplerMinGapMs int64   `toml:"sampler_min_gap_ms"`
	SamplerRateHz   float64 `toml:"sampler_rate_hz"`
}

// Sentence contains tunables for the transcript-sentence strategy.
type Sentence struct {
	MinDurationMs int64 `toml:"min_duration_ms"`
	MaxDurationMs int64 `toml:"max_duration_ms"`
	MergeShort    bool  `toml:"merge_short"`
}

// Paragraph contains tunables for the semantic-paragraph strategy. A zero
// target count derives one from the transcript duration.
type Paragraph struct {
	TargetCount   int   `toml:"target_count"`
	MinDurationMs int64 `toml:"min_duration_ms"`
	MaxDurationMs int64 `toml:"max_duration_ms"`
}

// Thumbnails contains configuration for per-clip thumbnail extraction.
type Thumbnails struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// SceneCache contains configuration for the detector-interval cache.
type SceneCache struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // Default: ~/.cache/shotsplit/scenes.db
}

// LLM contains connection settings for the semantic paragraph proposer.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// FFmpeg points at the local ffmpeg/ffprobe binaries the adapters shell out
// to.
type FFmpeg struct {
	Binary       string `toml:"binary"`
	ProbeBinary  string `toml:"probe_binary"`
	SceneTimeout int    `toml:"scene_timeout_seconds"`
}

// Config is the root configuration document.
type Config struct {
	LogLevel   string     `toml:"log_level"`
	LogFormat  string     `toml:"log_format"`
	Scene      Scene      `toml:"scene"`
	Sentence   Sentence   `toml:"sentence"`
	Paragraph  Paragraph  `toml:"paragraph"`
	Thumbnails Thumbnails `toml:"thumbnails"`
	SceneCache SceneCache `toml:"scene_cache"`
	LLM        LLM        `toml:"llm"`
	FFmpeg     FFmpeg     `toml:"ffmpeg"`
}

// Default returns the built-in configuration.
func Default() Config {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return Config{
		LogLevel:  "info",
		LogFormat: "",
		Scene: Scene{
			Threshold:       0.4,
			MinSceneLenMs:   1000,
			SamplerDiverge:  0.5,
			SamplerMinGapMs: 2000,
			SamplerRateHz:   2,
		},
		Sentence: Sentence{
			MinDurationMs: 1500,
			MaxDurationMs: 30000,
			MergeShort:    true,
		},
		Paragraph: Paragraph{
			TargetCount:   0,
			MinDurationMs: 3000,
			MaxDurationMs: 180000,
		},
		Thumbnails: Thumbnails{
			Enabled: false,
			Dir:     filepath.Join(cacheDir, "shotsplit", "thumbs"),
		},
		SceneCache: SceneCache{
			Enabled: true,
			Path:    filepath.Join(cacheDir, "shotsplit", "scenes.db"),
		},
		LLM: LLM{
			BaseURL:        "",
			Model:          "gpt-4.1-mini",
			TimeoutSeconds: 90,
		},
		FFmpeg: FFmpeg{
			Binary:       "ffmpeg",
			ProbeBinary:  "ffprobe",
			SceneTimeout: 600,
		},
	}
}

// DefaultConfigPath returns the user-level configuration file location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config", "shotsplit", "config.toml"), nil
}

// Load reads the configuration at path, falling back to defaults when the
// file does not exist. It returns the config, the path consulted, and whether
// a file was actually read.
func Load(path string) (*Config, string, bool, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, "", false, err
		}
		resolved = defaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &cfg, resolved, false, nil
		}
		return nil, resolved, false, fmt.Errorf("read config %s: %w", resolved, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, resolved, true, fmt.Errorf("parse config %s: %w", resolved, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, resolved, true, err
	}
	return &cfg, resolved, true, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// clobber an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}
