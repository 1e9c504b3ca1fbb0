// Package config loads nub's tunables in layered order: built-in defaults,
// then ~/.config/nub/config.toml (XDG-aware), then NUB_* environment
// variables, then CLI flags override everything at the call site.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Weights controls the relative influence of position, grep matches, and
// tree topology in the scorer's importance formula.
type Weights struct {
	Positional float64 `toml:"positional"`
	Grep       float64 `toml:"grep"`
	Topology   float64 `toml:"topology"`
}

// Compression holds the knobs for the softmax allocator and enforcer.
type Compression struct {
	DefaultBudget     int     `toml:"default_budget"`
	MinLineChars      int     `toml:"min_line_chars"`
	Temperature       float64 `toml:"temperature"`
	DeduplicateNgrams bool    `toml:"deduplicate_ngrams"`
}

// Text holds the topology scores used by the plain-text format.
type Text struct {
	SectionScore float64 `toml:"section_score"`
	LineScore    float64 `toml:"line_score"`
}

// IO holds the large-file head/tail splice thresholds.
type IO struct {
	MaxFileSize int64 `toml:"max_file_size"`
	HeadBytes   int64 `toml:"head_bytes"`
	TailBytes   int64 `toml:"tail_bytes"`
}

// Config is the root config, loaded once per process.
type Config struct {
	Weights     Weights     `toml:"weights"`
	Compression Compression `toml:"compression"`
	Text        Text        `toml:"text"`
	IO          IO          `toml:"io"`
}

// Defaults returns nub's built-in default configuration.
func Defaults() Config {
	return Config{
		Weights:     Weights{Positional: 0.3, Grep: 1.0, Topology: 0.5},
		Compression: Compression{DefaultBudget: 2000, MinLineChars: 8, Temperature: 0.5},
		Text:        Text{SectionScore: 0.6, LineScore: 0.5},
		IO:          IO{MaxFileSize: 1 << 20, HeadBytes: 500 << 10, TailBytes: 500 << 10},
	}
}

// Path resolves the config file location, preferring $XDG_CONFIG_HOME.
func Path() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "nub", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "nub", "config.toml")
	}
	return filepath.Join(home, ".config", "nub", "config.toml")
}

// Load builds the effective config: defaults, then the TOML file at
// Path() if present (parse errors are swallowed and defaults kept), then
// NUB_* environment overrides.
func Load() Config {
	return LoadPath(Path())
}

// LoadPath is Load but reads the TOML file at an explicit path, for the
// CLI's --config override.
func LoadPath(path string) Config {
	cfg := Defaults()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		cfg = Defaults()
	}
	applyEnv(&cfg)
	return cfg
}

func applyEnv(cfg *Config) {
	setFloat("NUB_W_POSITIONAL", &cfg.Weights.Positional)
	setFloat("NUB_W_GREP", &cfg.Weights.Grep)
	setFloat("NUB_W_TOPOLOGY", &cfg.Weights.Topology)
	setInt("NUB_DEFAULT_BUDGET", &cfg.Compression.DefaultBudget)
	setInt("NUB_MIN_LINE_CHARS", &cfg.Compression.MinLineChars)
	setFloat("NUB_TEMPERATURE", &cfg.Compression.Temperature)
	setBool("NUB_DEDUPLICATE", &cfg.Compression.DeduplicateNgrams)
	setFloat("NUB_TEXT_SECTION_SCORE", &cfg.Text.SectionScore)
	setFloat("NUB_TEXT_LINE_SCORE", &cfg.Text.LineScore)
	setInt64("NUB_MAX_FILE_SIZE", &cfg.IO.MaxFileSize)
	setInt64("NUB_HEAD_BYTES", &cfg.IO.HeadBytes)
	setInt64("NUB_TAIL_BYTES", &cfg.IO.TailBytes)
}

func setFloat(key string, dst *float64) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = f
	}
}

func setInt(key string, dst *int) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func setInt64(key string, dst *int64) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		*dst = n
	}
}

func setBool(key string, dst *bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		*dst = true
	default:
		*dst = false
	}
}
