package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "TINFOIL_CONFIG"
	databaseEnv   = "TINFOIL_DB"
	listenEnv     = "TINFOIL_ADDR"
)

// Duration wraps time.Duration so durations read naturally from YAML
// ("6h", "20s").
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds every setting the application recognizes.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Harvest  HarvestConfig  `yaml:"harvest"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Adapters AdapterConfig  `yaml:"adapters"`
	Sources  []SourceConfig `yaml:"sources"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig describes the presentation listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// HarvestConfig bounds how often and how aggressively cycles run.
type HarvestConfig struct {
	FreshnessWindow Duration        `yaml:"freshnessWindow"`
	MinFreshCount   int             `yaml:"minFreshCount"`
	FetchTimeout    Duration        `yaml:"fetchTimeout"`
	CronExpression  string          `yaml:"cronExpression"`
	Retention       RetentionConfig `yaml:"retention"`
}

// RetentionConfig controls pruning: rows older than MaxAge are deleted once
// the table exceeds MaxRows, but never below KeepMinimum rows.
type RetentionConfig struct {
	MaxAge      Duration `yaml:"maxAge"`
	KeepMinimum int      `yaml:"keepMinimum"`
	MaxRows     int      `yaml:"maxRows"`
}

// ScoringConfig parameterizes the craziness heuristic.
type ScoringConfig struct {
	Keywords         []string `yaml:"keywords"`
	HitWeight        int      `yaml:"hitWeight"`
	JitterMax        int      `yaml:"jitterMax"`
	PunctuationBonus int      `yaml:"punctuationBonus"`
	BucketWidth      int      `yaml:"bucketWidth"`
	Tiers            []string `yaml:"tiers"`
}

// AdapterConfig holds extraction gates shared by all source adapters.
type AdapterConfig struct {
	TitleMinLength int `yaml:"titleMinLength"`
	TitleMaxLength int `yaml:"titleMaxLength"`
}

// SourceConfig describes one endpoint and the adapter that parses it.
type SourceConfig struct {
	Name      string            `yaml:"name"`
	Adapter   string            `yaml:"adapter"`
	URL       string            `yaml:"url"`
	Selectors map[string]string `yaml:"selectors"`
}

// Load reads YAML configuration (path from TINFOIL_CONFIG, if set) over the
// defaults and applies environment overrides. Callers must still run
// Validate; a config that names zero sources must never reach a harvest.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseEnv); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(listenEnv); v != "" {
		c.Server.Addr = v
	}
}

// Validate rejects configurations the pipeline cannot safely run with.
func (c Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}
	for _, src := range c.Sources {
		if src.Name == "" {
			return fmt.Errorf("source with url %q has no name", src.URL)
		}
		if src.URL == "" {
			return fmt.Errorf("source %s has no url", src.Name)
		}
		if src.Adapter == "" {
			return fmt.Errorf("source %s has no adapter type", src.Name)
		}
	}
	if c.Harvest.FreshnessWindow <= 0 {
		return fmt.Errorf("harvest freshnessWindow must be positive")
	}
	if c.Harvest.FetchTimeout <= 0 {
		return fmt.Errorf("harvest fetchTimeout must be positive")
	}
	if c.Scoring.HitWeight <= 0 {
		return fmt.Errorf("scoring hitWeight must be positive")
	}
	if c.Scoring.JitterMax < 0 {
		return fmt.Errorf("scoring jitterMax must not be negative")
	}
	if c.Scoring.BucketWidth <= 0 {
		return fmt.Errorf("scoring bucketWidth must be positive")
	}
	if len(c.Scoring.Keywords) == 0 {
		return fmt.Errorf("scoring keywords must not be empty")
	}
	if c.Adapters.TitleMinLength >= c.Adapters.TitleMaxLength {
		return fmt.Errorf("adapter title length gate is inverted (%d >= %d)",
			c.Adapters.TitleMinLength, c.Adapters.TitleMaxLength)
	}
	if c.Harvest.Retention.KeepMinimum < 0 {
		return fmt.Errorf("retention keepMinimum must not be negative")
	}
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Database: DatabaseConfig{Path: "./tinfoil.db"},
		Server:   ServerConfig{Addr: ":8080"},
		Harvest: HarvestConfig{
			FreshnessWindow: Duration(6 * time.Hour),
			MinFreshCount:   5,
			FetchTimeout:    Duration(20 * time.Second),
			CronExpression:  "0 7 * * *",
			Retention: RetentionConfig{
				MaxAge:      Duration(30 * 24 * time.Hour),
				KeepMinimum: 50,
				MaxRows:     500,
			},
		},
		Scoring: ScoringConfig{
			Keywords: []string{
				"lizard", "nwo", "chemtrail", "flat earth", "5g",
				"eclipse portal", "soul trap", "hologram", "reptil",
				"deep state", "antichrist", "great reset",
			},
			HitWeight:        14,
			JitterMax:        25,
			PunctuationBonus: 2,
			BucketWidth:      17,
			Tiers: []string{
				"mild", "speculation", "conspiracy",
				"tin foil", "full schizo", "beyond the veil",
			},
		},
		Adapters: AdapterConfig{
			TitleMinLength: 20,
			TitleMaxLength: 300,
		},
		Sources: []SourceConfig{
			{
				Name:    "Reddit",
				Adapter: "reddit",
				URL:     "https://old.reddit.com/r/conspiracy/new/.json?limit=25",
			},
			{
				Name:    "Forum",
				Adapter: "forum",
				URL:     "https://www.godlikeproductions.com/forum1",
			},
		},
	}
}
