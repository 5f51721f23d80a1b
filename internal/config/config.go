package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"mapper/internal/classifier"
	"mapper/internal/match"
)

const (
	DefaultPath   = "mapper.yaml"
	DefaultDBPath = "mapper.db"
)

type Config struct {
	Match struct {
		AbsoluteThreshold float64  `yaml:"absolute_threshold"`
		RelativeThreshold float64  `yaml:"relative_threshold"`
		Workers           int      `yaml:"workers"`
		MaxRounds         int      `yaml:"max_rounds"`
		StrictNames       bool     `yaml:"strict_names"`
		Levels            []string `yaml:"levels"`
	} `yaml:"match"`
	Storage struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"storage"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	// Weights overrides classifier weights: kind -> classifier name -> weight.
	Weights map[string]map[string]float64 `yaml:"weights"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.Match.AbsoluteThreshold = match.DefaultAbsoluteThreshold
	cfg.Match.RelativeThreshold = match.DefaultRelativeThreshold
	cfg.Match.MaxRounds = match.DefaultMaxRounds
	cfg.Storage.DBPath = DefaultDBPath
	cfg.Log.Level = "info"
	return cfg
}

// LoadConfig reads path on top of the defaults. A missing file is not an
// error. Environment variables (and a .env file) override the file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	// 3. Override with Environment Variables if present
	if db := os.Getenv("MAPPER_DB"); db != "" {
		cfg.Storage.DBPath = db
	}
	if lvl := os.Getenv("MAPPER_LOG_LEVEL"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if w := os.Getenv("MAPPER_WORKERS"); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil {
			return nil, fmt.Errorf("MAPPER_WORKERS: %w", err)
		}
		cfg.Match.Workers = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if err := c.Thresholds().Validate(); err != nil {
		return err
	}
	if c.Match.Workers < 0 {
		return fmt.Errorf("match.workers must not be negative, got %d", c.Match.Workers)
	}
	if c.Match.MaxRounds < 0 {
		return fmt.Errorf("match.max_rounds must not be negative, got %d", c.Match.MaxRounds)
	}
	if _, err := c.ParsedLevels(); err != nil {
		return err
	}
	for kind, weights := range c.Weights {
		for name, w := range weights {
			if w <= 0 {
				return fmt.Errorf("weights.%s.%s must be positive, got %v", kind, name, w)
			}
		}
	}
	return nil
}

func (c *Config) Thresholds() match.Thresholds {
	return match.Thresholds{
		Absolute: c.Match.AbsoluteThreshold,
		Relative: c.Match.RelativeThreshold,
	}
}

// ParsedLevels returns match.levels as classifier levels.
func (c *Config) ParsedLevels() ([]classifier.Level, error) {
	var out []classifier.Level
	for _, s := range c.Match.Levels {
		l, err := classifier.ParseLevel(s)
		if err != nil {
			return nil, fmt.Errorf("match.levels: %w", err)
		}
		out = append(out, l)
	}
	return out, nil
}
