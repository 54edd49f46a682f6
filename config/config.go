// Package config loads the YAML configuration and applies environment
// overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"studentperf/logger"
)

// EnvPrefix is the prefix of every environment override, e.g.
// STUDENTPERF_ARTIFACT_PATH.
const EnvPrefix = "STUDENTPERF"

type Config struct {
	Http     HTTPConfig     `yaml:"http"`
	Artifact ArtifactConfig `yaml:"artifact"`
	Cache    CacheConfig    `yaml:"cache"`
	History  HistoryConfig  `yaml:"history"`
	Log      logger.Config  `yaml:"log"`
}

type HTTPConfig struct {
	Port         int           `yaml:"port"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

type ArtifactConfig struct {
	Path            string `yaml:"path"`
	Watch           bool   `yaml:"watch"`
	ONNXLibraryPath string `yaml:"onnx_library_path"`
}

type CacheConfig struct {
	Size int `yaml:"size"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// overrides mirrors the fields that may come from the environment. Pointers
// keep unset variables from clobbering file values.
type overrides struct {
	HTTPPort         *int           `envconfig:"HTTP_PORT"`
	HTTPTimeout      *time.Duration `envconfig:"HTTP_TIMEOUT"`
	HTTPMaxBodyBytes *int64         `envconfig:"HTTP_MAX_BODY_BYTES"`
	ArtifactPath     *string        `envconfig:"ARTIFACT_PATH"`
	ArtifactWatch    *bool          `envconfig:"ARTIFACT_WATCH"`
	ONNXLibraryPath  *string        `envconfig:"ARTIFACT_ONNX_LIBRARY_PATH"`
	CacheSize        *int           `envconfig:"CACHE_SIZE"`
	HistoryEnabled   *bool          `envconfig:"HISTORY_ENABLED"`
	HistoryPath      *string        `envconfig:"HISTORY_PATH"`
	LogLevel         *string        `envconfig:"LOG_LEVEL"`
	LogEnv           *string        `envconfig:"LOG_ENV"`
	LogFile          *string        `envconfig:"LOG_FILE"`
}

func Default() *Config {
	return &Config{
		Http: HTTPConfig{
			Port:         8501,
			Timeout:      30 * time.Second,
			MaxBodyBytes: 1 << 16,
		},
		Artifact: ArtifactConfig{
			Path: "student_performance_model.json",
		},
		Cache: CacheConfig{Size: 256},
		History: HistoryConfig{
			Path: "predictions.db",
		},
		Log: logger.Config{
			Level:      "info",
			Env:        "development",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads path (a missing file means defaults), then a .env file if one
// exists, then STUDENTPERF_* variables.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		file, err := os.Open(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			defer file.Close()
			if err := yaml.NewDecoder(file).Decode(config); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var env overrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	env.apply(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("invalid http port %d", c.Http.Port)
	}
	if c.Artifact.Path == "" {
		return errors.New("artifact path is required")
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("invalid cache size %d", c.Cache.Size)
	}
	if c.History.Enabled && c.History.Path == "" {
		return errors.New("history path is required when history is enabled")
	}
	return nil
}

func (o overrides) apply(c *Config) {
	if o.HTTPPort != nil {
		c.Http.Port = *o.HTTPPort
	}
	if o.HTTPTimeout != nil {
		c.Http.Timeout = *o.HTTPTimeout
	}
	if o.HTTPMaxBodyBytes != nil {
		c.Http.MaxBodyBytes = *o.HTTPMaxBodyBytes
	}
	if o.ArtifactPath != nil {
		c.Artifact.Path = *o.ArtifactPath
	}
	if o.ArtifactWatch != nil {
		c.Artifact.Watch = *o.ArtifactWatch
	}
	if o.ONNXLibraryPath != nil {
		c.Artifact.ONNXLibraryPath = *o.ONNXLibraryPath
	}
	if o.CacheSize != nil {
		c.Cache.Size = *o.CacheSize
	}
	if o.HistoryEnabled != nil {
		c.History.Enabled = *o.HistoryEnabled
	}
	if o.HistoryPath != nil {
		c.History.Path = *o.HistoryPath
	}
	if o.LogLevel != nil {
		c.Log.Level = *o.LogLevel
	}
	if o.LogEnv != nil {
		c.Log.Env = *o.LogEnv
	}
	if o.LogFile != nil {
		c.Log.File = *o.LogFile
	}
}
