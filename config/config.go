package config

import (
	"os"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Split names used across the configuration and the CLI.
const (
	SplitTrain = "train"
	SplitVal   = "val"
	SplitTest  = "test"
)

// Config holds all settings for building sample datasets.
type Config struct {
	Dataloader DataloaderConfig `yaml:"dataloader"`
	Dataset    DatasetConfig    `yaml:"dataset"`
	Sample     SampleConfig     `yaml:"sample"`

	// Workers bounds how many sources are loaded in parallel. Zero means NumCPU.
	Workers int `yaml:"workers"`

	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// DataloaderConfig mirrors the batching knobs of the training side.
type DataloaderConfig struct {
	NStep     int `yaml:"n_step"`
	ValNStep  int `yaml:"val_n_step"`
	TestNStep int `yaml:"test_n_step"`

	BatchSize     int `yaml:"batch_size"`
	ValBatchSize  int `yaml:"val_batch_size"`
	TestBatchSize int `yaml:"test_batch_size"`
}

// SubDatasetConfig points at the artifacts of one encoded video.
type SubDatasetConfig struct {
	DecodedYUVFilepath  string `yaml:"decoded_yuv_filepath"`
	OriginalYUVFilePath string `yaml:"original_yuv_file_path"`
	VTMTraceFilepath    string `yaml:"vtm_trace_filepath"`
	Width               int    `yaml:"width"`
	Height              int    `yaml:"height"`
}

// Configured reports whether the split names a decoded video at all.
func (s SubDatasetConfig) Configured() bool {
	return s.DecodedYUVFilepath != ""
}

type DatasetConfig struct {
	Train SubDatasetConfig `yaml:"train"`
	Val   SubDatasetConfig `yaml:"val"`
	Test  SubDatasetConfig `yaml:"test"`
}

// SampleConfig controls cropping and metadata normalization.
type SampleConfig struct {
	Crop      bool   `yaml:"crop"`
	PatchSize int    `yaml:"patch_size"`
	Seed      int64  `yaml:"seed"`
	Normalize string `yaml:"normalize"` // "none" or "scaled"
}

// Default returns the configuration used when a field is left unset.
func Default() *Config {
	return &Config{
		Dataloader: DataloaderConfig{
			NStep:         1000,
			ValNStep:      5,
			TestNStep:     5,
			BatchSize:     8,
			ValBatchSize:  64,
			TestBatchSize: 64,
		},
		Sample: SampleConfig{
			PatchSize: 132,
			Normalize: "none",
		},
		LogLevel: "info",
	}
}

// Load reads a YAML file over the defaults and then applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// Split returns the sub-dataset configuration by name.
func (c *Config) Split(name string) (SubDatasetConfig, error) {
	switch name {
	case SplitTrain:
		return c.Dataset.Train, nil
	case SplitVal:
		return c.Dataset.Val, nil
	case SplitTest:
		return c.Dataset.Test, nil
	}
	return SubDatasetConfig{}, errors.Wrapf(ErrInvalidConfig, "unknown split %q", name)
}

// BatchSize returns the configured batch size for a split.
func (c *Config) BatchSize(split string) int {
	switch split {
	case SplitVal:
		return c.Dataloader.ValBatchSize
	case SplitTest:
		return c.Dataloader.TestBatchSize
	}
	return c.Dataloader.BatchSize
}

// Steps returns the configured steps per virtual epoch for a split.
func (c *Config) Steps(split string) int {
	switch split {
	case SplitVal:
		return c.Dataloader.ValNStep
	case SplitTest:
		return c.Dataloader.TestNStep
	}
	return c.Dataloader.NStep
}

// Validate checks every configured split and the sample options.
func (c *Config) Validate() error {
	for _, name := range []string{SplitTrain, SplitVal, SplitTest} {
		s, _ := c.Split(name)
		if !s.Configured() {
			continue
		}
		if s.Width <= 0 || s.Height <= 0 || s.Width%2 != 0 || s.Height%2 != 0 {
			return errors.Wrapf(ErrInvalidConfig, "%s: geometry %dx%d must be positive and even", name, s.Width, s.Height)
		}
	}
	if c.Sample.Crop && c.Sample.PatchSize <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "sample.patch_size must be positive when crop is enabled, got %d", c.Sample.PatchSize)
	}
	switch c.Sample.Normalize {
	case "", "none", "scaled":
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown sample.normalize %q", c.Sample.Normalize)
	}
	if c.Workers < 0 {
		return errors.Wrapf(ErrInvalidConfig, "workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// applyEnv overrides selected fields from the environment.
func (c *Config) applyEnv() {
	c.Workers = getIntEnv("VTMSAMPLE_WORKERS", c.Workers)
	c.LogLevel = getEnv("VTMSAMPLE_LOG_LEVEL", c.LogLevel)
	c.MetricsAddr = getEnv("VTMSAMPLE_METRICS_ADDR", c.MetricsAddr)
	c.Sample.PatchSize = getIntEnv("VTMSAMPLE_PATCH_SIZE", c.Sample.PatchSize)
	c.Sample.Seed = int64(getIntEnv("VTMSAMPLE_SEED", int(c.Sample.Seed)))
}

// Helper functions to get environment variables with defaults

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
