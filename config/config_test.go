package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
dataloader:
  n_step: 200
  batch_size: 4
dataset:
  train:
    decoded_yuv_filepath: out/foreman_QP32_rec.yuv
    original_yuv_file_path: data/foreman.yuv
    vtm_trace_filepath: out/foreman_QP32.csv
    width: 352
    height: 288
sample:
  crop: true
  patch_size: 64
  normalize: scaled
workers: 2
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadOverDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	require.Equal(t, 200, cfg.Dataloader.NStep)
	require.Equal(t, 4, cfg.Dataloader.BatchSize)
	// untouched fields keep defaults
	require.Equal(t, 64, cfg.Dataloader.ValBatchSize)
	require.Equal(t, "info", cfg.LogLevel)

	train, err := cfg.Split(SplitTrain)
	require.NoError(t, err)
	require.Equal(t, "data/foreman.yuv", train.OriginalYUVFilePath)
	require.Equal(t, 352, train.Width)
	require.True(t, train.Configured())

	val, err := cfg.Split(SplitVal)
	require.NoError(t, err)
	require.False(t, val.Configured())

	require.True(t, cfg.Sample.Crop)
	require.Equal(t, 64, cfg.Sample.PatchSize)
	require.NoError(t, cfg.Validate())

	require.Equal(t, 4, cfg.BatchSize(SplitTrain))
	require.Equal(t, 64, cfg.BatchSize(SplitTest))
	require.Equal(t, 5, cfg.Steps(SplitVal))
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("VTMSAMPLE_WORKERS", "7")
	t.Setenv("VTMSAMPLE_PATCH_SIZE", "32")
	t.Setenv("VTMSAMPLE_SEED", "not-a-number")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Workers)
	require.Equal(t, 32, cfg.Sample.PatchSize)
	require.Equal(t, int64(0), cfg.Sample.Seed)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default().Dataloader, cfg.Dataloader)
	require.NoError(t, cfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "dataset: [unterminated"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"odd width": func(c *Config) {
			c.Dataset.Val = SubDatasetConfig{DecodedYUVFilepath: "a.yuv", Width: 351, Height: 288}
		},
		"zero height": func(c *Config) {
			c.Dataset.Test = SubDatasetConfig{DecodedYUVFilepath: "a.yuv", Width: 352}
		},
		"crop without patch": func(c *Config) {
			c.Sample.Crop = true
			c.Sample.PatchSize = 0
		},
		"bad normalize": func(c *Config) { c.Sample.Normalize = "zscore" },
		"negative workers": func(c *Config) { c.Workers = -1 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}

	_, err := Default().Split("holdout")
	require.True(t, errors.Is(err, ErrInvalidConfig))
}
