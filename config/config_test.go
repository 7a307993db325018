package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-sigverify/common"
	"github.com/nvr-ai/go-sigverify/images"
	"github.com/nvr-ai/go-sigverify/render"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 100, cfg.Threshold)
	assert.Equal(t, 500, cfg.Features.MaxKeypoints)
	assert.InDelta(t, 0.75, cfg.Matcher.Ratio, 1e-9)
	assert.False(t, cfg.Matcher.AllowSharedTrain)
	assert.Equal(t, images.SmoothingGaussian, cfg.Normalize.Smoothing)
	assert.Equal(t, 5, cfg.Normalize.KernelSize)
	assert.Equal(t, 20, cfg.Render.Limit)
	assert.Equal(t, 1000, cfg.Render.Width)
	assert.Equal(t, render.DefaultOutputPath, cfg.OutputPath)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sigverify.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
threshold: 60
normalize:
  smoothing: box
  kernel_size: 3
features:
  max_keypoints: 800
render:
  limit: 10
  sort_by_distance: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Threshold)
	assert.Equal(t, images.SmoothingBox, cfg.Normalize.Smoothing)
	assert.Equal(t, 3, cfg.Normalize.KernelSize)
	assert.Equal(t, 800, cfg.Features.MaxKeypoints)
	// Untouched keys keep their defaults.
	assert.Equal(t, 8, cfg.Features.Levels)
	assert.Equal(t, 10, cfg.Render.Limit)
	assert.True(t, cfg.Render.SortByDistance)
	assert.Equal(t, 1000, cfg.Render.Width)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvThreshold, "150")
	t.Setenv(EnvMaxKeypoints, "1000")
	t.Setenv(EnvRatio, "0.7")
	t.Setenv(EnvOutput, "out/result.png")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 150, cfg.Threshold)
	assert.Equal(t, 1000, cfg.Features.MaxKeypoints)
	assert.InDelta(t, 0.7, cfg.Matcher.Ratio, 1e-9)
	assert.Equal(t, "out/result.png", cfg.OutputPath)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("threshold: [1, 2"), 0o644))
	_, err = Load(bad)
	assert.True(t, common.IsKind(err, common.KindConfig))

	t.Setenv(EnvThreshold, "many")
	_, err = Load("")
	assert.True(t, common.IsKind(err, common.KindConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold below range", func(c *Config) { c.Threshold = 9 }},
		{"threshold above range", func(c *Config) { c.Threshold = 301 }},
		{"ratio", func(c *Config) { c.Matcher.Ratio = 1 }},
		{"max keypoints", func(c *Config) { c.Features.MaxKeypoints = 0 }},
		{"kernel", func(c *Config) { c.Normalize.KernelSize = 4 }},
		{"render limit", func(c *Config) { c.Render.Limit = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.True(t, common.IsKind(cfg.Validate(), common.KindConfig))
		})
	}

	cfg := Default()
	cfg.Threshold = 5
	assert.NoError(t, cfg.ValidateStages())
}
