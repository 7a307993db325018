// Package config aggregates the tunables of a verification run.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-sigverify/common"
	"github.com/nvr-ai/go-sigverify/decision"
	"github.com/nvr-ai/go-sigverify/features"
	"github.com/nvr-ai/go-sigverify/images"
	"github.com/nvr-ai/go-sigverify/matcher"
	"github.com/nvr-ai/go-sigverify/render"
)

// Environment variables applied over the file configuration.
const (
	EnvThreshold    = "SIGVERIFY_THRESHOLD"
	EnvMaxKeypoints = "SIGVERIFY_MAX_KEYPOINTS"
	EnvRatio        = "SIGVERIFY_RATIO"
	EnvOutput       = "SIGVERIFY_OUTPUT"
)

// Config holds every parameter of a verification run.
type Config struct {
	// Normalize controls smoothing of both inputs.
	Normalize images.NormalizeOptions `yaml:"normalize"`
	// Features holds the ORB parameters.
	Features features.Config `yaml:"features"`
	// Matcher holds the ratio test parameters.
	Matcher matcher.Config `yaml:"matcher"`
	// Threshold is the accepted-match count at which the verdict becomes
	// MATCH. Default: 100.
	Threshold int `yaml:"threshold"`
	// Render controls the composite.
	Render render.Options `yaml:"render"`
	// OutputPath is where the composite is written. Default: match_result.png.
	OutputPath string `yaml:"output_path"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Normalize:  images.DefaultNormalizeOptions(),
		Features:   features.DefaultConfig(),
		Matcher:    matcher.DefaultConfig(),
		Threshold:  decision.DefaultThreshold,
		Render:     render.DefaultOptions(),
		OutputPath: render.DefaultOutputPath,
	}
}

// Load reads the optional YAML file at path over the defaults, then applies
// environment overrides. A .env file in the working directory is loaded first
// when present. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, common.ConfigError("config", "cannot parse %s: %v", path, err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if s := os.Getenv(EnvThreshold); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return common.ConfigError("config", "%s must be an integer, got %q", EnvThreshold, s)
		}
		c.Threshold = n
	}
	if s := os.Getenv(EnvMaxKeypoints); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return common.ConfigError("config", "%s must be an integer, got %q", EnvMaxKeypoints, s)
		}
		c.Features.MaxKeypoints = n
	}
	if s := os.Getenv(EnvRatio); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return common.ConfigError("config", "%s must be a number, got %q", EnvRatio, s)
		}
		c.Matcher.Ratio = f
	}
	if s := os.Getenv(EnvOutput); s != "" {
		c.OutputPath = s
	}
	return nil
}

// Validate checks every section. The threshold must lie in the range the
// presentation layer offers.
func (c Config) Validate() error {
	if err := decision.ValidateThreshold(c.Threshold); err != nil {
		return err
	}
	return c.ValidateStages()
}

// ValidateStages checks the stage parameters only. The threshold is left to
// the decision stage, which accepts any positive value.
func (c Config) ValidateStages() error {
	if err := c.Normalize.Validate(); err != nil {
		return err
	}
	if err := c.Features.Validate(); err != nil {
		return err
	}
	if err := c.Matcher.Validate(); err != nil {
		return err
	}
	return c.Render.Validate()
}
