package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"graphindex/internal/core/errors"
)

const DefaultProfile = "release"

// Default returns the configuration used when no config file is given,
// equivalent to a file containing only `[graph]` with cls = "local".
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a TOML configuration file. The top-level [graph] stanza must be
// present; its absence is a configuration error reported before any graph
// file is inspected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfiguration, "read configuration file")
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfiguration, "decode configuration file")
	}

	if !md.IsDefined("graph") {
		return nil, errors.AddContext(
			errors.New(errors.CodeConfiguration, `no "graph" stanza found in configuration file`),
			errors.CtxPath, path,
		)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Graph.Cls) == "" {
		cfg.Graph.Cls = "local"
	}
	if cfg.Graph.GRPCServer == nil {
		cfg.Graph.GRPCServer = map[string]interface{}{}
	}

	if strings.TrimSpace(cfg.Profile) == "" {
		cfg.Profile = DefaultProfile
	}

	if strings.TrimSpace(cfg.Journal.Path) == "" {
		cfg.Journal.Path = "data/state/journal.db"
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MinInterval == 0 {
		cfg.Watch.MinInterval = 5 * time.Second
	}

	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = 1.0
	}
}

func validate(cfg *Config) error {
	if cfg.Runner.Timeout < 0 {
		return errors.New(errors.CodeConfiguration, "runner timeout must not be negative")
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		return errors.New(errors.CodeConfiguration, "tracing sample_ratio must be within [0, 1]")
	}
	return nil
}
