package config

import (
	"time"
)

// Config is the full configuration surface of graphindex. The [graph] stanza
// is mandatory; everything else has working defaults.
type Config struct {
	Graph   Graph   `toml:"graph"`
	Profile string  `toml:"profile"`
	Runner  Runner  `toml:"runner"`
	Journal Journal `toml:"journal"`
	Watch   Watch   `toml:"watch"`
	Tracing Tracing `toml:"tracing"`
}

// Graph mirrors the stanza consumed by the wider graph tooling. The contents
// of grpc_server are passed through untouched.
type Graph struct {
	Cls        string                 `toml:"cls"`
	GRPCServer map[string]interface{} `toml:"grpc_server"`
}

type Runner struct {
	// BinDir is the root containing per-profile tool builds
	// (<bin_dir>/<profile>/<tool>). Empty means resolve tools from PATH.
	BinDir  string        `toml:"bin_dir"`
	Timeout time.Duration `toml:"timeout"`
}

type Journal struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Watch struct {
	Debounce    time.Duration `toml:"debounce"`
	Exclude     []string      `toml:"exclude"`
	MinInterval time.Duration `toml:"min_interval"`
}

type Tracing struct {
	// Endpoint of an OTLP gRPC collector. Empty disables tracing.
	Endpoint    string  `toml:"endpoint"`
	SampleRatio float64 `toml:"sample_ratio"`
}
