// Package config loads stablepay settings from a TOML or YAML file and
// the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/vitwit/stablepay/chains"
	"github.com/vitwit/stablepay/types"
	"github.com/vitwit/stablepay/utils"
)

// Environment variables
const (
	EnvConfig    = "STABLEPAY_CONFIG"
	EnvLogLevel  = "STABLEPAY_LOG_LEVEL"
	EnvRPCPrefix = "STABLEPAY_RPC_"
)

// searchFiles is the lookup order in the working directory when no path
// is given
var searchFiles = []string{"stablepay.toml", "stablepay.yaml", "stablepay.yml"}

// Config is the file level configuration
type Config struct {
	LogLevel          string  `toml:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	TimeoutSeconds    int     `toml:"timeout_seconds" yaml:"timeout_seconds" validate:"gte=0"`
	Workers           int     `toml:"workers" yaml:"workers" validate:"gte=0,lte=64"`
	RequestsPerSecond float64 `toml:"rpc_requests_per_second" yaml:"rpc_requests_per_second" validate:"gte=0"`

	Defaults Defaults `toml:"defaults" yaml:"defaults"`

	// RPC maps chain keys to endpoints replacing the built-in defaults.
	RPC map[string]string `toml:"rpc" yaml:"rpc" validate:"dive,url"`

	// Chains and Tokens extend the built-in registry. Tokens are keyed
	// by chain key.
	Chains []types.ChainConfig            `toml:"chains" yaml:"chains" validate:"dive"`
	Tokens map[string][]types.TokenConfig `toml:"tokens" yaml:"tokens" validate:"dive,dive"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-" yaml:"-"`
}

// Defaults replace the built-in request defaults
type Defaults struct {
	Chain            string   `toml:"chain" yaml:"chain"`
	Token            string   `toml:"token" yaml:"token"`
	TimeWindow       string   `toml:"time_window" yaml:"time_window"`
	MinConfirmations *uint64  `toml:"min_confirmations" yaml:"min_confirmations"`
	Tolerance        *float64 `toml:"tolerance" yaml:"tolerance" validate:"omitempty,gte=0,lte=1"`
}

// Default returns an empty configuration: every setting at its built-in
// default. LogLevel stays empty so callers can pick their own.
func Default() *Config {
	return &Config{
		RPC: map[string]string{},
	}
}

// Load reads the configuration at path. An empty path falls back to
// $STABLEPAY_CONFIG, then to the first of stablepay.toml, stablepay.yaml
// and stablepay.yml found in the working directory. Without any file the
// built-in defaults are used. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		for _, name := range searchFiles {
			if _, err := os.Stat(name); err == nil {
				path = name
				break
			}
		}
	}

	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv(os.Environ())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes a single TOML or YAML file, chosen by extension
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config %s: unsupported format %q, use .toml, .yaml or .yml", path, ext)
	}

	if cfg.RPC == nil {
		cfg.RPC = map[string]string{}
	}
	cfg.Path = path
	return cfg, nil
}

// applyEnv overlays STABLEPAY_LOG_LEVEL and STABLEPAY_RPC_<CHAIN> from
// environ, given as KEY=value pairs
func (c *Config) applyEnv(environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" {
			continue
		}
		switch {
		case key == EnvLogLevel:
			c.LogLevel = strings.ToLower(value)
		case strings.HasPrefix(key, EnvRPCPrefix) && len(key) > len(EnvRPCPrefix):
			c.RPC[strings.ToLower(strings.TrimPrefix(key, EnvRPCPrefix))] = value
		}
	}
}

// Validate checks field ranges and that extra chains and tokens form a
// valid registry
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Registry(chains.Default()); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Registry returns base extended with the configured chains and tokens
func (c *Config) Registry(base *chains.Registry) (*chains.Registry, error) {
	if len(c.Chains) == 0 && len(c.Tokens) == 0 {
		return base, nil
	}
	return base.Extend(c.Chains, c.Tokens)
}

// Timeout is the per call RPC timeout, zero when unset
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RequestDefaults returns a request template carrying the configured
// defaults on top of the built-in ones
func (c *Config) RequestDefaults() types.VerifyRequest {
	req := types.NewVerifyRequest("", 0)
	d := c.Defaults
	if d.Chain != "" {
		req.Chain = d.Chain
	}
	if d.Token != "" {
		req.Token = d.Token
	}
	if d.TimeWindow != "" {
		req.TimeWindow = d.TimeWindow
	}
	if d.MinConfirmations != nil {
		req.MinConfirmations = *d.MinConfirmations
	}
	if d.Tolerance != nil {
		req.Tolerance = *d.Tolerance
	}
	return req
}
