package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mklimuk/ambientlight/environment"
)

// Build metadata, injected by the dev tool.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var ErrInvalidAdapter = errors.New("invalid adapter")

const (
	AdapterMCP2221 = "mcp2221"
	AdapterGeneric = "generic"
	AdapterNanoPi  = "nanopi"
	AdapterMock    = "mock"
)

// Config describes how to reach a MAX44009 and how to configure it.
//
// Example:
//
//	adapter: generic
//	device: /dev/i2c-1
//	a0: false
//	settings:
//	  measurement_mode: continuous
//	  configuration_mode: manual
//	  integration_time: 100ms
//	  current_division_ratio: 1/8
//	  interrupt: true
type Config struct {
	Adapter  string               `yaml:"adapter"`
	Device   string               `yaml:"device"`
	Bus      int                  `yaml:"bus"`
	A0       *bool                `yaml:"a0,omitempty"`
	Settings environment.Settings `yaml:"settings"`
}

func Default() *Config {
	return &Config{
		Adapter: AdapterMCP2221,
		Device:  "/dev/i2c-1",
		Bus:     -1,
	}
}

// Load reads a YAML profile on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	conf := Default()
	err := yaml.Unmarshal(data, conf)
	if err != nil {
		return nil, fmt.Errorf("could not parse config: %w", err)
	}
	err = conf.Validate()
	if err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Config) Validate() error {
	switch c.Adapter {
	case AdapterMCP2221, AdapterGeneric, AdapterNanoPi, AdapterMock:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidAdapter, c.Adapter)
}

// AddrSelector maps the a0 entry to the driver address selector.
func (c *Config) AddrSelector() environment.AddrSelector {
	if c.A0 == nil {
		return environment.DefaultAddr()
	}
	return environment.AlternativeAddr(*c.A0)
}
