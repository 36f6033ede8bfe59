package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/ambientlight/environment"
)

func TestParse(t *testing.T) {
	conf, err := Parse([]byte(`
adapter: generic
device: /dev/i2c-0
a0: true
settings:
  measurement_mode: continuous
  configuration_mode: manual
  integration_time: 12.5ms
  current_division_ratio: 1/8
  interrupt: true
`))
	require.NoError(t, err)
	assert.Equal(t, AdapterGeneric, conf.Adapter)
	assert.Equal(t, "/dev/i2c-0", conf.Device)
	assert.Equal(t, -1, conf.Bus)
	assert.Equal(t, byte(0b1001011), conf.AddrSelector().Addr())
	assert.Equal(t, environment.Settings{
		MeasurementMode:      environment.MeasurementModeContinuous,
		ConfigurationMode:    environment.ConfigurationModeManual,
		IntegrationTime:      environment.IntegrationTime12_5ms,
		CurrentDivisionRatio: environment.CurrentDivisionRatioOneEighth,
		Interrupt:            true,
	}, conf.Settings)
}

func TestParse_Defaults(t *testing.T) {
	conf, err := Parse([]byte(`settings: {}`))
	require.NoError(t, err)
	assert.Equal(t, Default(), conf)
	assert.Equal(t, byte(0b1001010), conf.AddrSelector().Addr())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"adapter", "adapter: ftdi"},
		{"integration time", "settings:\n  integration_time: 3ms"},
		{"current division ratio", "settings:\n  current_division_ratio: 1/4"},
		{"measurement mode", "settings:\n  measurement_mode: sometimes"},
		{"configuration mode", "settings:\n  configuration_mode: semi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
	_, err := Parse([]byte("adapter: ftdi"))
	assert.ErrorIs(t, err, ErrInvalidAdapter)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "max44009.yaml")
	require.NoError(t, os.WriteFile(path, []byte("adapter: mock\n"), 0o600))
	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, AdapterMock, conf.Adapter)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSettingsRoundTrip(t *testing.T) {
	settings := environment.Settings{
		ConfigurationMode:    environment.ConfigurationModeManual,
		IntegrationTime:      environment.IntegrationTime6_25ms,
		CurrentDivisionRatio: environment.CurrentDivisionRatioOneEighth,
	}
	out, err := yaml.Marshal(settings)
	require.NoError(t, err)
	assert.Contains(t, string(out), "configuration_mode: manual")
	assert.Contains(t, string(out), "integration_time: 6.25ms")
	assert.Contains(t, string(out), "current_division_ratio: 1/8")

	var decoded environment.Settings
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, settings, decoded)
}
