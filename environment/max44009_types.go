package environment

import (
	"fmt"
	"time"
)

var ErrUnknownSetting = fmt.Errorf("unknown setting value")

// MeasurementMode selects how often the MAX44009 converts.
type MeasurementMode uint8

const (
	// MeasurementModeOnceEvery800ms measures every 800ms regardless of the integration
	// time. Power-on default, lowest supply current.
	MeasurementModeOnceEvery800ms MeasurementMode = iota
	// MeasurementModeContinuous starts the next conversion as soon as one finishes.
	// The cadence depends on the integration time.
	MeasurementModeContinuous
)

func (m MeasurementMode) String() string {
	switch m {
	case MeasurementModeContinuous:
		return "continuous"
	default:
		return "once-every-800ms"
	}
}

func (m MeasurementMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *MeasurementMode) UnmarshalText(text []byte) error {
	v, err := ParseMeasurementMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func ParseMeasurementMode(s string) (MeasurementMode, error) {
	switch s {
	case "once-every-800ms", "800ms", "default":
		return MeasurementModeOnceEvery800ms, nil
	case "continuous":
		return MeasurementModeContinuous, nil
	}
	return 0, fmt.Errorf("measurement mode %q: %w", s, ErrUnknownSetting)
}

// ConfigurationMode decides whether integration time and current division ratio
// are picked by the on-chip algorithm or by the host.
type ConfigurationMode uint8

const (
	// ConfigurationModeAutomatic lets the sensor select integration time (100ms - 800ms)
	// and current division ratio. Power-on default.
	ConfigurationModeAutomatic ConfigurationMode = iota
	// ConfigurationModeManual lets the host select integration time and current division ratio.
	ConfigurationModeManual
)

func (m ConfigurationMode) String() string {
	switch m {
	case ConfigurationModeManual:
		return "manual"
	default:
		return "automatic"
	}
}

func (m ConfigurationMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *ConfigurationMode) UnmarshalText(text []byte) error {
	v, err := ParseConfigurationMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func ParseConfigurationMode(s string) (ConfigurationMode, error) {
	switch s {
	case "automatic", "auto":
		return ConfigurationModeAutomatic, nil
	case "manual":
		return ConfigurationModeManual, nil
	}
	return 0, fmt.Errorf("configuration mode %q: %w", s, ErrUnknownSetting)
}

// CurrentDivisionRatio is the share of photodiode current that reaches the ADC.
type CurrentDivisionRatio uint8

const (
	// CurrentDivisionRatioOne sends all the photodiode current to the ADC. Power-on default.
	CurrentDivisionRatioOne CurrentDivisionRatio = iota
	// CurrentDivisionRatioOneEighth sends 1/8 of the current to the ADC, for high brightness.
	CurrentDivisionRatioOneEighth
)

func (r CurrentDivisionRatio) String() string {
	switch r {
	case CurrentDivisionRatioOneEighth:
		return "1/8"
	default:
		return "1"
	}
}

func (r CurrentDivisionRatio) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *CurrentDivisionRatio) UnmarshalText(text []byte) error {
	v, err := ParseCurrentDivisionRatio(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func ParseCurrentDivisionRatio(s string) (CurrentDivisionRatio, error) {
	switch s {
	case "1", "one":
		return CurrentDivisionRatioOne, nil
	case "1/8", "one-eighth":
		return CurrentDivisionRatioOneEighth, nil
	}
	return 0, fmt.Errorf("current division ratio %q: %w", s, ErrUnknownSetting)
}

// IntegrationTime values equal the 3-bit TIM code of the configuration register.
// Times below 100ms are only reachable in manual mode.
type IntegrationTime uint8

const (
	IntegrationTime800ms IntegrationTime = iota
	IntegrationTime400ms
	IntegrationTime200ms
	IntegrationTime100ms
	IntegrationTime50ms
	IntegrationTime25ms
	IntegrationTime12_5ms
	IntegrationTime6_25ms
)

var integrationTimes = [...]struct {
	name     string
	duration time.Duration
}{
	IntegrationTime800ms:  {"800ms", 800 * time.Millisecond},
	IntegrationTime400ms:  {"400ms", 400 * time.Millisecond},
	IntegrationTime200ms:  {"200ms", 200 * time.Millisecond},
	IntegrationTime100ms:  {"100ms", 100 * time.Millisecond},
	IntegrationTime50ms:   {"50ms", 50 * time.Millisecond},
	IntegrationTime25ms:   {"25ms", 25 * time.Millisecond},
	IntegrationTime12_5ms: {"12.5ms", 12500 * time.Microsecond},
	IntegrationTime6_25ms: {"6.25ms", 6250 * time.Microsecond},
}

func (it IntegrationTime) String() string {
	if int(it) >= len(integrationTimes) {
		return fmt.Sprintf("IntegrationTime(%d)", uint8(it))
	}
	return integrationTimes[it].name
}

func (it IntegrationTime) Duration() time.Duration {
	if int(it) >= len(integrationTimes) {
		return 0
	}
	return integrationTimes[it].duration
}

func (it IntegrationTime) MarshalText() ([]byte, error) {
	return []byte(it.String()), nil
}

func (it *IntegrationTime) UnmarshalText(text []byte) error {
	v, err := ParseIntegrationTime(string(text))
	if err != nil {
		return err
	}
	*it = v
	return nil
}

func ParseIntegrationTime(s string) (IntegrationTime, error) {
	for code, entry := range integrationTimes {
		if entry.name == s {
			return IntegrationTime(code), nil
		}
	}
	return 0, fmt.Errorf("integration time %q: %w", s, ErrUnknownSetting)
}

// code returns the TIM bits for the integration time.
func (it IntegrationTime) code() byte {
	switch it {
	case IntegrationTime800ms:
		return 0b000
	case IntegrationTime400ms:
		return 0b001
	case IntegrationTime200ms:
		return 0b010
	case IntegrationTime100ms:
		return 0b011
	case IntegrationTime50ms:
		return 0b100
	case IntegrationTime25ms:
		return 0b101
	case IntegrationTime12_5ms:
		return 0b110
	case IntegrationTime6_25ms:
		return 0b111
	}
	panic(fmt.Sprintf("max44009: invalid integration time %d", uint8(it)))
}

func integrationTimeFromCode(code byte) IntegrationTime {
	switch code {
	case 0b000:
		return IntegrationTime800ms
	case 0b001:
		return IntegrationTime400ms
	case 0b010:
		return IntegrationTime200ms
	case 0b011:
		return IntegrationTime100ms
	case 0b100:
		return IntegrationTime50ms
	case 0b101:
		return IntegrationTime25ms
	case 0b110:
		return IntegrationTime12_5ms
	case 0b111:
		return IntegrationTime6_25ms
	}
	// TIM is a 3-bit field
	panic(fmt.Sprintf("max44009: integration time code %#x out of range", code))
}

// AddrSelector picks the MAX44009 slave address. The A0 pin drives bit 0.
type AddrSelector struct {
	alternative bool
	a0          bool
}

// DefaultAddr selects the base address.
func DefaultAddr() AddrSelector {
	return AddrSelector{}
}

// AlternativeAddr selects the address with bit 0 set to the A0 pin state.
func AlternativeAddr(a0 bool) AddrSelector {
	return AddrSelector{alternative: true, a0: a0}
}

func (s AddrSelector) Addr() byte {
	if s.alternative && s.a0 {
		return MAX44009BaseAddr | 0x01
	}
	return MAX44009BaseAddr
}

// Settings is a full configuration profile of the sensor.
type Settings struct {
	MeasurementMode      MeasurementMode      `yaml:"measurement_mode"`
	ConfigurationMode    ConfigurationMode    `yaml:"configuration_mode"`
	IntegrationTime      IntegrationTime      `yaml:"integration_time"`
	CurrentDivisionRatio CurrentDivisionRatio `yaml:"current_division_ratio"`
	Interrupt            bool                 `yaml:"interrupt"`
}
