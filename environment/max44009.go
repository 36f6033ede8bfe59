package environment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mklimuk/ambientlight"
)

// MAX44009BaseAddr is the 7-bit slave address with A0 tied low.
const MAX44009BaseAddr = 0b1001010

// register map
const (
	max44009RegIntStatus      byte = 0x00
	max44009RegIntEnable      byte = 0x01
	max44009RegConfiguration  byte = 0x02
	max44009RegLuxHigh        byte = 0x03
	max44009RegUpperThreshold byte = 0x05
	max44009RegLowerThreshold byte = 0x06
	max44009RegThresholdTimer byte = 0x07
)

// configuration register bits
const (
	max44009BitContinuous byte = 0b1000_0000
	max44009BitManual     byte = 0b0100_0000
	max44009BitCDR        byte = 0b0000_1000
	max44009MaskTIM       byte = 0b0000_0111
)

// lux per count at exponent 0
const max44009LuxResolution = 0.045

// ErrOperationNotAvailable is returned by manual-mode-only setters while the
// sensor is configured for automatic mode. No bus transaction is issued.
var ErrOperationNotAvailable = errors.New("max44009: operation only available in manual configuration mode")

// TransportError wraps a failure returned by the bus.
type TransportError struct {
	Register byte
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("max44009: bus transaction on register %#02x failed: %v", e.Register, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// LightSensor is implemented by anything able to report illuminance in lux.
type LightSensor interface {
	ReadLux(ctx context.Context) (float32, error)
}

var _ LightSensor = &MAX44009{}

// MAX44009 represents Analog Devices (Maxim) MAX44009 ambient light sensor.
// See: https://www.analog.com/media/en/technical-documentation/data-sheets/MAX44009.pdf
//
// The driver keeps a copy of the last configuration byte it wrote so that partial
// updates do not need a register read. The copy starts at the power-on default (0)
// and is only updated after the bus acknowledged the write.
//
// A MAX44009 is not safe for concurrent use.
//
// Typical usage:
//
//	s := NewMAX44009(bus, DefaultAddr())
//	lux, err := s.ReadLux(ctx)
type MAX44009 struct {
	transport ambientlight.RegisterBus
	addr      byte
	config    byte
}

// NewMAX44009 creates a driver on the given bus. It does not talk to the device.
func NewMAX44009(transport ambientlight.RegisterBus, sel AddrSelector) *MAX44009 {
	return &MAX44009{
		transport: transport,
		addr:      sel.Addr(),
	}
}

// Release hands the bus back to the caller. The driver must not be used afterwards.
func (s *MAX44009) Release() ambientlight.RegisterBus {
	transport := s.transport
	s.transport = nil
	return transport
}

// Addr returns the resolved 7-bit slave address.
func (s *MAX44009) Addr() byte {
	return s.addr
}

// Config returns the cached configuration register value.
func (s *MAX44009) Config() byte {
	return s.config
}

func (s *MAX44009) EnableInterrupt(ctx context.Context) error {
	return s.write(ctx, max44009RegIntEnable, 1)
}

func (s *MAX44009) DisableInterrupt(ctx context.Context) error {
	return s.write(ctx, max44009RegIntEnable, 0)
}

func (s *MAX44009) SetMeasurementMode(ctx context.Context, mode MeasurementMode) error {
	switch mode {
	case MeasurementModeContinuous:
		return s.writeConfig(ctx, s.config|max44009BitContinuous)
	default:
		return s.writeConfig(ctx, s.config&^max44009BitContinuous)
	}
}

func (s *MAX44009) SetConfigurationMode(ctx context.Context, mode ConfigurationMode) error {
	switch mode {
	case ConfigurationModeManual:
		return s.writeConfig(ctx, s.config|max44009BitManual)
	default:
		return s.writeConfig(ctx, s.config&^max44009BitManual)
	}
}

// SetIntegrationTime works in manual configuration mode only.
func (s *MAX44009) SetIntegrationTime(ctx context.Context, it IntegrationTime) error {
	if err := s.assertManualMode(); err != nil {
		return err
	}
	return s.writeConfig(ctx, s.config&^max44009MaskTIM|it.code())
}

// SetCurrentDivisionRatio works in manual configuration mode only.
func (s *MAX44009) SetCurrentDivisionRatio(ctx context.Context, cdr CurrentDivisionRatio) error {
	if err := s.assertManualMode(); err != nil {
		return err
	}
	switch cdr {
	case CurrentDivisionRatioOneEighth:
		return s.writeConfig(ctx, s.config|max44009BitCDR)
	default:
		return s.writeConfig(ctx, s.config&^max44009BitCDR)
	}
}

// Configure applies a full settings profile. Configuration mode goes first so that
// manual-only parameters are accepted; they are skipped in automatic mode.
func (s *MAX44009) Configure(ctx context.Context, settings Settings) error {
	err := s.SetConfigurationMode(ctx, settings.ConfigurationMode)
	if err != nil {
		return fmt.Errorf("could not set configuration mode: %w", err)
	}
	if settings.ConfigurationMode == ConfigurationModeManual {
		err = s.SetIntegrationTime(ctx, settings.IntegrationTime)
		if err != nil {
			return fmt.Errorf("could not set integration time: %w", err)
		}
		err = s.SetCurrentDivisionRatio(ctx, settings.CurrentDivisionRatio)
		if err != nil {
			return fmt.Errorf("could not set current division ratio: %w", err)
		}
	}
	err = s.SetMeasurementMode(ctx, settings.MeasurementMode)
	if err != nil {
		return fmt.Errorf("could not set measurement mode: %w", err)
	}
	if settings.Interrupt {
		err = s.EnableInterrupt(ctx)
	} else {
		err = s.DisableInterrupt(ctx)
	}
	if err != nil {
		return fmt.Errorf("could not set interrupt: %w", err)
	}
	return nil
}

// HasInterruptHappened reports the interrupt status register. Reading it clears
// the latch on the device.
func (s *MAX44009) HasInterruptHappened(ctx context.Context) (bool, error) {
	data, err := s.readRegister(ctx, max44009RegIntStatus)
	if err != nil {
		return false, err
	}
	return data != 0, nil
}

func (s *MAX44009) IsInterruptEnabled(ctx context.Context) (bool, error) {
	data, err := s.readRegister(ctx, max44009RegIntEnable)
	if err != nil {
		return false, err
	}
	return data != 0, nil
}

// ReadLux reads both lux registers in one transaction and converts them.
func (s *MAX44009) ReadLux(ctx context.Context) (float32, error) {
	var buf [2]byte
	err := s.transport.WriteReadFromAddr(ctx, s.addr, []byte{max44009RegLuxHigh}, buf[:])
	if err != nil {
		return 0, &TransportError{Register: max44009RegLuxHigh, Err: err}
	}
	return convertLux(buf[0], buf[1]), nil
}

func (s *MAX44009) ReadIntegrationTime(ctx context.Context) (IntegrationTime, error) {
	config, err := s.readRegister(ctx, max44009RegConfiguration)
	if err != nil {
		return 0, err
	}
	return integrationTimeFromCode(config & max44009MaskTIM), nil
}

func (s *MAX44009) ReadCurrentDivisionRatio(ctx context.Context) (CurrentDivisionRatio, error) {
	config, err := s.readRegister(ctx, max44009RegConfiguration)
	if err != nil {
		return 0, err
	}
	return decodeSettings(config).CurrentDivisionRatio, nil
}

func (s *MAX44009) ReadMeasurementMode(ctx context.Context) (MeasurementMode, error) {
	config, err := s.readRegister(ctx, max44009RegConfiguration)
	if err != nil {
		return 0, err
	}
	return decodeSettings(config).MeasurementMode, nil
}

func (s *MAX44009) ReadConfigurationMode(ctx context.Context) (ConfigurationMode, error) {
	config, err := s.readRegister(ctx, max44009RegConfiguration)
	if err != nil {
		return 0, err
	}
	return decodeSettings(config).ConfigurationMode, nil
}

// ReadSettings reads the configuration and interrupt enable registers.
func (s *MAX44009) ReadSettings(ctx context.Context) (Settings, error) {
	config, err := s.readRegister(ctx, max44009RegConfiguration)
	if err != nil {
		return Settings{}, err
	}
	settings := decodeSettings(config)
	settings.Interrupt, err = s.IsInterruptEnabled(ctx)
	if err != nil {
		return Settings{}, err
	}
	return settings, nil
}

func (s *MAX44009) writeConfig(ctx context.Context, config byte) error {
	err := s.write(ctx, max44009RegConfiguration, config)
	if err != nil {
		return err
	}
	s.config = config
	slog.DebugContext(ctx, "max44009 configuration written", "addr", fmt.Sprintf("%#x", s.addr), "config", fmt.Sprintf("%08b", config))
	return nil
}

func (s *MAX44009) write(ctx context.Context, reg byte, value byte) error {
	err := s.transport.WriteToAddr(ctx, s.addr, []byte{reg, value})
	if err != nil {
		return &TransportError{Register: reg, Err: err}
	}
	return nil
}

func (s *MAX44009) readRegister(ctx context.Context, reg byte) (byte, error) {
	var buf [1]byte
	err := s.transport.WriteReadFromAddr(ctx, s.addr, []byte{reg}, buf[:])
	if err != nil {
		return 0, &TransportError{Register: reg, Err: err}
	}
	return buf[0], nil
}

func (s *MAX44009) assertManualMode() error {
	if s.config&max44009BitManual == 0 {
		return ErrOperationNotAvailable
	}
	return nil
}

func decodeSettings(config byte) Settings {
	var settings Settings
	if config&max44009BitContinuous != 0 {
		settings.MeasurementMode = MeasurementModeContinuous
	}
	if config&max44009BitManual != 0 {
		settings.ConfigurationMode = ConfigurationModeManual
	}
	if config&max44009BitCDR != 0 {
		settings.CurrentDivisionRatio = CurrentDivisionRatioOneEighth
	}
	settings.IntegrationTime = integrationTimeFromCode(config & max44009MaskTIM)
	return settings
}

// convertLux decodes the 4-bit exponent / 8-bit mantissa reading. Exponent 15 is
// not clamped; 1<<15 * 0xFF still fits the accumulator.
func convertLux(msb, lsb byte) float32 {
	mantissa := uint32(msb&0x0F)<<4 | uint32(lsb&0x0F)
	exp := (msb & 0xF0) >> 4
	return float32((uint32(1)<<exp)*mantissa) * max44009LuxResolution
}
