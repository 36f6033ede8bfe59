package adapter

import (
	"context"
	"fmt"
)

const gpioPins = 4

type GPIOMode byte

const (
	GPIOModeOut         GPIOMode = 0b00000000
	GPIOModeIn          GPIOMode = 0b00001000
	GPIOModeNoOperation GPIOMode = 0xEF
)

func (m GPIOMode) String() string {
	switch m {
	case GPIOModeIn:
		return "INPUT"
	case GPIOModeOut:
		return "OUTPUT"
	default:
		return "NOOP"
	}
}

func (m GPIOMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// GPIODesignation selects the pin function. Values other than GPIOOperation
// mean different things on every pin.
type GPIODesignation byte

const (
	GPIOOperation GPIODesignation = 0b00000000

	GPIO0LedUartRx GPIODesignation = 0b00000001
	GPIO0SSPND     GPIODesignation = 0b00000010

	GPIO1ClockOutput        GPIODesignation = 0b00000001
	GPIO1ADC1               GPIODesignation = 0b00000010
	GPIO1LedUartTx          GPIODesignation = 0b00000011
	GPIO1InterruptDetection GPIODesignation = 0b00000100

	GPIO2ClockOutput GPIODesignation = 0b00000001
	GPIO2ADC2        GPIODesignation = 0b00000010
	GPIO2DAC1        GPIODesignation = 0b00000011

	GPIO3LEDI2C GPIODesignation = 0b00000001
	GPIO3ADC3   GPIODesignation = 0b00000010
	GPIO3DAC2   GPIODesignation = 0b00000011
)

const (
	gpioModeMask      = 0b00001000
	gpioOperationMask = 0b00000111
)

type GPIOState struct {
	Mode  GPIOMode `yaml:"mode"`
	Value byte     `yaml:"value"`
}

// MCP2221GPIOValues is indexed by GP pin number.
type MCP2221GPIOValues [gpioPins]GPIOState

type GPIOParameter struct {
	Mode        GPIOMode        `yaml:"mode"`
	Designation GPIODesignation `yaml:"designation"`
}

// MCP2221GPIOParameters is indexed by GP pin number.
type MCP2221GPIOParameters [gpioPins]GPIOParameter

// SetGPIOParameters writes the GP settings to flash. They take effect after a power cycle.
func (d *MCP2221) SetGPIOParameters(ctx context.Context, params MCP2221GPIOParameters) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.prepare(cmdWriteFlash)
	d.request[1] = flashSectionGP
	for i, p := range params {
		d.request[2+i] = byte(p.Designation) | byte(p.Mode)
	}
	err := d.exchange(ctx)
	if err != nil {
		return fmt.Errorf("set GP parameters command write failed: %w", err)
	}
	if d.response[1] != statusOK {
		return ErrCommandFailed
	}
	return nil
}

func (d *MCP2221) GetGPIOParameters(ctx context.Context) (MCP2221GPIOParameters, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	var params MCP2221GPIOParameters
	d.prepare(cmdReadFlash)
	d.request[1] = flashSectionGP
	err := d.exchange(ctx)
	if err != nil {
		return params, fmt.Errorf("get GP parameters command write failed: %w", err)
	}
	if d.response[1] != statusOK {
		return params, ErrCommandUnsupported
	}
	for i := range params {
		setting := d.response[4+i]
		params[i] = GPIOParameter{
			Mode:        GPIOMode(setting & gpioModeMask),
			Designation: GPIODesignation(setting & gpioOperationMask),
		}
	}
	return params, nil
}

func (d *MCP2221) ReadGPIO(ctx context.Context) (MCP2221GPIOValues, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	var values MCP2221GPIOValues
	d.prepare(cmdGetGPIOValues)
	err := d.exchange(ctx)
	if err != nil {
		return values, fmt.Errorf("read GPIO values command write failed: %w", err)
	}
	if d.response[1] != statusOK {
		return values, ErrCommandFailed
	}
	for i := range values {
		value, direction := d.response[2+2*i], d.response[3+2*i]
		values[i] = GPIOState{Mode: GPIOModeNoOperation, Value: value}
		if direction != gpioNotAssigned {
			values[i].Mode = GPIOMode(direction << 3)
		}
	}
	return values, nil
}

// ReadPin returns the logic level of a GP pin configured as GPIO input.
func (d *MCP2221) ReadPin(ctx context.Context, pin int) (bool, error) {
	if pin < 0 || pin >= gpioPins {
		return false, fmt.Errorf("no such pin: GP%d", pin)
	}
	values, err := d.ReadGPIO(ctx)
	if err != nil {
		return false, err
	}
	state := values[pin]
	if state.Mode != GPIOModeIn {
		return false, fmt.Errorf("GP%d is not configured as input (%s)", pin, state.Mode)
	}
	return state.Value != 0, nil
}
