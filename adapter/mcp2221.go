package adapter

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/karalabe/hid"

	"github.com/mklimuk/ambientlight"
	"github.com/mklimuk/ambientlight/snsctx"
)

const VendorID = 0x04D8
const ProductID = 0x00DD

var (
	ErrCommandUnsupported = errors.New("unsupported command")
	ErrCommandFailed      = errors.New("command failed")
	ErrDeviceNotFound     = errors.New("MCP2221 device not found")
	ErrAmbiguousDevice    = errors.New("more than one MCP2221 attached, select one by index")
)

// HID report layout
const (
	reportSize      = 64
	maxI2CTransfer  = 60
	statusOK   byte = 0x00
	statusBusy byte = 0x01

	cmdStatusSetParameters byte = 0x10
	cmdI2CGetData          byte = 0x40
	cmdGetGPIOValues       byte = 0x51
	cmdI2CWriteData        byte = 0x90
	cmdI2CReadData         byte = 0x91
	cmdReadFlash           byte = 0xB0
	cmdWriteFlash          byte = 0xB1

	flashSectionGP     byte = 0x01
	cancelI2CTransfer  byte = 0x10
	i2cEngineReadError byte = 0x41
	invalidDataSize    byte = 127
	gpioNotAssigned    byte = 0xEF
)

var _ ambientlight.I2CBus = &MCP2221{}

// hidDevice is the part of *hid.Device the adapter uses.
type hidDevice interface {
	Write(b []byte) (int, error)
	Read(b []byte) (int, error)
	Close() error
}

type hidOpener func(index int) (hidDevice, error)

// MCP2221 drives the Microchip USB to I2C/GPIO bridge over HID reports.
// The device is opened for every command so that other tools may use it in between.
type MCP2221 struct {
	mx           sync.Mutex
	open         hidOpener
	index        int
	request      [reportSize]byte
	response     [reportSize]byte
	responseWait time.Duration
}

type MCP2221Option func(*MCP2221)

// WithDeviceIndex selects one of several attached adapters in enumeration order.
func WithDeviceIndex(index int) MCP2221Option {
	return func(d *MCP2221) {
		d.index = index
	}
}

// WithResponseWait sets the delay between sending a command and reading its response.
func WithResponseWait(wait time.Duration) MCP2221Option {
	return func(d *MCP2221) {
		d.responseWait = wait
	}
}

func withOpener(open hidOpener) MCP2221Option {
	return func(d *MCP2221) {
		d.open = open
	}
}

func NewMCP2221(opts ...MCP2221Option) *MCP2221 {
	d := &MCP2221{
		open:         openHID,
		index:        -1,
		responseWait: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type MCP2221Status struct {
	I2CDataBufferCounter   int    `yaml:"data_buffer_counter"`
	I2CSpeedDivider        int    `yaml:"speed_divider"`
	I2CTimeout             int    `yaml:"timeout"`
	CurrentAddress         string `yaml:"current_address"`
	LastWriteRequestedSize uint16 `yaml:"last_write_requested"`
	LastWriteSentSize      uint16 `yaml:"last_write_sent"`
	ReadPending            int    `yaml:"read_pending"`
}

// Init checks that the selected adapter can be opened.
func (d *MCP2221) Init() error {
	dev, err := d.open(d.index)
	if err != nil {
		return err
	}
	return dev.Close()
}

func (d *MCP2221) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.writeToAddr(ctx, address, buffer)
}

func (d *MCP2221) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.readFromAddr(ctx, address, buffer)
}

// WriteReadFromAddr writes the register pointer and reads the response while holding
// the adapter, so no other transfer can get in between.
func (d *MCP2221) WriteReadFromAddr(ctx context.Context, address byte, w []byte, r []byte) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	err := d.writeToAddr(ctx, address, w)
	if err != nil {
		return err
	}
	return d.readFromAddr(ctx, address, r)
}

func (d *MCP2221) writeToAddr(ctx context.Context, address byte, buffer []byte) error {
	if len(buffer) > maxI2CTransfer {
		return fmt.Errorf("write of %d bytes exceeds the %d byte report payload", len(buffer), maxI2CTransfer)
	}
	d.prepare(cmdI2CWriteData)
	binary.LittleEndian.PutUint16(d.request[1:3], uint16(len(buffer)))
	d.request[3] = address << 1
	copy(d.request[4:], buffer)
	err := d.exchange(ctx)
	if err != nil {
		return fmt.Errorf("write to %#x failed: %w", address, err)
	}
	if d.response[1] == statusBusy {
		slog.DebugContext(ctx, "adapter busy", "addr", fmt.Sprintf("%#x", address))
		return ambientlight.ErrBusBusy
	}
	return nil
}

func (d *MCP2221) readFromAddr(ctx context.Context, address byte, buffer []byte) error {
	if len(buffer) > maxI2CTransfer {
		return fmt.Errorf("read of %d bytes exceeds the %d byte report payload", len(buffer), maxI2CTransfer)
	}
	d.prepare(cmdI2CReadData)
	binary.LittleEndian.PutUint16(d.request[1:3], uint16(len(buffer)))
	d.request[3] = address<<1 | 1
	err := d.exchange(ctx)
	if err != nil {
		return fmt.Errorf("read from %#x failed: %w", address, err)
	}
	if d.response[1] == statusBusy {
		return ambientlight.ErrBusBusy
	}
	d.prepare(cmdI2CGetData)
	err = d.exchange(ctx)
	if err != nil {
		return fmt.Errorf("error getting read data from adapter: %w", err)
	}
	if d.response[1] == i2cEngineReadError {
		return fmt.Errorf("%w: I2C engine could not read from %#x", ErrCommandFailed, address)
	}
	if d.response[3] == invalidDataSize || int(d.response[3]) != len(buffer) {
		return fmt.Errorf("invalid data size byte; expected %d, got %d", len(buffer), d.response[3])
	}
	copy(buffer, d.response[4:])
	return nil
}

func (d *MCP2221) Status(ctx context.Context) (*MCP2221Status, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.prepare(cmdStatusSetParameters)
	err := d.exchange(ctx)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	return bufferToStatus(d.response[:]), nil
}

// Release cancels a pending I2C transfer.
func (d *MCP2221) Release(ctx context.Context) error {
	_, err := d.ReleaseBus(ctx)
	return err
}

// ReleaseBus cancels a pending I2C transfer and returns the engine status after the cancellation.
func (d *MCP2221) ReleaseBus(ctx context.Context) (*MCP2221Status, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.prepare(cmdStatusSetParameters)
	d.request[2] = cancelI2CTransfer
	err := d.exchange(ctx)
	if err != nil {
		return nil, fmt.Errorf("cancel transfer request failed: %w", err)
	}
	return bufferToStatus(d.response[:]), nil
}

func bufferToStatus(buffer []byte) *MCP2221Status {
	/*
		9-10: requested I2C transfer length
		11-12: already transferred number of bytes
		13: internal I2C data buffer counter
		14: current I2C communication speed divider
		15: current I2C timeout
		16-17: I2C address being used
		25: I2C read pending
	*/
	return &MCP2221Status{
		I2CDataBufferCounter:   int(buffer[13]),
		I2CSpeedDivider:        int(buffer[14]),
		I2CTimeout:             int(buffer[15]),
		ReadPending:            int(buffer[25]),
		CurrentAddress:         hex.EncodeToString(buffer[16:18]),
		LastWriteRequestedSize: binary.LittleEndian.Uint16(buffer[9:11]),
		LastWriteSentSize:      binary.LittleEndian.Uint16(buffer[11:13]),
	}
}

func (d *MCP2221) prepare(cmd byte) {
	d.request = [reportSize]byte{}
	d.response = [reportSize]byte{}
	d.request[0] = cmd
}

// exchange sends the request report and reads the response report.
func (d *MCP2221) exchange(ctx context.Context) error {
	dev, err := d.open(d.index)
	if err != nil {
		return err
	}
	defer func() {
		err := dev.Close()
		if err != nil {
			slog.WarnContext(ctx, "could not close adapter", "error", err)
		}
	}()
	verbose := snsctx.IsVerbose(ctx)
	if verbose {
		slog.DebugContext(ctx, "sending message to adapter", "request", hex.Dump(d.request[:]))
	}
	n, err := dev.Write(d.request[:])
	if err != nil {
		return fmt.Errorf("could not write request: %w", err)
	}
	if n != reportSize {
		return fmt.Errorf("short write: %d", n)
	}
	if d.responseWait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.responseWait):
		}
	}
	n, err = dev.Read(d.response[:])
	if err != nil {
		return fmt.Errorf("could not read response: %w", err)
	}
	if n != reportSize {
		return fmt.Errorf("short read: %d", n)
	}
	if verbose {
		slog.DebugContext(ctx, "read message from adapter", "response", hex.Dump(d.response[:]))
	}
	if d.response[0] != d.request[0] {
		return fmt.Errorf("%w: response echoes command %#02x instead of %#02x", ErrCommandFailed, d.response[0], d.request[0])
	}
	return nil
}

func openHID(index int) (hidDevice, error) {
	devs := hid.Enumerate(VendorID, ProductID)
	switch {
	case len(devs) == 0:
		return nil, ErrDeviceNotFound
	case index < 0 && len(devs) > 1:
		return nil, ErrAmbiguousDevice
	case index < 0:
		index = 0
	case index >= len(devs):
		return nil, fmt.Errorf("no adapter with index %d: %w", index, ErrDeviceNotFound)
	}
	dev, err := devs[index].Open()
	if err != nil {
		return nil, fmt.Errorf("error opening device: %w", err)
	}
	return dev, nil
}
