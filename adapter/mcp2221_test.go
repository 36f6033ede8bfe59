package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/ambientlight"
)

// fakeHID answers every request with the next queued response. The command byte
// is echoed unless the response sets it.
type fakeHID struct {
	requests  [][]byte
	responses [][]byte
	opened    int
	closed    int
}

func (f *fakeHID) Write(b []byte) (int, error) {
	f.requests = append(f.requests, append([]byte(nil), b...))
	return len(b), nil
}

func (f *fakeHID) Read(b []byte) (int, error) {
	if len(f.responses) == 0 {
		return 0, errors.New("no response queued")
	}
	res := f.responses[0]
	f.responses = f.responses[1:]
	copy(b, res)
	if res[0] == 0 {
		b[0] = f.requests[len(f.requests)-1][0]
	}
	return reportSize, nil
}

func (f *fakeHID) Close() error {
	f.closed++
	return nil
}

func (f *fakeHID) respond(bytes ...byte) {
	res := make([]byte, reportSize)
	copy(res, bytes)
	f.responses = append(f.responses, res)
}

func newTestMCP2221(dev *fakeHID) *MCP2221 {
	return NewMCP2221(WithResponseWait(0), withOpener(func(index int) (hidDevice, error) {
		dev.opened++
		return dev, nil
	}))
}

func TestMCP2221_WriteReadFromAddr(t *testing.T) {
	dev := &fakeHID{}
	dev.respond(0, statusOK)
	dev.respond(0, statusOK)
	dev.respond(0, statusOK, 0, 2, 0x1A, 0x05)
	a := newTestMCP2221(dev)

	buf := make([]byte, 2)
	require.NoError(t, a.WriteReadFromAddr(context.Background(), 0x4A, []byte{0x03}, buf))
	assert.Equal(t, []byte{0x1A, 0x05}, buf)

	require.Len(t, dev.requests, 3)
	assert.Equal(t, []byte{cmdI2CWriteData, 1, 0, 0x94, 0x03}, dev.requests[0][:5])
	assert.Equal(t, []byte{cmdI2CReadData, 2, 0, 0x95}, dev.requests[1][:4])
	assert.Equal(t, cmdI2CGetData, dev.requests[2][0])
	assert.Equal(t, byte(0), dev.requests[2][1], "request is cleared between commands")
	assert.Equal(t, 3, dev.opened)
	assert.Equal(t, 3, dev.closed)
}

func TestMCP2221_WriteBusy(t *testing.T) {
	dev := &fakeHID{}
	dev.respond(0, statusBusy)
	a := newTestMCP2221(dev)

	err := a.WriteToAddr(context.Background(), 0x4A, []byte{0x02, 0x40})
	assert.ErrorIs(t, err, ambientlight.ErrBusBusy)
}

func TestMCP2221_ReadErrors(t *testing.T) {
	t.Run("engine error", func(t *testing.T) {
		dev := &fakeHID{}
		dev.respond(0, statusOK)
		dev.respond(0, i2cEngineReadError)
		err := newTestMCP2221(dev).ReadFromAddr(context.Background(), 0x4A, make([]byte, 1))
		assert.ErrorIs(t, err, ErrCommandFailed)
	})
	t.Run("size mismatch", func(t *testing.T) {
		dev := &fakeHID{}
		dev.respond(0, statusOK)
		dev.respond(0, statusOK, 0, invalidDataSize)
		err := newTestMCP2221(dev).ReadFromAddr(context.Background(), 0x4A, make([]byte, 1))
		assert.ErrorContains(t, err, "invalid data size")
	})
	t.Run("wrong echo", func(t *testing.T) {
		dev := &fakeHID{}
		dev.respond(cmdReadFlash, statusOK)
		err := newTestMCP2221(dev).ReadFromAddr(context.Background(), 0x4A, make([]byte, 1))
		assert.ErrorIs(t, err, ErrCommandFailed)
	})
	t.Run("oversized", func(t *testing.T) {
		dev := &fakeHID{}
		err := newTestMCP2221(dev).ReadFromAddr(context.Background(), 0x4A, make([]byte, maxI2CTransfer+1))
		assert.Error(t, err)
		assert.Zero(t, dev.opened)
	})
}

func TestMCP2221_Cancelled(t *testing.T) {
	dev := &fakeHID{}
	a := NewMCP2221(withOpener(func(int) (hidDevice, error) { return dev, nil }))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := a.WriteToAddr(ctx, 0x4A, []byte{0x01, 0x01})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, dev.closed)
}

func TestMCP2221_ReleaseBus(t *testing.T) {
	dev := &fakeHID{}
	dev.respond(0, statusOK)
	a := newTestMCP2221(dev)

	require.NoError(t, a.Release(context.Background()))
	assert.Equal(t, []byte{cmdStatusSetParameters, 0, cancelI2CTransfer}, dev.requests[0][:3])
}

func TestMCP2221_InitNotFound(t *testing.T) {
	a := NewMCP2221(withOpener(func(int) (hidDevice, error) { return nil, ErrDeviceNotFound }))
	assert.ErrorIs(t, a.Init(), ErrDeviceNotFound)
}

func TestMCP2221_BufferToStatus(t *testing.T) {
	buf := make([]byte, reportSize)
	buf[9], buf[10] = 0x02, 0x00
	buf[11], buf[12] = 0x01, 0x00
	buf[13] = 3
	buf[14] = 0x75
	buf[15] = 4
	buf[16], buf[17] = 0x94, 0x00
	buf[25] = 1

	assert.Equal(t, &MCP2221Status{
		I2CDataBufferCounter:   3,
		I2CSpeedDivider:        0x75,
		I2CTimeout:             4,
		CurrentAddress:         "9400",
		LastWriteRequestedSize: 2,
		LastWriteSentSize:      1,
		ReadPending:            1,
	}, bufferToStatus(buf))
}

func TestMCP2221_ReadGPIO(t *testing.T) {
	dev := &fakeHID{}
	// GP0 output low, GP1 input high, GP2 input low, GP3 not a GPIO
	dev.respond(0, statusOK, 0, 0x00, 1, 0x01, 0, 0x01, 0, gpioNotAssigned)
	dev.respond(0, statusOK, 0, 0x00, 1, 0x01)
	dev.respond(0, statusOK, 0, 0x00, 0, 0x00, 0, 0x00, 0, 0x00)
	a := newTestMCP2221(dev)
	ctx := context.Background()

	values, err := a.ReadGPIO(ctx)
	require.NoError(t, err)
	assert.Equal(t, MCP2221GPIOValues{
		{Mode: GPIOModeOut, Value: 0},
		{Mode: GPIOModeIn, Value: 1},
		{Mode: GPIOModeIn, Value: 0},
		{Mode: GPIOModeNoOperation, Value: 0},
	}, values)

	level, err := a.ReadPin(ctx, 1)
	require.NoError(t, err)
	assert.True(t, level)

	_, err = a.ReadPin(ctx, 0)
	assert.ErrorContains(t, err, "not configured as input")

	_, err = a.ReadPin(ctx, 4)
	assert.ErrorContains(t, err, "no such pin")
}

func TestMCP2221_GPIOParameters(t *testing.T) {
	dev := &fakeHID{}
	dev.respond(0, statusOK, 0, 0, 0x08, 0x04, 0x00, 0x01)
	dev.respond(0, statusOK)
	a := newTestMCP2221(dev)
	ctx := context.Background()

	params, err := a.GetGPIOParameters(ctx)
	require.NoError(t, err)
	assert.Equal(t, GPIOParameter{Mode: GPIOModeIn, Designation: GPIOOperation}, params[0])
	assert.Equal(t, GPIOParameter{Mode: GPIOModeOut, Designation: GPIO1InterruptDetection}, params[1])
	assert.Equal(t, GPIOParameter{Mode: GPIOModeOut, Designation: GPIO3LEDI2C}, params[3])

	params[2] = GPIOParameter{Mode: GPIOModeIn}
	require.NoError(t, a.SetGPIOParameters(ctx, params))
	assert.Equal(t, []byte{cmdWriteFlash, flashSectionGP, 0x08, 0x04, 0x08, 0x01}, dev.requests[1][:6])
}

func TestMCP2221_GPIOModeText(t *testing.T) {
	assert.Equal(t, "INPUT", GPIOModeIn.String())
	assert.Equal(t, "OUTPUT", GPIOModeOut.String())
	assert.Equal(t, "NOOP", GPIOModeNoOperation.String())
	text, err := GPIOModeIn.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "INPUT", string(text))
}
