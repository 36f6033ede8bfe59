package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gobot.io/x/gobot/v2/drivers/i2c"

	"github.com/mklimuk/ambientlight"
)

var _ ambientlight.I2CBus = &GobotBus{}

// GobotBus talks to devices through a gobot I2C connector, e.g. a NanoPi NEO
// adaptor. Connections are opened lazily, one per device address.
type GobotBus struct {
	mx        sync.Mutex
	connector i2c.Connector
	busNr     int
	conns     map[byte]i2c.Connection
}

// NewGobotBus uses the connector's default bus when busNr is negative.
func NewGobotBus(connector i2c.Connector, busNr int) *GobotBus {
	if busNr < 0 {
		busNr = connector.DefaultI2cBus()
	}
	return &GobotBus{
		connector: connector,
		busNr:     busNr,
		conns:     make(map[byte]i2c.Connection),
	}
}

func (b *GobotBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.write(ctx, address, buffer)
}

func (b *GobotBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.read(ctx, address, buffer)
}

// WriteReadFromAddr issues the write and the read as two transfers.
func (b *GobotBus) WriteReadFromAddr(ctx context.Context, address byte, w []byte, r []byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	err := b.write(ctx, address, w)
	if err != nil {
		return err
	}
	return b.read(ctx, address, r)
}

func (b *GobotBus) Release(ctx context.Context) error {
	return nil
}

// Close closes all connections opened so far.
func (b *GobotBus) Close() error {
	b.mx.Lock()
	defer b.mx.Unlock()
	var errs []error
	for addr, conn := range b.conns {
		if err := conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("could not close connection to %x: %w", addr, err))
		}
		delete(b.conns, addr)
	}
	return errors.Join(errs...)
}

func (b *GobotBus) write(ctx context.Context, address byte, buffer []byte) error {
	conn, err := b.conn(address)
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "gobot i2c write", "bus", b.busNr, "addr", fmt.Sprintf("%#x", address), "data", fmt.Sprintf("% x", buffer))
	n, err := conn.Write(buffer)
	if err != nil {
		return fmt.Errorf("write to %x failed: %w", address, err)
	}
	if n != len(buffer) {
		return fmt.Errorf("short write to %x: %d of %d bytes", address, n, len(buffer))
	}
	return nil
}

func (b *GobotBus) read(ctx context.Context, address byte, buffer []byte) error {
	conn, err := b.conn(address)
	if err != nil {
		return err
	}
	n, err := conn.Read(buffer)
	if err != nil {
		return fmt.Errorf("bus read from %x failed: %w", address, err)
	}
	if n != len(buffer) {
		return fmt.Errorf("short read from %x: %d of %d bytes", address, n, len(buffer))
	}
	slog.DebugContext(ctx, "gobot i2c read", "bus", b.busNr, "addr", fmt.Sprintf("%#x", address), "data", fmt.Sprintf("% x", buffer))
	return nil
}

func (b *GobotBus) conn(address byte) (i2c.Connection, error) {
	if conn, ok := b.conns[address]; ok {
		return conn, nil
	}
	conn, err := b.connector.GetI2cConnection(int(address), b.busNr)
	if err != nil {
		return nil, fmt.Errorf("could not open connection to %x on bus %d: %w", address, b.busNr, err)
	}
	b.conns[address] = conn
	return conn, nil
}
