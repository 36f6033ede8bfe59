package i2c

import (
	"context"
	"fmt"
	"log/slog"

	"tinygo.org/x/drivers"

	"github.com/mklimuk/ambientlight"
)

var _ ambientlight.I2CBus = &TxBus{}

// TxBus exposes any bus with a combined Tx primitive (tinygo drivers.I2C, periph i2c.Bus)
// as an addressable bus. Write-read goes out as a single repeated-start transaction.
type TxBus struct {
	bus drivers.I2C
}

func NewTxBus(bus drivers.I2C) *TxBus {
	return &TxBus{bus: bus}
}

func (b *TxBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	err := b.bus.Tx(uint16(address), nil, buffer)
	if err != nil {
		return fmt.Errorf("could not read from i2c bus %x: %w", address, err)
	}
	slog.DebugContext(ctx, "i2c read", "addr", fmt.Sprintf("%#x", address), "data", fmt.Sprintf("% x", buffer))
	return nil
}

func (b *TxBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	slog.DebugContext(ctx, "i2c write", "addr", fmt.Sprintf("%#x", address), "data", fmt.Sprintf("% x", buffer))
	err := b.bus.Tx(uint16(address), buffer, nil)
	if err != nil {
		return fmt.Errorf("could not write to i2c bus %x: %w", address, err)
	}
	return nil
}

func (b *TxBus) WriteReadFromAddr(ctx context.Context, address byte, w []byte, r []byte) error {
	slog.DebugContext(ctx, "i2c write", "addr", fmt.Sprintf("%#x", address), "data", fmt.Sprintf("% x", w))
	err := b.bus.Tx(uint16(address), w, r)
	if err != nil {
		return fmt.Errorf("could not write-read i2c bus %x: %w", address, err)
	}
	slog.DebugContext(ctx, "i2c read", "addr", fmt.Sprintf("%#x", address), "data", fmt.Sprintf("% x", r))
	return nil
}

func (b *TxBus) Release(ctx context.Context) error {
	return nil
}
