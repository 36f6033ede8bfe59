package ambientlight

import (
	"context"
	"fmt"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) error
}

type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	Release(ctx context.Context) error
}

// AddressableWriteReader writes w and then reads len(r) bytes back from the same
// device, either as one repeated-start transaction or as two back to back transfers.
type AddressableWriteReader interface {
	WriteReadFromAddr(ctx context.Context, address byte, w []byte, r []byte) error
}

type I2CBus interface {
	AddressableReader
	AddressableWriter
	AddressableWriteReader
}

// RegisterBus is the minimal capability a register-mapped device driver needs.
type RegisterBus interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	AddressableWriteReader
}
