//go:build tinygo

package mmio

import (
	"runtime/volatile"
	"unsafe"
)

// Register32 is a memory-mapped 32-bit register.
type Register32 struct {
	volatile.Register32
}

// Get8 performs a byte-wide load of the register's lowest byte. Some
// peripherals (SPI DR with FRXTH set) pack a second frame into a wider access.
func (r *Register32) Get8() uint8 {
	return volatile.LoadUint8((*uint8)(unsafe.Pointer(&r.Reg)))
}

// Set8 performs a byte-wide store to the register's lowest byte.
func (r *Register32) Set8(v uint8) {
	volatile.StoreUint8((*uint8)(unsafe.Pointer(&r.Reg)), v)
}
