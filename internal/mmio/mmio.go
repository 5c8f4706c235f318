// Package mmio is the register primitive under the peripheral access layer.
//
// Firmware builds (tinygo) wrap runtime/volatile so every access is a single
// load or store at the register address. Host builds back the same API with
// plain memory plus optional hooks and an access trace, which is what the
// package tests and pac/pactest use to model hardware behaviour.
package mmio

// Field extracts the field (mask<<pos) of v, shifted down to bit 0.
func Field(v uint32, mask uint32, pos uint8) uint32 {
	return (v >> pos) & mask
}

// With returns v with the field (mask<<pos) replaced by value.
func With(v uint32, value uint32, mask uint32, pos uint8) uint32 {
	return v&^(mask<<pos) | (value&mask)<<pos
}
