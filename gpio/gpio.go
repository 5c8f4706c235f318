// Package gpio is the pin type-state layer for GPIO ports A and B.
//
// A pin's port, number and electrical mode are all part of its type:
// Output[A, P5, PushPull] is PA5 driven push-pull, Alternate[A, P5, AF5,
// PushPull] is PA5 routed to alternate function 5. The transition functions
// (IntoPushPullOutput, IntoAF and friends) accept a pin in any state,
// perform the register writes and return the pin in its new type; the old
// value must not be used afterwards. Capabilities only exist on the states
// that support them, so driving an analog pin or reading an output's input
// buffer does not compile.
//
// Register groups are split into zero-sized sub-handles (MODER, OTYPER,
// OSPEEDR, PUPDR, AFRL, AFRH) typed by port. A transition takes pointers to
// the handles it writes; whoever holds a handle is the only writer of that
// register. The per-pin set/reset and input reads go through BSRR and IDR,
// which are single accesses and need no handle.
package gpio

import (
	pgpio "periph.io/x/conn/v3/gpio"
)

// Port tags.
type (
	A struct{}
	B struct{}
)

func (A) port() uint8 { return 0 }
func (B) port() uint8 { return 1 }

// Port is satisfied by the port tags.
type Port interface {
	A | B
	port() uint8
}

// Pin number tags.
type (
	P0  struct{}
	P1  struct{}
	P2  struct{}
	P3  struct{}
	P4  struct{}
	P5  struct{}
	P6  struct{}
	P7  struct{}
	P8  struct{}
	P9  struct{}
	P10 struct{}
	P11 struct{}
	P12 struct{}
	P13 struct{}
	P14 struct{}
	P15 struct{}
)

func (P0) num() uint8  { return 0 }
func (P1) num() uint8  { return 1 }
func (P2) num() uint8  { return 2 }
func (P3) num() uint8  { return 3 }
func (P4) num() uint8  { return 4 }
func (P5) num() uint8  { return 5 }
func (P6) num() uint8  { return 6 }
func (P7) num() uint8  { return 7 }
func (P8) num() uint8  { return 8 }
func (P9) num() uint8  { return 9 }
func (P10) num() uint8 { return 10 }
func (P11) num() uint8 { return 11 }
func (P12) num() uint8 { return 12 }
func (P13) num() uint8 { return 13 }
func (P14) num() uint8 { return 14 }
func (P15) num() uint8 { return 15 }

// Num is satisfied by the pin number tags.
type Num interface {
	P0 | P1 | P2 | P3 | P4 | P5 | P6 | P7 | P8 | P9 | P10 | P11 | P12 | P13 | P14 | P15
	num() uint8
}

// Electrical flavours.
type (
	Floating   struct{}
	PullUp     struct{}
	PullDown   struct{}
	PushPull   struct{}
	OpenDrain  struct{}
	AnalogMode struct{}
)

// InputMode is the pull configuration of an input.
type InputMode interface {
	Floating | PullUp | PullDown
}

// OutputMode is the driver type of an output.
type OutputMode interface {
	PushPull | OpenDrain
}

// Alternate function selectors. AF9 to AF11 are not routed on this part.
type (
	AF0  struct{}
	AF1  struct{}
	AF2  struct{}
	AF3  struct{}
	AF4  struct{}
	AF5  struct{}
	AF6  struct{}
	AF7  struct{}
	AF8  struct{}
	AF12 struct{}
	AF13 struct{}
	AF14 struct{}
	AF15 struct{}
)

func (AF0) code() uint32  { return 0 }
func (AF1) code() uint32  { return 1 }
func (AF2) code() uint32  { return 2 }
func (AF3) code() uint32  { return 3 }
func (AF4) code() uint32  { return 4 }
func (AF5) code() uint32  { return 5 }
func (AF6) code() uint32  { return 6 }
func (AF7) code() uint32  { return 7 }
func (AF8) code() uint32  { return 8 }
func (AF12) code() uint32 { return 12 }
func (AF13) code() uint32 { return 13 }
func (AF14) code() uint32 { return 14 }
func (AF15) code() uint32 { return 15 }

// AltFunc is satisfied by the alternate function selectors.
type AltFunc interface {
	AF0 | AF1 | AF2 | AF3 | AF4 | AF5 | AF6 | AF7 | AF8 | AF12 | AF13 | AF14 | AF15
	code() uint32
}

// Speed is the OSPEEDR slew setting.
type Speed uint8

const (
	SpeedLow Speed = iota
	SpeedMedium
	SpeedHigh
	SpeedVeryHigh
)

// Level is a logic level.
type Level = pgpio.Level

const (
	Low  = pgpio.Low
	High = pgpio.High
)

// OutputPin is a driven digital output. Errors are always nil on this part;
// the shape lets callers mix these pins with fallible implementations.
type OutputPin interface {
	SetHigh() error
	SetLow() error
}

// InputPin is a sampled digital input.
type InputPin interface {
	IsHigh() (bool, error)
	IsLow() (bool, error)
}

// Register field encodings.
const (
	modeInput     = 0b00
	modeOutput    = 0b01
	modeAlternate = 0b10
	modeAnalog    = 0b11

	pullNone = 0b00
	pullUp   = 0b01
	pullDown = 0b10
)
