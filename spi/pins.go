package spi

import "wlhal/gpio"

// NoNSS stands in for the NSS pin when the caller drives chip select
// itself. The peripheral then runs with software slave management.
type NoNSS struct{}

// Pins is the pin tuple a bus is built from. Each constructor constrains
// the element types to the pins routed to its instance, each on the right
// alternate function with a push-pull output stage.
type Pins[SCK, MISO, MOSI, NSS any] struct {
	SCK  SCK
	MISO MISO
	MOSI MOSI
	NSS  NSS
}

// NewPins groups four pins, letting the constructor infer their types.
func NewPins[SCK, MISO, MOSI, NSS any](sck SCK, miso MISO, mosi MOSI, nss NSS) Pins[SCK, MISO, MOSI, NSS] {
	return Pins[SCK, MISO, MOSI, NSS]{sck, miso, mosi, nss}
}

func hasNSS[NSS any](nss NSS) bool {
	_, none := any(nss).(NoNSS)
	return !none
}

// SPI1, AF5.
type (
	SPI1SCK interface {
		gpio.Alternate[gpio.A, gpio.P1, gpio.AF5, gpio.PushPull] | gpio.Alternate[gpio.A, gpio.P5, gpio.AF5, gpio.PushPull] | gpio.Alternate[gpio.B, gpio.P3, gpio.AF5, gpio.PushPull]
	}
	SPI1MISO interface {
		gpio.Alternate[gpio.A, gpio.P6, gpio.AF5, gpio.PushPull] | gpio.Alternate[gpio.B, gpio.P4, gpio.AF5, gpio.PushPull]
	}
	SPI1MOSI interface {
		gpio.Alternate[gpio.A, gpio.P7, gpio.AF5, gpio.PushPull] | gpio.Alternate[gpio.A, gpio.P12, gpio.AF5, gpio.PushPull] | gpio.Alternate[gpio.B, gpio.P5, gpio.AF5, gpio.PushPull]
	}
	SPI1NSS interface {
		NoNSS | gpio.Alternate[gpio.A, gpio.P4, gpio.AF5, gpio.PushPull] | gpio.Alternate[gpio.A, gpio.P15, gpio.AF5, gpio.PushPull] | gpio.Alternate[gpio.B, gpio.P2, gpio.AF5, gpio.PushPull]
	}
)

// SPI2, AF5 except PA5 (MISO) and PA9 (NSS) on AF3.
type (
	SPI2SCK interface {
		gpio.Alternate[gpio.A, gpio.P8, gpio.AF5, gpio.PushPull] | gpio.Alternate[gpio.A, gpio.P9, gpio.AF5, gpio.PushPull] | gpio.Alternate[gpio.B, gpio.P10, gpio.AF5, gpio.PushPull] | gpio.Alternate[gpio.B, gpio.P13, gpio.AF5, gpio.PushPull]
	}
	SPI2MISO interface {
		gpio.Alternate[gpio.A, gpio.P11, gpio.AF5, gpio.PushPull] | gpio.Alternate[gpio.B, gpio.P14, gpio.AF5, gpio.PushPull] | gpio.Alternate[gpio.A, gpio.P5, gpio.AF3, gpio.PushPull]
	}
	SPI2MOSI interface {
		gpio.Alternate[gpio.A, gpio.P10, gpio.AF5, gpio.PushPull] | gpio.Alternate[gpio.B, gpio.P15, gpio.AF5, gpio.PushPull]
	}
	SPI2NSS interface {
		NoNSS | gpio.Alternate[gpio.B, gpio.P9, gpio.AF5, gpio.PushPull] | gpio.Alternate[gpio.B, gpio.P12, gpio.AF5, gpio.PushPull] | gpio.Alternate[gpio.A, gpio.P9, gpio.AF3, gpio.PushPull]
	}
)

// SUBGHZSPI, AF13. These pads mirror the internal radio bus for debugging.
type (
	SubGHzSCK interface {
		gpio.Alternate[gpio.A, gpio.P5, gpio.AF13, gpio.PushPull]
	}
	SubGHzMISO interface {
		gpio.Alternate[gpio.A, gpio.P6, gpio.AF13, gpio.PushPull]
	}
	SubGHzMOSI interface {
		gpio.Alternate[gpio.A, gpio.P7, gpio.AF13, gpio.PushPull]
	}
	SubGHzNSS interface {
		NoNSS | gpio.Alternate[gpio.A, gpio.P4, gpio.AF13, gpio.PushPull]
	}
)
