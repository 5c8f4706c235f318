package gpio

import (
	"wlhal/pac"
	"wlhal/rcc"
)

// PartsA is GPIOA split into register handles and pins in their reset
// state. PA13, PA14 and PA15 come out of reset as SWDIO, SWCLK and JTDI.
type PartsA struct {
	MODER   MODER[A]
	OTYPER  OTYPER[A]
	OSPEEDR OSPEEDR[A]
	PUPDR   PUPDR[A]
	AFRL    AFRL[A]
	AFRH    AFRH[A]

	PA0  Analog[A, P0]
	PA1  Analog[A, P1]
	PA2  Analog[A, P2]
	PA3  Analog[A, P3]
	PA4  Analog[A, P4]
	PA5  Analog[A, P5]
	PA6  Analog[A, P6]
	PA7  Analog[A, P7]
	PA8  Analog[A, P8]
	PA9  Analog[A, P9]
	PA10 Analog[A, P10]
	PA11 Analog[A, P11]
	PA12 Analog[A, P12]
	PA13 Alternate[A, P13, AF0, PushPull]
	PA14 Alternate[A, P14, AF0, PushPull]
	PA15 Alternate[A, P15, AF0, PushPull]
}

// PartsB is GPIOB split into register handles and pins in their reset
// state. PB3 and PB4 come out of reset as JTDO and NJTRST.
type PartsB struct {
	MODER   MODER[B]
	OTYPER  OTYPER[B]
	OSPEEDR OSPEEDR[B]
	PUPDR   PUPDR[B]
	AFRL    AFRL[B]
	AFRH    AFRH[B]

	PB0  Analog[B, P0]
	PB1  Analog[B, P1]
	PB2  Analog[B, P2]
	PB3  Alternate[B, P3, AF0, PushPull]
	PB4  Alternate[B, P4, AF0, PushPull]
	PB5  Analog[B, P5]
	PB6  Analog[B, P6]
	PB7  Analog[B, P7]
	PB8  Analog[B, P8]
	PB9  Analog[B, P9]
	PB10 Analog[B, P10]
	PB11 Analog[B, P11]
	PB12 Analog[B, P12]
	PB13 Analog[B, P13]
	PB14 Analog[B, P14]
	PB15 Analog[B, P15]
}

// SplitA consumes the GPIOA handle, enables the port clock and pulses its
// reset so every pin is in the state its type claims.
func SplitA(p pac.GPIOA, ahb *rcc.AHB2) *PartsA {
	if p.Ptr() == nil {
		panic("gpio: zero GPIOA handle")
	}
	enable(ahb, pac.RCC_AHB2ENR_GPIOAEN)
	return &PartsA{}
}

// SplitB is SplitA for GPIOB.
func SplitB(p pac.GPIOB, ahb *rcc.AHB2) *PartsB {
	if p.Ptr() == nil {
		panic("gpio: zero GPIOB handle")
	}
	enable(ahb, pac.RCC_AHB2ENR_GPIOBEN)
	return &PartsB{}
}

func enable(ahb *rcc.AHB2, bit uint32) {
	ahb.Enable(bit)
	ahb.Reset(bit)
}
