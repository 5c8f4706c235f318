//go:build !tinygo

// Package pactest turns the host register file into a small model of the
// STM32WLE5 peripherals this module drives, so that package tests can run
// real driver code against it.
//
// The model is deliberately shallow. It covers the status bits drivers spin
// on (oscillator ready, clock switch, SPI TXE/RXNE), the side effects of the
// set/reset registers, reset pulses, and the SPI fault flags with their clear
// sequences. Anything else behaves as plain memory.
package pactest

import (
	"testing"

	"wlhal/internal/mmio"
	"wlhal/pac"
)

// Sim is a reset register file with hardware behaviour attached.
type Sim struct {
	P pac.Peripherals

	RCC    *RCC
	SPI1   *SPIBus
	SPI2   *SPIBus
	SubGHz *SPIBus
}

// New resets every register block to its silicon reset value, installs the
// hardware model, and removes it again when t finishes.
func New(t testing.TB) *Sim {
	t.Helper()
	mmio.DetachAll()
	p := pac.Steal()

	s := &Sim{P: p}
	resetGPIO(p.GPIOA.Ptr(), pac.GPIOA_MODER_RESET_VALUE, pac.GPIOA_OSPEEDR_RESET_VALUE, pac.GPIOA_PUPDR_RESET_VALUE)
	resetGPIO(p.GPIOB.Ptr(), pac.GPIOB_MODER_RESET_VALUE, pac.GPIOB_OSPEEDR_RESET_VALUE, pac.GPIOB_PUPDR_RESET_VALUE)
	resetFlash(p.FLASH.Ptr())

	s.SPI1 = newSPIBus(p.SPI1.Ptr())
	s.SPI2 = newSPIBus(p.SPI2.Ptr())
	s.SubGHz = newSPIBus(p.SUBGHZSPI.Ptr())
	s.RCC = newRCC(p, s)

	attachGPIO(p.GPIOA.Ptr())
	attachGPIO(p.GPIOB.Ptr())
	attachFlash(p.FLASH.Ptr())

	t.Cleanup(func() {
		mmio.DetachAll()
		pac.Release()
	})
	return s
}

// ---- GPIO ----

func resetGPIO(g *pac.GPIO_Type, moder, ospeedr, pupdr uint32) {
	for _, r := range []*mmio.Register32{&g.OTYPER, &g.IDR, &g.ODR, &g.BSRR, &g.LCKR, &g.AFRL, &g.AFRH, &g.BRR} {
		r.Poke(0)
	}
	g.MODER.Poke(moder)
	g.OSPEEDR.Poke(ospeedr)
	g.PUPDR.Poke(pupdr)
}

// BSRR and BRR are write-only; their effect lands in ODR. Set wins over
// reset when both halves name the same pin.
func attachGPIO(g *pac.GPIO_Type) {
	mmio.Attach(&g.BSRR, mmio.Hooks{
		Write: func(_, v uint32) uint32 {
			odr := g.ODR.Peek()
			odr &^= v >> 16
			odr |= v & 0xFFFF
			g.ODR.Poke(odr)
			return 0
		},
		Read: func(uint32) uint32 { return 0 },
	})
	mmio.Attach(&g.BRR, mmio.Hooks{
		Write: func(_, v uint32) uint32 {
			g.ODR.Poke(g.ODR.Peek() &^ (v & 0xFFFF))
			return 0
		},
		Read: func(uint32) uint32 { return 0 },
	})
}

// DriveInput sets the level the port samples on pin i.
func DriveInput(g *pac.GPIO_Type, i uint8, high bool) {
	if high {
		g.IDR.Poke(g.IDR.Peek() | 1<<i)
	} else {
		g.IDR.Poke(g.IDR.Peek() &^ (1 << i))
	}
}

// ---- FLASH ----

func resetFlash(f *pac.FLASH_Type) {
	f.ACR.Poke(pac.FLASH_ACR_RESET_VALUE)
	f.KEYR.Poke(0)
	f.OPTKEYR.Poke(0)
	f.SR.Poke(0)
	f.CR.Poke(pac.FLASH_CR_RESET_VALUE)
}

// KEYR clears FLASH_CR.LOCK after KEY1 then KEY2. Anything else keeps the
// interface locked.
func attachFlash(f *pac.FLASH_Type) {
	var seen1 bool
	mmio.Attach(&f.KEYR, mmio.Hooks{
		Write: func(_, v uint32) uint32 {
			switch {
			case v == 0x4567_0123:
				seen1 = true
			case v == 0xCDEF_89AB && seen1:
				f.CR.Poke(f.CR.Peek() &^ pac.FLASH_CR_LOCK)
				seen1 = false
			default:
				seen1 = false
			}
			return 0
		},
		Read: func(uint32) uint32 { return 0 },
	})
}
