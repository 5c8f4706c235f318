// Package pac is the peripheral access layer for the STM32WLE5: register
// block layouts, bit positions, and the one-shot peripheral handles that the
// driver packages split into independently owned register groups.
//
// Everything here is a plain description of the silicon. Ownership and
// ordering rules live in the driver packages (rcc, flash, gpio, spi).
package pac

import (
	"sync/atomic"

	"wlhal/internal/mmio"
)

// Base addresses (RM0461, memory map).
const (
	SPI2_BASE      = 0x4000_3800
	SPI1_BASE      = 0x4001_3000
	GPIOA_BASE     = 0x4800_0000
	GPIOB_BASE     = 0x4800_0400
	RCC_BASE       = 0x5800_0000
	FLASH_BASE     = 0x5800_4000
	SUBGHZSPI_BASE = 0x5801_0000
)

// GPIO_Type is one GPIO port register block.
type GPIO_Type struct {
	MODER   mmio.Register32 // 0x00
	OTYPER  mmio.Register32 // 0x04
	OSPEEDR mmio.Register32 // 0x08
	PUPDR   mmio.Register32 // 0x0C
	IDR     mmio.Register32 // 0x10
	ODR     mmio.Register32 // 0x14
	BSRR    mmio.Register32 // 0x18
	LCKR    mmio.Register32 // 0x1C
	AFRL    mmio.Register32 // 0x20
	AFRH    mmio.Register32 // 0x24
	BRR     mmio.Register32 // 0x28
}

// RCC_Type is the reset and clock control register block (up to APB3ENR).
type RCC_Type struct {
	CR        mmio.Register32 // 0x00
	ICSCR     mmio.Register32 // 0x04
	CFGR      mmio.Register32 // 0x08
	PLLCFGR   mmio.Register32 // 0x0C
	_         [2]uint32       // 0x10
	CIER      mmio.Register32 // 0x18
	CIFR      mmio.Register32 // 0x1C
	CICR      mmio.Register32 // 0x20
	_         uint32          // 0x24
	AHB1RSTR  mmio.Register32 // 0x28
	AHB2RSTR  mmio.Register32 // 0x2C
	AHB3RSTR  mmio.Register32 // 0x30
	_         uint32          // 0x34
	APB1RSTR1 mmio.Register32 // 0x38
	APB1RSTR2 mmio.Register32 // 0x3C
	APB2RSTR  mmio.Register32 // 0x40
	APB3RSTR  mmio.Register32 // 0x44
	AHB1ENR   mmio.Register32 // 0x48
	AHB2ENR   mmio.Register32 // 0x4C
	AHB3ENR   mmio.Register32 // 0x50
	_         uint32          // 0x54
	APB1ENR1  mmio.Register32 // 0x58
	APB1ENR2  mmio.Register32 // 0x5C
	APB2ENR   mmio.Register32 // 0x60
	APB3ENR   mmio.Register32 // 0x64
}

// FLASH_Type is the embedded flash interface register block (head only).
type FLASH_Type struct {
	ACR     mmio.Register32 // 0x00
	_       uint32          // 0x04
	KEYR    mmio.Register32 // 0x08
	OPTKEYR mmio.Register32 // 0x0C
	SR      mmio.Register32 // 0x10
	CR      mmio.Register32 // 0x14
}

// SPI_Type is an SPI/I2S register block. SUBGHZSPI shares the layout.
type SPI_Type struct {
	CR1    mmio.Register32 // 0x00
	CR2    mmio.Register32 // 0x04
	SR     mmio.Register32 // 0x08
	DR     mmio.Register32 // 0x0C
	CRCPR  mmio.Register32 // 0x10
	RXCRCR mmio.Register32 // 0x14
	TXCRCR mmio.Register32 // 0x18
}

// RCC_CR
const (
	RCC_CR_MSION        = 1 << 0
	RCC_CR_MSIRDY       = 1 << 1
	RCC_CR_MSIPLLEN     = 1 << 2
	RCC_CR_MSIRGSEL     = 1 << 3
	RCC_CR_MSIRANGE_Pos = 4
	RCC_CR_MSIRANGE_Msk = 0xF
	RCC_CR_HSION        = 1 << 8
	RCC_CR_HSIKERON     = 1 << 9
	RCC_CR_HSIRDY       = 1 << 10
	RCC_CR_HSEON        = 1 << 16
	RCC_CR_HSERDY       = 1 << 17
	RCC_CR_HSEBYPPWR    = 1 << 21
	RCC_CR_PLLON        = 1 << 24
	RCC_CR_PLLRDY       = 1 << 25
	RCC_CR_RESET_VALUE  = 0x0000_0063 // MSI on and ready, range 6 (4 MHz)
)

// RCC_CFGR
const (
	RCC_CFGR_SW_Pos    = 0
	RCC_CFGR_SW_Msk    = 0b11
	RCC_CFGR_SWS_Pos   = 2
	RCC_CFGR_SWS_Msk   = 0b11
	RCC_CFGR_HPRE_Pos  = 4
	RCC_CFGR_HPRE_Msk  = 0xF
	RCC_CFGR_PPRE1_Pos = 8
	RCC_CFGR_PPRE1_Msk = 0b111
	RCC_CFGR_PPRE2_Pos = 11
	RCC_CFGR_PPRE2_Msk = 0b111

	RCC_CFGR_SW_MSI   = 0b00
	RCC_CFGR_SW_HSI16 = 0b01
	RCC_CFGR_SW_HSE32 = 0b10
	RCC_CFGR_SW_PLL   = 0b11
)

// RCC_PLLCFGR
const (
	RCC_PLLCFGR_PLLSRC_Pos = 0
	RCC_PLLCFGR_PLLSRC_Msk = 0b11
)

// Bus enable / reset bits. RSTR registers share the ENR bit positions.
const (
	RCC_AHB2ENR_GPIOAEN = 1 << 0
	RCC_AHB2ENR_GPIOBEN = 1 << 1
	RCC_AHB2ENR_GPIOCEN = 1 << 2
	RCC_AHB2ENR_GPIOHEN = 1 << 7

	RCC_APB1ENR1_SPI2EN     = 1 << 14
	RCC_APB2ENR_SPI1EN      = 1 << 12
	RCC_APB3ENR_SUBGHZSPIEN = 1 << 0
)

// FLASH_ACR
const (
	FLASH_ACR_LATENCY_Pos = 0
	FLASH_ACR_LATENCY_Msk = 0b111
	FLASH_ACR_PRFTEN      = 1 << 8
	FLASH_ACR_ICEN        = 1 << 9
	FLASH_ACR_DCEN        = 1 << 10
	FLASH_ACR_RESET_VALUE = 0x0000_0600
)

// FLASH_CR
const (
	FLASH_CR_OPTLOCK     = 1 << 30
	FLASH_CR_LOCK        = 1 << 31
	FLASH_CR_RESET_VALUE = 0xC000_0000
)

// SPI_CR1
const (
	SPI_CR1_CPHA     = 1 << 0
	SPI_CR1_CPOL     = 1 << 1
	SPI_CR1_MSTR     = 1 << 2
	SPI_CR1_BR_Pos   = 3
	SPI_CR1_BR_Msk   = 0b111
	SPI_CR1_SPE      = 1 << 6
	SPI_CR1_LSBFIRST = 1 << 7
	SPI_CR1_SSI      = 1 << 8
	SPI_CR1_SSM      = 1 << 9
	SPI_CR1_RXONLY   = 1 << 10
	SPI_CR1_CRCL     = 1 << 11
	SPI_CR1_CRCNEXT  = 1 << 12
	SPI_CR1_CRCEN    = 1 << 13
	SPI_CR1_BIDIOE   = 1 << 14
	SPI_CR1_BIDIMODE = 1 << 15
)

// SPI_CR2
const (
	SPI_CR2_RXDMAEN     = 1 << 0
	SPI_CR2_TXDMAEN     = 1 << 1
	SPI_CR2_SSOE        = 1 << 2
	SPI_CR2_NSSP        = 1 << 3
	SPI_CR2_FRF         = 1 << 4
	SPI_CR2_ERRIE       = 1 << 5
	SPI_CR2_RXNEIE      = 1 << 6
	SPI_CR2_TXEIE       = 1 << 7
	SPI_CR2_DS_Pos      = 8
	SPI_CR2_DS_Msk      = 0xF
	SPI_CR2_FRXTH       = 1 << 12
	SPI_CR2_RESET_VALUE = 0x0000_0700
)

// SPI_SR
const (
	SPI_SR_RXNE        = 1 << 0
	SPI_SR_TXE         = 1 << 1
	SPI_SR_CRCERR      = 1 << 4
	SPI_SR_MODF        = 1 << 5
	SPI_SR_OVR         = 1 << 6
	SPI_SR_BSY         = 1 << 7
	SPI_SR_FRE         = 1 << 8
	SPI_SR_RESET_VALUE = 0x0000_0002
)

// GPIO reset values that differ from zero (debug pins on AF0, pulls on the
// JTAG/SWD lines).
const (
	GPIOA_MODER_RESET_VALUE   = 0xABFF_FFFF
	GPIOA_OSPEEDR_RESET_VALUE = 0x0C00_0000
	GPIOA_PUPDR_RESET_VALUE   = 0x6400_0000
	GPIOB_MODER_RESET_VALUE   = 0xFFFF_FEBF
	GPIOB_OSPEEDR_RESET_VALUE = 0x0000_00C0
	GPIOB_PUPDR_RESET_VALUE   = 0x0000_0100
)

// Handles are exclusive-ownership tokens for a whole register block. Driver
// packages consume them in their Split/Constrain functions. A zero handle
// (not obtained from Take or Steal) carries a nil block and is rejected.
type (
	GPIOA     struct{ regs *GPIO_Type }
	GPIOB     struct{ regs *GPIO_Type }
	RCC       struct{ regs *RCC_Type }
	FLASH     struct{ regs *FLASH_Type }
	SPI1      struct{ regs *SPI_Type }
	SPI2      struct{ regs *SPI_Type }
	SUBGHZSPI struct{ regs *SPI_Type }
)

// Ptr returns the register block, or nil for a zero handle.
func (p GPIOA) Ptr() *GPIO_Type    { return p.regs }
func (p GPIOB) Ptr() *GPIO_Type    { return p.regs }
func (p RCC) Ptr() *RCC_Type       { return p.regs }
func (p FLASH) Ptr() *FLASH_Type   { return p.regs }
func (p SPI1) Ptr() *SPI_Type      { return p.regs }
func (p SPI2) Ptr() *SPI_Type      { return p.regs }
func (p SUBGHZSPI) Ptr() *SPI_Type { return p.regs }

// Peripherals is the full set of handles this layer drives.
type Peripherals struct {
	GPIOA     GPIOA
	GPIOB     GPIOB
	RCC       RCC
	FLASH     FLASH
	SPI1      SPI1
	SPI2      SPI2
	SUBGHZSPI SUBGHZSPI
}

var taken atomic.Bool

// Take returns the peripheral handles the first time it is called and
// false on every later call.
func Take() (Peripherals, bool) {
	if !taken.CompareAndSwap(false, true) {
		return Peripherals{}, false
	}
	return Steal(), true
}

// Steal returns the handles without the one-shot guard. Two live copies of
// the same handle break the ownership guarantees of the driver packages;
// reserve it for tests and fault handlers.
func Steal() Peripherals {
	return Peripherals{
		GPIOA:     GPIOA{gpioa},
		GPIOB:     GPIOB{gpiob},
		RCC:       RCC{rcc},
		FLASH:     FLASH{flash},
		SPI1:      SPI1{spi1},
		SPI2:      SPI2{spi2},
		SUBGHZSPI: SUBGHZSPI{subghzspi},
	}
}

// GPIOPort returns the register block of port n (0 = A, 1 = B). Pin types
// carry no pointer of their own and resolve their port through here.
func GPIOPort(n uint8) *GPIO_Type {
	switch n {
	case 0:
		return gpioa
	case 1:
		return gpiob
	}
	panic("pac: no such GPIO port")
}
