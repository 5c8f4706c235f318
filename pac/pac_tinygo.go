//go:build tinygo

package pac

import "unsafe"

var (
	gpioa     = (*GPIO_Type)(unsafe.Pointer(uintptr(GPIOA_BASE)))
	gpiob     = (*GPIO_Type)(unsafe.Pointer(uintptr(GPIOB_BASE)))
	rcc       = (*RCC_Type)(unsafe.Pointer(uintptr(RCC_BASE)))
	flash     = (*FLASH_Type)(unsafe.Pointer(uintptr(FLASH_BASE)))
	spi1      = (*SPI_Type)(unsafe.Pointer(uintptr(SPI1_BASE)))
	spi2      = (*SPI_Type)(unsafe.Pointer(uintptr(SPI2_BASE)))
	subghzspi = (*SPI_Type)(unsafe.Pointer(uintptr(SUBGHZSPI_BASE)))
)
