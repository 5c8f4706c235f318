//go:build !tinygo

package pac

// Host builds back every block with ordinary memory. pac/pactest resets
// these to silicon reset values and attaches hardware behaviour.
var (
	gpioa     = new(GPIO_Type)
	gpiob     = new(GPIO_Type)
	rcc       = new(RCC_Type)
	flash     = new(FLASH_Type)
	spi1      = new(SPI_Type)
	spi2      = new(SPI_Type)
	subghzspi = new(SPI_Type)
)

// Release re-arms Take. Host only.
func Release() { taken.Store(false) }
