//go:build tinygo

package main

import (
	"time"

	"wlhal/errcode"
	"wlhal/flash"
	"wlhal/gpio"
	"wlhal/pac"
	"wlhal/rcc"
	"wlhal/spi"
	"wlhal/units"
)

func main() {
	// Allow a debugger to attach before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	p, ok := pac.Take()
	if !ok {
		panic("peripherals already taken")
	}

	fl := flash.Constrain(p.FLASH)
	r := rcc.Constrain(p.RCC)
	clocks := r.CFGR.UseHSE32().PCLK1Divider(2).Freeze(&fl.ACR)
	println("clocks:", clocks.String())

	pa := gpio.SplitA(p.GPIOA, &r.AHB2)
	sck := gpio.IntoAF[gpio.AF5](pa.PA5, &pa.MODER, &pa.OTYPER, &pa.AFRL)
	miso := gpio.IntoAF[gpio.AF5](pa.PA6, &pa.MODER, &pa.OTYPER, &pa.AFRL)
	mosi := gpio.IntoAF[gpio.AF5](pa.PA7, &pa.MODER, &pa.OTYPER, &pa.AFRL).
		SetSpeed(&pa.OSPEEDR, gpio.SpeedHigh)

	// Chip select is driven by hand, idle high.
	nss := gpio.IntoPushPullOutputWithState(pa.PA4, &pa.MODER, &pa.OTYPER, gpio.High)

	bus := spi.NewSPI1(p.SPI1, spi.NewPins(sck, miso, mosi, spi.NoNSS{}), spi.Mode0, units.KHz(500), clocks, &r.APB2)

	msg := []byte("Hello, World")
	for {
		nss.SetLow()
		_, err := bus.Write(msg)
		nss.SetHigh()
		if err != nil {
			println("spi:", err.Error())
			if errcode.Of(err) != errcode.WouldBlock {
				bus.ClearFaults()
			}
		}
		time.Sleep(time.Second)
	}
}
