//go:build !tinygo

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/physic"

	"wlhal/rcc"
	"wlhal/spi"
	"wlhal/units"
	"wlhal/x/conv"
)

var (
	planOpts = struct {
		source string
		msi    physic.Frequency
		hpre   uint16
		ppre1  uint8
		ppre2  uint8
		pll    string
		spi    physic.Frequency
	}{
		source: "hsi16",
		msi:    4 * physic.MegaHertz,
		hpre:   1,
		ppre1:  1,
		ppre2:  1,
	}

	planCmd = &cobra.Command{
		Use:   "plan",
		Short: "Resolve a clock configuration",
		Long:  "Resolve a clock configuration without touching hardware and print the clocks, flash latency and CFGR image it yields.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := planConfig()
			if err != nil {
				return err
			}
			freq := hertz(planOpts.spi)
			if planOpts.spi != 0 && freq == 0 {
				return badFlag("--spi must be at least 1Hz")
			}
			s, err := rcc.Plan(cfg)
			if err != nil {
				return err
			}
			printSetup(cmd, cfg, s)
			if freq == 0 {
				return nil
			}
			return printBaud(cmd, s.Clocks, freq)
		},
	}
)

func init() {
	f := planCmd.Flags()
	f.StringVarP(&planOpts.source, "source", "s", planOpts.source, "system clock source: hsi16, msi or hse32")
	f.Var(freqValue{&planOpts.msi}, "msi", "MSI range frequency when --source=msi")
	f.Uint16Var(&planOpts.hpre, "hpre", planOpts.hpre, "AHB prescaler")
	f.Uint8Var(&planOpts.ppre1, "ppre1", planOpts.ppre1, "APB1 prescaler")
	f.Uint8Var(&planOpts.ppre2, "ppre2", planOpts.ppre2, "APB2 prescaler")
	f.StringVar(&planOpts.pll, "pll", "none", "PLL source to preload: none, msi, hsi16 or hse32")
	f.Var(freqValue{&planOpts.spi}, "spi", "also resolve the SPI baud-rate code for this SCK frequency")
}

func planConfig() (rcc.Config, error) {
	var cfg rcc.Config
	src, err := parseSource(planOpts.source)
	if err != nil {
		return cfg, err
	}
	pll, err := parsePLLSource(planOpts.pll)
	if err != nil {
		return cfg, err
	}
	cfg.Source, cfg.PLLSource = src, pll
	cfg.HPRE, cfg.PPRE1, cfg.PPRE2 = planOpts.hpre, planOpts.ppre1, planOpts.ppre2
	if src == rcc.SourceMSI {
		r, ok := rcc.MSIRangeFor(hertz(planOpts.msi))
		if !ok {
			return cfg, badFlag("no MSI range runs at " + planOpts.msi.String())
		}
		cfg.MSIRange = r
	}
	return cfg, nil
}

func printSetup(cmd *cobra.Command, cfg rcc.Config, s rcc.Setup) {
	var buf [8]byte
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "source   %s\n", cfg.Source)
	fmt.Fprintf(w, "clocks   %s\n", s.Clocks)
	fmt.Fprintf(w, "latency  %d WS\n", s.Latency)
	fmt.Fprintf(w, "CFGR     0x%s\n", conv.U32Hex(buf[:], s.CFGR(0)))
	if cfg.Source == rcc.SourceMSI {
		fmt.Fprintf(w, "MSIRANGE %d (%s)\n", s.MSIRange, s.MSIRange.Hz())
	}
}

// printBaud shows the code each SPI instance would use for freq.
func printBaud(cmd *cobra.Command, clocks rcc.Clocks, freq units.Hertz) error {
	w := cmd.OutOrStdout()
	for _, b := range []struct {
		name string
		bus  units.Hertz
	}{
		{"spi1", clocks.PCLK2()},
		{"spi2", clocks.PCLK1()},
		{"subghzspi", clocks.PCLK3()},
	} {
		if freq > b.bus {
			fmt.Fprintf(w, "%-9s bus %s is slower than %s\n", b.name, b.bus, freq)
			continue
		}
		br := spi.BaudRateDivider(b.bus, freq)
		fmt.Fprintf(w, "%-9s BR=%03b sck=%s\n", b.name, br, b.bus>>(br+1))
	}
	return nil
}
