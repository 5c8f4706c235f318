//go:build !tinygo

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/physic"

	"wlhal/spi"
)

var (
	baudOpts = struct {
		bus  physic.Frequency
		freq physic.Frequency
	}{bus: 16 * physic.MegaHertz}

	baudCmd = &cobra.Command{
		Use:   "baud",
		Short: "Resolve an SPI baud-rate code for a bus clock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bus, freq := hertz(baudOpts.bus), hertz(baudOpts.freq)
			switch {
			case freq == 0:
				return badFlag("--freq is required and must be at least 1Hz")
			case freq > bus:
				return badFlag("SCK above the bus clock")
			}
			br := spi.BaudRateDivider(bus, freq)
			sck := bus >> (br + 1)
			fmt.Fprintf(cmd.OutOrStdout(), "BR=%03b sck=%s (%s/%d) byte=%s\n", br, sck, bus, 2<<br, 8*sck.Period())
			return nil
		},
	}
)

func init() {
	baudCmd.Flags().Var(freqValue{&baudOpts.bus}, "bus", "peripheral bus clock")
	baudCmd.Flags().Var(freqValue{&baudOpts.freq}, "freq", "requested SCK frequency")
}
