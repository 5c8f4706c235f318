//go:build !tinygo

// wlclk resolves STM32WLE5 clock configurations on the host: the bus
// frequencies, flash wait states and register images a Freeze would
// program, and the SPI baud-rate codes they lead to.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "wlclk",
	Short:        "Plan STM32WLE5 clock trees",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(planCmd, baudCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
