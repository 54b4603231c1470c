package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "sustainment-impact",
	Short: "Model tariff effects on aircraft availability and defense costs",
	Long: `sustainment-impact evaluates two planning models: the drop in aircraft
availability when sustainment costs rise under a fixed budget, and the yearly
procurement and sustainment cost of tariffs passed through to the DoD.

Scenarios are read from a YAML configuration file by "run" or explored
interactively through the dashboard started by "serve".`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(runCmd, serveCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
