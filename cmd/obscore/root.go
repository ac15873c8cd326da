package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "obscore",
	Short: "Obscore - observability and adaptive traffic-control core",
	Long: `Obscore is the observability core for SharkLearning platform services.

It exposes metrics, traces, health checks and a composite dashboard over
HTTP, and enforces sliding-window rate limits that adapt to memory
pressure and error rates.

Endpoints:
  /metrics      metric snapshot (JSON or Prometheus text)
  /metrics/prom Prometheus client exposition
  /health       full health report (runs all checks)
  /ready        readiness probe
  /alive        liveness probe
  /dashboard    composite overview with performance score
  /traces       recently finished spans
  /system       process and runtime information`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when unset)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
