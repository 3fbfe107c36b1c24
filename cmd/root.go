package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/elenaruiz/attribution-engine/internal/config"
	"github.com/spf13/cobra"
)

// Cfg is the global variable that will contain the loaded configuration
// It will be accessible to all Cobra commands throughout the application
var Cfg *config.Config

// RootCmd is the base command for the CLI application
// All other commands (run-server, migrate, attribute, report, set-model) are added as subcommands
var RootCmd = &cobra.Command{
	Use:   "attribution",
	Short: "Multi-touch revenue attribution engine",
	Long: `A marketing attribution engine that records touchpoints, splits order
revenue across them with configurable weighting models, and serves rollup reports.`,
}

// Execute is the main entry point for the Cobra application
// It is called from 'main.go' and handles command execution and error handling
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

// init sets up configuration loading to run before any command executes.
// Subcommands register themselves via their own init() functions, which
// keeps them modular and avoids import cycles.
func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig loads the application configuration
// This function is called at the beginning of every Cobra command execution
// thanks to `cobra.OnInitialize(initConfig)` set up above
func initConfig() {
	var err error

	Cfg, err = config.LoadConfig()
	if err != nil {
		log.Printf("Warning: Problem loading configuration: %v. Using default values.", err)
	}
}
