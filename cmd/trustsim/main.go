package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/web4labs/trustsim/internal/config"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "trustsim",
		Short: "Trust economy simulator - agents, attention, and collusion",
		Long: `trustsim simulates an economy where attention is the scarce resource and
trust is the currency that buys it.

A single agent lives, spends energy, earns trust, dies, and is reborn
carrying karma. A network of agents validates each other while a cartel
games the system and detection checks try to expose it. The detector
turns raw histories into ranked narrative moments.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for machine consumption)")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: ~/.trustsim/config.yaml)")
	rootCmd.PersistentFlags().String("dir", ".trustsim", "Directory for run storage and traces")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newNetworkCmd(),
		newDetectCmd(),
		newRunsCmd(),
		newPresetsCmd(),
		newMCPServerCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(os.Stdout).Encode(map[string]string{"version": version})
			} else {
				fmt.Printf("trustsim version %s\n", version)
			}
		},
	}
}

// loadConfig resolves the effective configuration for a command: the
// --config file when given, otherwise the default locations plus
// environment overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}
