package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/web4labs/trustsim/internal/presets"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List available scenario presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				out := map[string][]string{
					"engine":  presets.EngineNames(),
					"network": presets.NetworkNames(),
				}
				return json.NewEncoder(os.Stdout).Encode(out)
			}

			fmt.Println("single-agent presets (trustsim run --preset):")
			for _, name := range presets.EngineNames() {
				p, _ := presets.Engine(name)
				fmt.Printf("  %-16s %s\n", p.Name, p.Description)
			}

			fmt.Println("\nnetwork presets (trustsim network --preset):")
			for _, name := range presets.NetworkNames() {
				p, _ := presets.Network(name)
				fmt.Printf("  %-16s %s\n", p.Name, p.Description)
			}
			return nil
		},
	}
}
