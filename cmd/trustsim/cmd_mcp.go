package main

import (
	"github.com/spf13/cobra"
	"github.com/web4labs/trustsim/internal/mcp"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Start the MCP server (stdio transport)",
		Long: `Start an MCP (Model Context Protocol) server exposing the simulators as
tools: trustsim_run, trustsim_network, and trustsim_detect.

The server speaks over stdio and blocks until the client disconnects.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			dir, _ := cmd.Flags().GetString("dir")
			server, err := mcp.NewServer(&mcp.ServerConfig{
				Name:    "trustsim",
				Version: version,
				Dir:     dir,
				Config:  cfg,
			})
			if err != nil {
				return err
			}

			return server.Run(cmd.Context())
		},
	}
}
