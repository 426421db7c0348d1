// Package cmd implements the mcpgate CLI.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/alpstack/mcpgate/internal/cmd"
	"github.com/alpstack/mcpgate/internal/flags"
)

var version = "dev" // Set at build time using -ldflags

// RootCmd is the top-level 'mcpgate' command.
type RootCmd struct {
	*cmd.BaseCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd, err := NewRootCmd()
	if err != nil {
		return err
	}

	return rootCmd.Execute()
}

// NewRootCmd creates the root command and attaches all subcommands.
func NewRootCmd() (*cobra.Command, error) {
	c := &RootCmd{
		BaseCmd: &cmd.BaseCmd{},
	}

	rootCmd := &cobra.Command{
		Use:   "mcpgate <command> [args]",
		Short: "'mcpgate' federates multiple MCP servers behind one endpoint.",
		Long: `'mcpgate' is a federating gateway for MCP servers: it routes namespaced
tool, resource and prompt operations to the right backend, aggregates
capability discovery across all backends, and caches idempotent responses.`,
		SilenceUsage: true,
		Version:      version,
	}

	// Global flags
	flags.InitFlags(rootCmd.PersistentFlags())

	gatewayCmd, err := NewGatewayCmd(c.BaseCmd)
	if err != nil {
		return nil, err
	}
	rootCmd.AddCommand(gatewayCmd)

	return rootCmd, nil
}
