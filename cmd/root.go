// Package cmd implements the topicmux command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is the topicmux version, set at build time via ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "topicmux",
	Short: "MCP server for pub/sub messaging servers",
	Long: "topicmux is an MCP server that lets AI agents manage a pub/sub messaging server.\n" +
		"It exposes tools for publishing messages, inspecting channels and streams,\n" +
		"reading server metrics and managing security roles.\n\n" +
		"Each MCP client gets its own connection to the backing server, opened with\n" +
		"the connect tool and cleaned up automatically when it goes idle.",
	SilenceUsage: true,
}

// Execute runs the topicmux CLI.
func Execute() error {
	return rootCmd.Execute()
}
