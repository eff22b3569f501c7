package cmd

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the topicmux version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("topicmux %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
