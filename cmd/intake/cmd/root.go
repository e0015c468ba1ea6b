package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "intake",
	Short: "Message intake service",
	Long: `intake accepts topic-tagged messages over HTTP and forwards them to the
notification channels mapped to each topic (chat, email, queue).

Available commands:
  serve          Run the HTTP intake server
  topics list    Show the topic routing table
  version        Print the version

Use "intake [command] --help" for more information about a specific command.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
