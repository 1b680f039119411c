package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dclinabox/internal/system"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "dclinabox [fragment]",
	Short: "dclinabox – VMS terminal over WebSocket",
	Long: "dclinabox connects a VT100-class terminal to a DCLinabox server over a WebSocket.\n" +
		"Without a subcommand it behaves like \"dclinabox connect\".",
	Args: cobra.MaximumNArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		system.SetVerbose(verbose)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default action: connect
		return runConnect(cmd, &rootConnect, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

var rootConnect connectOptions

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	addConnectFlags(rootCmd, &rootConnect)
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
