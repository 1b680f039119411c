package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	cfg "dclinabox/internal/config"
)

var configSchema bool

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVar(&configSchema, "schema", false, "print the JSON Schema of the configuration file")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Initialise the local configuration file",
	Long:  "Create ~/.dclinabox/config.yaml with commented defaults when missing and print its location.",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if configSchema {
			b, err := cfg.MarshalSchema(cfg.Schema())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		path, err := cfg.File()
		if err != nil {
			return err
		}
		created, err := cfg.Init(path)
		if err != nil {
			return fmt.Errorf("init %s: %w", path, err)
		}
		if created {
			fmt.Fprintf(out, "✓ created %s\n", path)
		} else {
			fmt.Fprintf(out, "• keeping %s\n", path)
		}
		return nil
	},
}
