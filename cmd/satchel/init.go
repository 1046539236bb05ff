// Init command for the satchel CLI.
// Implements: prd007-satchel-cli R2.1; prd006-configuration-directories R1.6.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the configuration and data directories",
	Long: `Init creates the configuration directory with a default config.yaml
and initializes the archive database under the data directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Config dir and config.yaml were created by PersistentPreRunE;
		// attaching once creates the data dir and schema.
		backend, err := attachBackend()
		if err != nil {
			return err
		}
		if err := backend.Detach(); err != nil {
			return err
		}

		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}
		dataDir, err := resolveDataDir()
		if err != nil {
			return err
		}

		fmt.Println("initialized config dir:", configDir)
		fmt.Println("initialized data dir:", dataDir)
		return nil
	},
}
