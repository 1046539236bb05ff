// Version command for the satchel CLI.
// Implements: prd007-satchel-cli R2.2.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/knapsack/pkg/knapsack"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the satchel version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("satchel", knapsack.Version)
	},
}
