// Delete command removes a record from the archive.
// Implements: prd007-satchel-cli R3.6; prd004-archive-core R5.
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/knapsack/pkg/archive"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a record by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return err
		}
		defer backend.Detach()

		if err := backend.Delete(args[0]); err != nil {
			if errors.Is(err, archive.ErrNotFound) {
				return fmt.Errorf("record %q not found", args[0])
			}
			return fmt.Errorf("delete record: %w", err)
		}

		fmt.Println("deleted", args[0])
		return nil
	},
}
