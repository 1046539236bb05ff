// List command prints the records stored in the archive.
// Implements: prd007-satchel-cli R3.5; prd004-archive-core R5.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored records, newest first",
	Long: `List prints every record in the archive, newest first. The default
output is one line per record; --json prints the full records including
payloads.

Example:
  satchel list
  satchel list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	records, err := backend.List()
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	if flagJSON {
		return printJSON(records)
	}

	for _, rec := range records {
		fmt.Printf("%s  %s  %s\n", rec.ArchiveID, rec.CreatedAt, rec.Name)
	}
	return nil
}
