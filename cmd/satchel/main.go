// Package main provides the satchel CLI for packing object graphs into
// envelopes and storing them in an archive.
// Implements: prd007-satchel-cli R1.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
