// Package main provides the entry point for the docvec CLI.
package main

import (
	"os"

	"github.com/docstackhq/docvec/cmd/docvec/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
