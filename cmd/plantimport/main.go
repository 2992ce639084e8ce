// Package main provides the plantimport CLI application.
// plantimport manages the plant catalog database and imports CSV
// collections into it.
package main

import (
	"os"
)

var (
	// Version is set by build flags
	Version = "dev"
)

func main() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
