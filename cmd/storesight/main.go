// Package main provides the CLI for the StoreSight retail analytics engine.
package main

import (
	"os"

	"github.com/storesight-labs/storesight/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
