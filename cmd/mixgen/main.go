// Package main provides the mixgen command.
package main

import (
	"os"

	"github.com/leapstack-labs/mixgen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
