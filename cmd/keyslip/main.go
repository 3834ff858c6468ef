// Package main provides the Keyslip command-line interface.
package main

import (
	"os"

	"github.com/keyslip-labs/keyslip/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
