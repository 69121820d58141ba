// Package main is the entry point for the applogs CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/applogs/cmd/applogs/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
