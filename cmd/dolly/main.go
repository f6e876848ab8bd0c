// Package main is the entry point for the dolly CLI.
package main

import (
	"os"

	"github.com/dolly-hdl/dolly/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
