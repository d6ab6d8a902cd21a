package main

import (
	"os"

	"github.com/wrenqi/daystar/cmd/daystar/commands"
)

// main is the entry point for the Daystar CLI.
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
