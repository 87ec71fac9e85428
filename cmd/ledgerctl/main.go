package main

import (
	"os"

	"ledger/internal/cli"
	"ledger/internal/commands"
)

func main() {
	cli.LoadEnvFile()
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
