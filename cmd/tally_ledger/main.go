package main

import (
	"os"

	"github.com/SscSPs/tally_ledger_store/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(commands.ExitCode(err))
	}
}
