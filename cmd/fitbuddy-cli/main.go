package main

import (
	"os"

	"github.com/claude/fitbuddy/cmd/fitbuddy-cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
