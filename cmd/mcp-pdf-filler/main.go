package main

import (
	"os"

	"github.com/a3tai/mcp-pdf-filler/cmd/mcp-pdf-filler/commands"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	commands.SetVersion(version, buildTime, gitCommit)

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
