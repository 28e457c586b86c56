package main

import (
	"os"

	"github.com/Lattice-Automation/blastkit/internal/cmd"
	"github.com/Lattice-Automation/blastkit/internal/config"
)

func main() {
	config.Setup()

	if err := cmd.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
