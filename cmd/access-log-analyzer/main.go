package main

import (
	"os"

	"github.com/GabrielNunesIT/access-log-analyzer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
