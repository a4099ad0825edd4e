package main

import (
	"os"

	"github.com/evewatch/evewatch/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
