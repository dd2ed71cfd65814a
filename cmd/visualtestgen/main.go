package main

import (
	"os"

	"github.com/fjglira/visualtestgen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
