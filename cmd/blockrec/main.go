package main

import (
	"os"

	"github.com/arran4/golang-blockrec/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
