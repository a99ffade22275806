package main

import (
	"os"

	"github.com/rmercier/quantctl/cmd/quantctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
