package main

import (
	"os"

	"github.com/mmynk/splitsettle/cmd/splitsettle/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
