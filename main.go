package main

import (
	"fmt"
	"os"

	"github.com/streed/vault-suggest/cmd"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	cmd.Version = Version
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
