// Command citysim is a thin driver around the engine packages: each
// subcommand loads or generates a world, calls straight through to the
// library, and writes whatever the operator asked for. Exit 0 on success;
// on failure a one-line diagnostic goes to stderr and the process exits
// non-zero (§6.6).
package main

import (
	"fmt"
	"os"

	"github.com/dshills/procicity/cmd/citysim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "citysim:", err)
		os.Exit(1)
	}
}
