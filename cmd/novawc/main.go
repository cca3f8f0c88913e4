// novawc is a small Wayland compositor. It serves the core protocol
// plus xdg-shell, layer-shell, foreign-toplevel management, and
// primary selection over a pluggable backend.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
