package main

import (
	"fmt"
	"os"

	"hibrwriter/internal/version"
)

func main() {
	// Minimal CLI entrypoint for the Hibr Writer project.
	// For now, it prints a banner and an optional version.
	args := os.Args
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println(version.String())
			return
		}
	}

	fmt.Println("Hibr Writer — right-to-left prose studio")
	fmt.Printf("Version: %s\n", version.String())
}
