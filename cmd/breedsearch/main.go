// Command breedsearch queries the breed corpus from the terminal without
// starting the HTTP service or an LLM.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
