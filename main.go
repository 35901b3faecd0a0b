// Package main is the entry point for the Logistiq CLI application.
// It provides session bootstrap and company management against the
// Logistiq backend.
package main

import (
	"logistiq/cli/cmd"
)

func main() {
	cmd.Execute()
}
