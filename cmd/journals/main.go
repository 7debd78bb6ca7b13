// Package main is the entry point for the journals CLI.
package main

import "github.com/sibils/journals/internal/cmd"

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
