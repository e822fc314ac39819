// Package main provides the entry point for the questlog CLI tool.
package main

import (
	"github.com/questlog/questlog/cmd/questlog/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
