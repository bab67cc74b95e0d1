// Package main provides the entry point for the rbxsync CLI tool.
package main

import "github.com/rbxsync/rbxsync/cmd/rbxsync/cmd"

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
