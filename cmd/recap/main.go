// Package main is the single-binary entrypoint for Resolution Recap —
// one binary serving the tracker API, the recap generator, and the
// admin tooling.
package main

import "github.com/recap-crew/recap/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
