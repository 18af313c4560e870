// =============================================================================
// CSV to QDC Codebook Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the csv2qdc CLI application. It delegates
// command execution to the cmd package.
//
// USAGE:
//   csv2qdc generate <project>...  - Write codebooks for the given projects
//   csv2qdc generate --all         - Write codebooks for every project
//   csv2qdc list                   - Show discovered projects
//   csv2qdc validate --all         - Check codebooks without writing them
//   csv2qdc version                - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Codebook model, loader, parsers, rendering, pipeline
//   - pkg/utils      : Filesystem layout (discovery, persistence, log paths)
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/CSV-to-QDC/cmd"
)

func main() {
	cmd.Execute()
}
