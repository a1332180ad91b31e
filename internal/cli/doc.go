// Package cli implements the loadorder command-line interface.
//
// # Commands
//
//   - solve: discover module descriptors and print their load order
//   - graph: render the resolution graph as DOT or SVG
//   - check: lint descriptors and verify that they resolve
//   - serve: run the HTTP API
//   - cache: inspect and clear the plan cache
//
// Descriptors are read from a directory of .toml/.json manifests or from a
// single manifest file. Conditional modules see --set key=value variables
// on top of the configured vars.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli
