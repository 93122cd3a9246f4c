// Package cmd provides shared helpers for the command line entry points.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Error prints an error message in red to standard error.
func Error(err error) {
	fmt.Fprintln(color.Error, color.RedString("Error: %v", err))
}

// Fatal prints an error message to standard error and then terminates the
// process with an error exit code.
func Fatal(err error) {
	Error(err)
	os.Exit(1)
}
