package cmd

import (
	"github.com/spf13/cobra"
)

// Mainify adapts an error-returning entry point to cobra's Run signature,
// exiting through Fatal when it fails.
func Mainify(entry func(*cobra.Command, []string) error) func(*cobra.Command, []string) {
	return func(command *cobra.Command, arguments []string) {
		err := entry(command, arguments)
		if err == nil {
			return
		}
		Fatal(err)
	}
}
