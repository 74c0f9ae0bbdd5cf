package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "devel"
	commit  = ""
)

func versionString() string {
	if commit == "" {
		return version
	}
	return fmt.Sprintf("%s (commit %s)", version, commit)
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", programName, versionString())
		},
	}
}
