package main

import (
	"fmt"
	"io"

	"chatbox/pkg/version"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "%s\n", version.Summary())
	fmt.Fprintf(w, "  commit: %s\n", version.Commit)
	fmt.Fprintf(w, "  built: %s\n", version.Date)
	fmt.Fprintf(w, "  go: %s\n", version.GoVersion)
	fmt.Fprintf(w, "  platform: %s\n", version.Platform())
}
