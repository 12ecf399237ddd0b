// nurugen generates compile-time dispatchers for route declarations.
// Run: go run github.com/TimeWarpEngineering/timewarp-nuru-sub005/cmd/nurugen generate ./...
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:           "nurugen",
		Short:         "generate static dispatchers for nuru applications",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(generateCmd(), watchCmd(), versionCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "nurugen:", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the nurugen version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "nurugen", version)
		},
	}
}
