package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/joshuapare/tblkit/internal/schema"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tblctl %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built: %s\n", date)
		if info, ok := debug.ReadBuildInfo(); ok {
			fmt.Printf("  go: %s\n", info.GoVersion)
		}
		fmt.Printf("  games:")
		for _, v := range schema.Variants {
			fmt.Printf(" %s (%d)", v, int(v))
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
