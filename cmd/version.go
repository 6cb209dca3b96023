package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// set at build time via -ldflags
var (
	version = "dev"
	commit  = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the version",
	Run: func(cmd *cobra.Command, args []string) {
		if commit != "" {
			fmt.Printf("vip8 %s (%s)\n", version, commit)
			return
		}
		fmt.Printf("vip8 %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
