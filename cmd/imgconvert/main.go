package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "imgconvert",
	Short: "Batch image format conversion",
	Long: `imgconvert converts a batch of images to jpeg, png or webp, reports
per-file failures and size savings, and bundles the results into a zip
archive when more than one file converts.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(newConvertCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
