// Package main provides the rust-bert text generation CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "v0.0.1-dev"

func main() {
	if err := newCLI().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newCLI assembles the root command with all subcommands.
func newCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "rustbert",
		Short:         "Text generation and keyword extraction pipelines",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			if v, _ := cmd.Flags().GetBool("version"); v {
				versionHandler(cmd, args)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	rootCmd.AddCommand(
		newGenerateCmd(),
		newKeywordsCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// versionHandler prints the version string.
func versionHandler(_ *cobra.Command, _ []string) {
	fmt.Printf("rust-bert %s\n", version)
}

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run:   versionHandler,
	}
}
