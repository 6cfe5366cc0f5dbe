package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fellowship",
	Short: "Talk to the Fellowship from a terminal",
	Long: `Console tools for the Fellowship chat backend.

Available subcommands:
  chat - Start an interactive conversation with a character
  tail - Print chat events from the NATS stream`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(chatCmd, tailCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
