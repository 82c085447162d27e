package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arbiter-ai/arbiter/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "arbiterctl",
	Short: "Operate the Arbiter argumentation-core service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.Load()
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newReplayCmd())
	rootCmd.AddCommand(newMemoryCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
