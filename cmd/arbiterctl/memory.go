package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arbiter-ai/arbiter/internal/config"
	"github.com/arbiter-ai/arbiter/internal/memory"
)

func newMemoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect the Domain Memory Store",
	}
	cmd.AddCommand(newMemoryStatsCmd())
	return cmd
}

func newMemoryStatsCmd() *cobra.Command {
	var memoryLog string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print total entries, distinct domains, and the oldest/newest timestamps",
		RunE: func(cmd *cobra.Command, args []string) error {
			if memoryLog == "" {
				memoryLog = config.MemoryLogPath()
			}
			mem, err := memory.Open(memoryLog, 0)
			if err != nil {
				return fmt.Errorf("opening memory store: %w", err)
			}
			defer func() { _ = mem.Close() }()

			stats, err := mem.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("computing stats: %w", err)
			}

			out, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&memoryLog, "memory-log", "", "path to the domain memory log (default: config's memory log path)")
	return cmd
}
