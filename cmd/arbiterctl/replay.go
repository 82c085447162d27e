package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/arbiter-ai/arbiter/internal/config"
	"github.com/arbiter-ai/arbiter/internal/memory"
)

func newReplayCmd() *cobra.Command {
	var memoryLog string
	var at int64

	cmd := &cobra.Command{
		Use:   "replay <domain>",
		Short: "Recompute a domain's reputation from its memory log at a past instant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dom := args[0]
			if memoryLog == "" {
				memoryLog = config.MemoryLogPath()
			}
			if at == 0 {
				at = time.Now().Unix()
			}

			mem, err := memory.Open(memoryLog, 0)
			if err != nil {
				return fmt.Errorf("opening memory store: %w", err)
			}
			defer func() { _ = mem.Close() }()

			rep, err := mem.Reputation(cmd.Context(), dom, at)
			if err != nil {
				return fmt.Errorf("computing reputation: %w", err)
			}

			out, err := json.MarshalIndent(rep, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&memoryLog, "memory-log", "", "path to the domain memory log (default: config's memory log path)")
	cmd.Flags().Int64Var(&at, "at", 0, "unix timestamp to evaluate decay against (default: now)")

	return cmd
}
