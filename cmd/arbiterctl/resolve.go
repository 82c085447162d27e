package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/arbiter-ai/arbiter/internal/aaf"
	"github.com/arbiter-ai/arbiter/internal/collaborators/pattern"
	"github.com/arbiter-ai/arbiter/internal/collaborators/policy"
	"github.com/arbiter-ai/arbiter/internal/config"
	"github.com/arbiter-ai/arbiter/internal/domain"
	"github.com/arbiter-ai/arbiter/internal/logging"
	"github.com/arbiter-ai/arbiter/internal/memory"
	"github.com/arbiter-ai/arbiter/internal/normalizer"
	"github.com/arbiter-ai/arbiter/internal/resolver"
)

type evidenceBundle struct {
	Domain   string         `json:"domain"`
	Pack     string         `json:"pack"`
	Text     string         `json:"text"`
	Features map[string]any `json:"features,omitempty"`
}

func newResolveCmd() *cobra.Command {
	var file string
	var memoryLog string
	var blocked []string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Evaluate one evidence bundle and print the resolution result",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading evidence file: %w", err)
			}
			var bundle evidenceBundle
			if err := json.Unmarshal(raw, &bundle); err != nil {
				return fmt.Errorf("parsing evidence file: %w", err)
			}
			if bundle.Domain == "" {
				return errors.New("evidence bundle is missing \"domain\"")
			}

			if memoryLog == "" {
				memoryLog = config.MemoryLogPath()
			}
			mem, err := memory.Open(memoryLog, 0)
			if err != nil {
				return fmt.Errorf("opening memory store: %w", err)
			}
			defer func() { _ = mem.Close() }()

			logger := logging.New()
			defer func() { _ = logger.Sync() }()

			detector := pattern.New()
			evaluator := policy.New(blocked)
			norm := normalizer.New(mem, normalizer.DefaultConfig(), logger)
			solver := aaf.New(aaf.Config{})
			res := resolver.New()

			ctx := cmd.Context()
			counters, err := detector.Scan(ctx, bundle.Text)
			if err != nil {
				return fmt.Errorf("pattern scan: %w", err)
			}
			verdict, err := evaluator.Evaluate(ctx, bundle.Domain, bundle.Pack, counters, bundle.Features)
			if err != nil {
				if !errors.Is(err, domain.ErrPolicyUnavailable) {
					return fmt.Errorf("policy evaluation: %w", err)
				}
				verdict = domain.PolicyVerdict{} // Decision == "" signals unavailability downstream
			}

			ev := domain.Evidence{Domain: bundle.Domain, Pack: bundle.Pack, Policy: verdict, Counters: counters}
			now := time.Now().Unix()

			outcome, err := norm.Normalize(ctx, ev, now)
			if err != nil {
				return fmt.Errorf("normalizing evidence: %w", err)
			}
			solved, err := solver.Solve(ctx, outcome.Framework)
			if err != nil {
				return fmt.Errorf("solving framework: %w", err)
			}
			result := res.Resolve(outcome.Framework, solved, verdict.RiskScoreHint, outcome.Substitutions)

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to a JSON evidence bundle ({domain, pack, text, features})")
	cmd.Flags().StringVar(&memoryLog, "memory-log", "", "path to the domain memory log (default: config's memory log path)")
	cmd.Flags().StringSliceVar(&blocked, "blocked-domain", nil, "domain to treat as blocklisted by the reference policy evaluator")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
