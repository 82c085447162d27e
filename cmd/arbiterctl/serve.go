package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arbiter-ai/arbiter/internal/appserver"
	"github.com/arbiter-ai/arbiter/internal/logging"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP resolution server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New()
			defer func() { _ = logger.Sync() }()

			if err := appserver.Run(logger); err != nil {
				logger.Error("server exited with error", zap.Error(err))
				return err
			}
			return nil
		},
	}
}
