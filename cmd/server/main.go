package main

import (
	"go.uber.org/zap"

	"github.com/arbiter-ai/arbiter/internal/appserver"
	"github.com/arbiter-ai/arbiter/internal/config"
	"github.com/arbiter-ai/arbiter/internal/logging"
)

func main() {
	if err := config.Load(); err != nil {
		panic(err)
	}

	logger := logging.New()
	defer func() { _ = logger.Sync() }()

	if err := appserver.Run(logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}
