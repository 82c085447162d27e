// Package appserver builds and runs the HTTP server shared by
// cmd/server and arbiterctl's serve subcommand.
package appserver

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/arbiter-ai/arbiter/internal/aaf"
	"github.com/arbiter-ai/arbiter/internal/api"
	"github.com/arbiter-ai/arbiter/internal/config"
	"github.com/arbiter-ai/arbiter/internal/memory"
	"github.com/arbiter-ai/arbiter/internal/normalizer"
)

// Run opens the Domain Memory Store, builds the router, and serves
// until SIGINT/SIGTERM, then shuts down gracefully. It blocks until the
// server has stopped.
func Run(logger *zap.Logger) error {
	solverCfg, err := config.LoadSolverConfig(os.Getenv("ARBITER_TUNING_FILE"))
	if err != nil {
		return err
	}

	mem, err := memory.Open(config.MemoryLogPath(), solverCfg.MemoryHalfLifeSecs)
	if err != nil {
		return err
	}
	defer func() { _ = mem.Close() }()
	logger.Info("domain memory store ready", zap.String("path", config.MemoryLogPath()))

	normCfg := normalizer.DefaultConfig()
	if solverCfg.TrustStrengthFloor > 0 {
		normCfg.TrustStrengthFloor = solverCfg.TrustStrengthFloor
	}
	if solverCfg.BaselineAllowStrength > 0 {
		normCfg.BaselineAllowStrength = solverCfg.BaselineAllowStrength
	}
	if len(solverCfg.DenyStrengthOverrides) > 0 {
		normCfg.DenyStrengthOverrides = solverCfg.DenyStrengthOverrides
	}

	app := api.NewApp(mem, aaf.Config{
		BudgetMS:       solverCfg.BudgetMS,
		EnumerationCap: solverCfg.EnumerationCap,
	}, normCfg, api.Deps{}, logger)

	addr := config.ServerAddr()
	srv := &http.Server{Addr: addr, Handler: app.Router}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case <-quit:
		logger.Info("shutting down server")
	case err := <-serveErr:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
