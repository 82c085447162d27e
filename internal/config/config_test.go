package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/arbiter-ai/arbiter/internal/domain"
)

func TestAPIKeysParsesLabelKeyPairs(t *testing.T) {
	t.Setenv("ARBITER_API_KEYS", "svc-a:secret-one, svc-b:secret-two")

	keys := APIKeys()
	if len(keys) != 2 {
		t.Fatalf("got %d keys, want 2: %v", len(keys), keys)
	}

	sum := sha256.Sum256([]byte("secret-one"))
	want := hex.EncodeToString(sum[:])
	if keys[want] != "svc-a" {
		t.Fatalf("keys[%q] = %q, want svc-a", want, keys[want])
	}
}

func TestAPIKeysEmptyWhenUnset(t *testing.T) {
	t.Setenv("ARBITER_API_KEYS", "")
	if keys := APIKeys(); len(keys) != 0 {
		t.Fatalf("expected no keys, got %v", keys)
	}
}

func TestAPIKeysSkipsMalformedPairs(t *testing.T) {
	t.Setenv("ARBITER_API_KEYS", "no-colon-here,:missing-label,missing-key:")
	if keys := APIKeys(); len(keys) != 0 {
		t.Fatalf("expected malformed pairs to be skipped, got %v", keys)
	}
}

func TestLoadSolverConfigEmptyPathReturnsZeroValue(t *testing.T) {
	cfg, err := LoadSolverConfig("")
	if err != nil {
		t.Fatalf("LoadSolverConfig: %v", err)
	}
	if cfg.BudgetMS != 0 || cfg.EnumerationCap != 0 || cfg.DenyStrengthOverrides != nil {
		t.Fatalf("expected zero-value config, got %+v", cfg)
	}
}

func TestLoadSolverConfigMissingFileReturnsZeroValue(t *testing.T) {
	cfg, err := LoadSolverConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadSolverConfig: %v", err)
	}
	if cfg.BudgetMS != 0 {
		t.Fatalf("expected zero-value config, got %+v", cfg)
	}
}

func TestLoadSolverConfigParsesKnownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	yaml := "solver_budget_ms: 75\npreferred_enumeration_cap: 16\ntrust_strength_floor: 0.4\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadSolverConfig(path)
	if err != nil {
		t.Fatalf("LoadSolverConfig: %v", err)
	}
	if cfg.BudgetMS != 75 || cfg.EnumerationCap != 16 || cfg.TrustStrengthFloor != 0.4 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadSolverConfigRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	yaml := "solver_budget_ms: 75\ntypo_key: 1\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := LoadSolverConfig(path)
	if err == nil {
		t.Fatal("expected an error for an unknown key")
	}
	if !errors.Is(err, domain.ErrConfigurationError) {
		t.Fatalf("expected ErrConfigurationError, got %v", err)
	}
}
