// Package config loads Arbiter's runtime configuration: a flat .env
// sidecar for secrets and server basics, plus an optional YAML
// solver/memory tuning file loaded through viper with strict
// unknown-key rejection.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/arbiter-ai/arbiter/internal/domain"
)

// Load reads the .env file named by ARBITER_ENV (default ".env") and its
// ".secret" sidecar. Missing files are not an error: every setting below
// has a default.
func Load() error {
	envFile := os.Getenv("ARBITER_ENV")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")
	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// MemoryLogPath is where the Domain Memory Store appends its log.
func MemoryLogPath() string {
	p := os.Getenv("MEMORY_LOG_PATH")
	if p == "" {
		return "arbiter-memory.log"
	}
	return p
}

func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 50
	}
	return rps
}

func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 10
	}
	return burst
}

func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

// LogFilePath, when non-empty, switches the logger to a rotating file
// sink instead of stderr.
func LogFilePath() string {
	return os.Getenv("LOG_FILE_PATH")
}

// APIKeys parses ARBITER_API_KEYS, a comma-separated list of
// "label:key" pairs, into a map of sha256(key) -> label for
// middleware.APIKeyAuth.
func APIKeys() map[string]string {
	raw := os.Getenv("ARBITER_API_KEYS")
	out := map[string]string{}
	if raw == "" {
		return out
	}
	for _, pair := range splitAndTrim(raw, ",") {
		label, key, ok := cut(pair, ":")
		if !ok || label == "" || key == "" {
			continue
		}
		out[hashKey(key)] = label
	}
	return out
}

// SolverConfig mirrors the tunables behind the Extension Solver,
// loadable from a YAML file.
type SolverConfig struct {
	BudgetMS              int                `mapstructure:"solver_budget_ms"`
	EnumerationCap        int                `mapstructure:"preferred_enumeration_cap"`
	MemoryHalfLifeSecs    int64              `mapstructure:"memory_halflife_seconds"`
	TrustStrengthFloor    float64            `mapstructure:"trust_strength_floor"`
	BaselineAllowStrength float64            `mapstructure:"baseline_allow_strength"`
	DenyStrengthOverrides map[string]float64 `mapstructure:"deny_strength_overrides"`
}

// allowedKeys is the exhaustive set of top-level YAML keys Arbiter
// understands. Anything else fails fast rather than being silently
// ignored.
var allowedKeys = map[string]bool{
	"solver_budget_ms":          true,
	"preferred_enumeration_cap": true,
	"memory_halflife_seconds":   true,
	"trust_strength_floor":      true,
	"baseline_allow_strength":   true,
	"deny_strength_overrides":   true,
}

// LoadSolverConfig reads a YAML tuning file at path. An empty path, or a
// missing file, returns the zero-value SolverConfig (callers apply their
// own defaults). Any key outside allowedKeys is a ConfigurationError.
func LoadSolverConfig(path string) (SolverConfig, error) {
	var cfg SolverConfig
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("%w: %v", domain.ErrConfigurationError, err)
	}

	for _, key := range v.AllKeys() {
		// AllKeys flattens nested maps ("deny_strength_overrides.x");
		// only the top-level segment is checked against the allowlist.
		top, _, _ := strings.Cut(key, ".")
		if !allowedKeys[top] {
			return cfg, fmt.Errorf("%w: unknown key %q", domain.ErrConfigurationError, key)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", domain.ErrConfigurationError, err)
	}
	return cfg, nil
}
