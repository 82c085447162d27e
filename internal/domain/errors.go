package domain

import "errors"

// Sentinel error kinds. They are designed for errors.Is against a
// wrapping fmt.Errorf("%w: ...", ErrX) rather than raw equality, since
// every package adds context before returning one.
var (
	// ErrStoreUnavailable means the Domain Memory Store hit an I/O
	// failure. The Evidence Normalizer degrades reputation to "unknown"
	// and continues rather than propagating this further.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrPolicyUnavailable is raised by the PolicyEvaluator collaborator.
	// The Normalizer substitutes a low-strength Suspicion argument and
	// proceeds.
	ErrPolicyUnavailable = errors.New("policy evaluator unavailable")

	// ErrInvalidFramework is fatal for the request that produced it:
	// a dangling attack endpoint or a non-unique id.
	ErrInvalidFramework = errors.New("invalid argumentation framework")

	// ErrConfigurationError is fatal, and only ever raised at startup.
	ErrConfigurationError = errors.New("configuration error")
)
