// Package normalizer implements the Evidence Normalizer: a deterministic
// transform from (PolicyVerdict, Counters, domain reputation, policy
// pack) into a domain.Framework.
package normalizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/arbiter-ai/arbiter/internal/domain"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Config holds the tunable argument strengths.
type Config struct {
	TrustStrengthFloor    float64
	DenyStrengthOverrides map[string]float64
	BaselineAllowStrength float64
}

func defaultOverrides() map[string]float64 {
	return map[string]float64{
		"critical_pii:":        0.95,
		"domain_blocked:":      0.92,
		"credential_detected:": 0.93,
	}
}

// DefaultConfig returns the default tuning.
func DefaultConfig() Config {
	return Config{
		TrustStrengthFloor:    0.3,
		DenyStrengthOverrides: defaultOverrides(),
		BaselineAllowStrength: 0.3,
	}
}

// denyDominance encodes a narrow dominance rule: a "critical_pii:" Deny
// dominates a generic "classified_content:" Deny raised for the same
// domain. It is deliberately not a general ranking — only this pair.
var denyDominance = map[string]string{
	"critical_pii:": "classified_content:",
}

// classifiedDeny pairs a Deny argument's id with its reason-class prefix
// (e.g. "critical_pii:"), used for deny-dominance and for detecting
// whether an equivalent Deny already covers a pattern match.
type classifiedDeny struct {
	id     string
	prefix string
}

// Normalizer converts evidence into a Framework.
type Normalizer struct {
	cfg    Config
	memory domain.MemoryStore
	logger *zap.Logger
}

// New returns a Normalizer reading reputation from memory.
func New(memory domain.MemoryStore, cfg Config, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{cfg: cfg, memory: memory, logger: logger}
}

// Outcome is the result of normalizing one request's evidence: the
// Framework plus an audit trail of any collaborator-failure
// substitutions (for ResolutionResult.Substitutions).
type Outcome struct {
	Framework     *domain.Framework
	Substitutions []string
}

// Normalize builds the argumentation framework for one Evidence bundle,
// following a fixed argument-creation order and attack-relation rules.
func (n *Normalizer) Normalize(ctx context.Context, ev domain.Evidence, now int64) (Outcome, error) {
	fw := domain.NewFramework()
	var subs []string
	var errs error

	var denies []classifiedDeny

	// 1. One Deny per deny_reasons entry.
	seen := map[string]int{}
	for _, reason := range ev.Policy.DenyReasons {
		key := slug(reason)
		seen[key]++
		id := fmt.Sprintf("deny:%s", key)
		if seen[key] > 1 {
			id = fmt.Sprintf("deny:%s:%d", key, seen[key])
		}
		strength := 0.9
		for p, s := range n.cfg.DenyStrengthOverrides {
			if strings.HasPrefix(reason, p) {
				strength = s
				break
			}
		}
		prefix := reasonClass(reason)
		a := domain.Argument{
			ID:       id,
			Kind:     domain.KindDeny,
			Strength: strength,
			Claim:    reason,
			Source:   domain.SourcePolicy,
			Evidence: map[string]any{"reason": reason, "domain": ev.Domain},
		}
		if err := fw.AddArgument(a); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		denies = append(denies, classifiedDeny{id: id, prefix: prefix})
	}

	// 2. One Modify per modification_list entry.
	var modifies []string
	mseen := map[string]int{}
	for _, m := range ev.Policy.ModificationList {
		key := slug(m)
		mseen[key]++
		id := fmt.Sprintf("modify:%s", key)
		if mseen[key] > 1 {
			id = fmt.Sprintf("modify:%s:%d", key, mseen[key])
		}
		a := domain.Argument{
			ID:       id,
			Kind:     domain.KindModify,
			Strength: 0.7,
			Claim:    m,
			Source:   domain.SourcePolicy,
			Evidence: map[string]any{"modification": m},
		}
		if err := fw.AddArgument(a); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		modifies = append(modifies, id)
	}

	// 3. Pattern-derived Deny for SSN/credit-card, unless a pack
	// exemption already suppressed deny_reasons entirely, or an
	// equivalent Deny already exists.
	hasPatternDenyTarget := ev.Counters.SSN > 0 || ev.Counters.CreditCard > 0
	if hasPatternDenyTarget && !patternDenySuppressed(ev) && !hasEquivalentDeny(denies, "critical_pii:") {
		id := "deny:pattern:pii"
		a := domain.Argument{
			ID:       id,
			Kind:     domain.KindDeny,
			Strength: 0.95,
			Claim:    "sensitive pattern match: SSN or credit card detected",
			Source:   domain.SourcePattern,
			Evidence: map[string]any{"ssn": ev.Counters.SSN, "credit_card": ev.Counters.CreditCard},
		}
		if err := fw.AddArgument(a); err != nil {
			errs = multierr.Append(errs, err)
		} else {
			denies = append(denies, classifiedDeny{id: id, prefix: "critical_pii:"})
		}
	}

	// 4. Memory reputation -> Trust or Suspicion.
	var trustID string
	var suspicionIDs []string
	if n.memory != nil {
		rep, err := n.memory.Reputation(ctx, ev.Domain, now)
		if err != nil {
			n.logger.Warn("domain memory reputation lookup failed, degrading to unknown",
				zap.String("domain", ev.Domain), zap.Error(err))
			subs = append(subs, fmt.Sprintf("memory reputation unavailable for domain %q: degraded to unknown", ev.Domain))
		} else {
			switch rep.Label {
			case domain.ReputationTrusted:
				trustID = "trust:memory:" + ev.Domain
				strength := n.cfg.TrustStrengthFloor + 0.5*rep.Score
				a := domain.Argument{
					ID: trustID, Kind: domain.KindTrust, Strength: strength,
					Claim: fmt.Sprintf("domain %q has trusted history (score %.2f)", ev.Domain, rep.Score),
					Source: domain.SourceMemory,
					Evidence: map[string]any{"reputation_score": rep.Score, "sample_count": rep.SampleCount},
				}
				if err := fw.AddArgument(a); err != nil {
					errs = multierr.Append(errs, err)
					trustID = ""
				}
			case domain.ReputationSuspicious:
				suspicionID := "suspicion:memory:" + ev.Domain
				strength := n.cfg.TrustStrengthFloor + 0.5*absf(rep.Score)
				a := domain.Argument{
					ID: suspicionID, Kind: domain.KindSuspicion, Strength: strength,
					Claim: fmt.Sprintf("domain %q has suspicious history (score %.2f)", ev.Domain, rep.Score),
					Source: domain.SourceMemory,
					Evidence: map[string]any{"reputation_score": rep.Score, "sample_count": rep.SampleCount},
				}
				if err := fw.AddArgument(a); err != nil {
					errs = multierr.Append(errs, err)
				} else {
					suspicionIDs = append(suspicionIDs, suspicionID)
				}
			}
		}
	}

	// Collaborator substitution: the policy evaluator failed upstream and
	// the caller already substituted an empty PolicyVerdict (Decision ==
	// ""); record a low strength Suspicion argument so the substitution
	// is auditable.
	if ev.Policy.Decision == "" {
		suspicionID := "suspicion:policy_unavailable"
		a := domain.Argument{
			ID: suspicionID, Kind: domain.KindSuspicion, Strength: 0.4,
			Claim:  "policy evaluator unavailable, degraded to permissive default",
			Source: domain.SourceDefault,
		}
		if err := fw.AddArgument(a); err == nil {
			suspicionIDs = append(suspicionIDs, suspicionID)
			subs = append(subs, "policy evaluator unavailable: inserted Suspicion(0.4)")
		}
	}

	// 5. Baseline Allow, always.
	baselineID := "allow:baseline"
	if err := fw.AddArgument(domain.Argument{
		ID: baselineID, Kind: domain.KindBaseline, Strength: n.cfg.BaselineAllowStrength,
		Claim: "no objection raised", Source: domain.SourceDefault,
	}); err != nil {
		errs = multierr.Append(errs, err)
	}

	if errs != nil {
		return Outcome{}, errs
	}

	// Attack relation.
	for _, d := range denies {
		mustAttack(fw, d.id, baselineID)
		for _, m := range modifies {
			mustAttack(fw, d.id, m)
		}
		if trustID != "" {
			mustAttack(fw, d.id, trustID)
		}
	}
	for _, m := range modifies {
		mustAttack(fw, m, baselineID)
	}
	if trustID != "" {
		trustArg, _ := fw.Argument(trustID)
		for _, d := range denies {
			denyArg, _ := fw.Argument(d.id)
			if denyArg.Source == domain.SourceMemory || denyArg.Strength <= trustArg.Strength {
				mustAttack(fw, trustID, d.id)
			}
		}
		for _, m := range modifies {
			modArg, _ := fw.Argument(m)
			if modArg.Source == domain.SourceMemory || modArg.Strength <= trustArg.Strength {
				mustAttack(fw, trustID, m)
			}
		}
	}
	for _, s := range suspicionIDs {
		mustAttack(fw, s, baselineID)
		if trustID != "" {
			mustAttack(fw, s, trustID)
		}
	}
	// Deny-dominance: a dominates b for the same domain when a's prefix
	// dominates b's prefix per denyDominance.
	for _, a := range denies {
		dominated, ok := denyDominance[a.prefix]
		if !ok {
			continue
		}
		for _, b := range denies {
			if b.prefix == dominated {
				mustAttack(fw, a.id, b.id)
			}
		}
	}

	return Outcome{Framework: fw, Substitutions: subs}, nil
}

// patternDenySuppressed reports whether the policy evaluator explicitly
// returned no deny reasons despite a nonzero SSN/credit-card count — the
// research-pack exemption.
func patternDenySuppressed(ev domain.Evidence) bool {
	return len(ev.Policy.DenyReasons) == 0 && ev.Pack == "research"
}

// hasEquivalentDeny reports whether denies already contains a Deny of the
// given reason-class prefix, so the pattern-derived Deny is only skipped
// when an argument actually asserting that same PII risk already exists —
// not merely because some unrelated Deny (e.g. domain_blocked) was raised.
func hasEquivalentDeny(denies []classifiedDeny, prefix string) bool {
	for _, d := range denies {
		if d.prefix == prefix {
			return true
		}
	}
	return false
}

func mustAttack(fw *domain.Framework, attacker, target string) {
	_ = fw.AddAttack(attacker, target) // both ids are always already present
}

// reasonClass extracts the "prefix:" class of a deny reason (e.g.
// "classified_content:" from "classified_content: internal memo"), used
// only for the deny-dominance rule, independent of whether that prefix
// has a strength override.
func reasonClass(reason string) string {
	if i := strings.Index(reason, ":"); i >= 0 {
		return reason[:i+1]
	}
	return ""
}

func slug(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}

func absf(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
