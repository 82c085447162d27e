package domain

import "context"

// PolicyVerdict is the shape returned by the external policy evaluator
// collaborator. RiskScoreHint feeds into the Resolver's risk_score blend
// with weight 0.25.
type PolicyVerdict struct {
	Decision         string   `json:"decision"`
	DenyReasons      []string `json:"deny_reasons"`
	ModificationList []string `json:"modification_list"`
	MatchedRules     []string `json:"matched_rules"`
	RiskScoreHint    int      `json:"risk_score_hint"`
}

// Counters is the sensitive-pattern detector's output shape. All fields
// are non-negative counts.
type Counters struct {
	SSN        int `json:"ssn"`
	CreditCard int `json:"credit_card"`
	Email      int `json:"email"`
	Phone      int `json:"phone"`
	IPAddress  int `json:"ip_address"`
}

// Evidence bundles everything the Evidence Normalizer needs to build a
// Framework for one request.
type Evidence struct {
	Domain   string
	Pack     string
	Policy   PolicyVerdict
	Counters Counters
}

// PatternDetector is the regex-based sensitive-pattern collaborator.
// It never fails for in-memory input.
type PatternDetector interface {
	Scan(ctx context.Context, text string) (Counters, error)
}

// PolicyEvaluator is the external, black-box policy collaborator. It may
// fail with ErrPolicyUnavailable; callers must substitute a zero-value
// PolicyVerdict (Decision == ""), which the Normalizer reads as
// "evaluator unavailable" rather than an actual allow decision.
type PolicyEvaluator interface {
	Evaluate(ctx context.Context, domain, pack string, counters Counters, features map[string]any) (PolicyVerdict, error)
}
