// Package policy provides a reference PolicyEvaluator collaborator. The
// real evaluator is an external, black-box system; this rule-based
// stand-in exists so Arbiter is runnable and testable end-to-end
// without that dependency.
package policy

import (
	"context"
	"fmt"
	"sort"

	"github.com/arbiter-ai/arbiter/internal/domain"
)

// Evaluator is a deterministic, rule-based reference PolicyEvaluator.
type Evaluator struct {
	blockedDomains map[string]bool
}

// New returns an Evaluator that treats every domain in blocked as
// domain_blocked.
func New(blocked []string) *Evaluator {
	m := make(map[string]bool, len(blocked))
	for _, d := range blocked {
		m[d] = true
	}
	return &Evaluator{blockedDomains: m}
}

// Evaluate implements domain.PolicyEvaluator.
func (e *Evaluator) Evaluate(ctx context.Context, dom, pack string, counters domain.Counters, features map[string]any) (domain.PolicyVerdict, error) {
	var denyReasons, modifications, matchedRules []string

	if e.blockedDomains[dom] {
		denyReasons = append(denyReasons, fmt.Sprintf("domain_blocked: %s", dom))
		matchedRules = append(matchedRules, "blocklist")
	}

	if pack != "research" {
		if counters.SSN > 0 {
			denyReasons = append(denyReasons, fmt.Sprintf("critical_pii: %d SSN(s) detected", counters.SSN))
			matchedRules = append(matchedRules, "pii.ssn")
		}
		if counters.CreditCard > 0 {
			denyReasons = append(denyReasons, fmt.Sprintf("critical_pii: %d credit card(s) detected", counters.CreditCard))
			matchedRules = append(matchedRules, "pii.credit_card")
		}
	}

	if credential, _ := features["credential_detected"].(bool); credential {
		denyReasons = append(denyReasons, "credential_detected: API key or password pattern found")
		matchedRules = append(matchedRules, "credential")
	}

	if counters.Email > 0 || counters.Phone > 0 {
		modifications = append(modifications, "pii_redaction")
		matchedRules = append(matchedRules, "pii.contact")
	}
	if counters.IPAddress > 0 {
		modifications = append(modifications, "ip_masking")
		matchedRules = append(matchedRules, "pii.ip")
	}

	decision := "allow"
	if len(denyReasons) > 0 {
		decision = "deny"
	} else if len(modifications) > 0 {
		decision = "modify"
	}

	sort.Strings(matchedRules)

	return domain.PolicyVerdict{
		Decision:         decision,
		DenyReasons:      denyReasons,
		ModificationList: modifications,
		MatchedRules:     matchedRules,
		RiskScoreHint:    riskHint(matchedRules),
	}, nil
}

// ruleWeight is how heavily each matched rule pushes the risk_score_hint
// an external policy evaluator would report; critical PII and credential
// matches dominate, contact-info/IP modification hints barely move it.
var ruleWeight = map[string]int{
	"blocklist":       30,
	"pii.ssn":         50,
	"pii.credit_card": 50,
	"credential":      40,
	"pii.contact":     10,
	"pii.ip":          5,
}

func riskHint(matchedRules []string) int {
	hint := 0
	for _, r := range matchedRules {
		hint += ruleWeight[r]
	}
	if hint > 100 {
		hint = 100
	}
	return hint
}
