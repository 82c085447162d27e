package policy

import (
	"context"
	"testing"

	"github.com/arbiter-ai/arbiter/internal/domain"
)

func TestEvaluateBlockedDomainDenies(t *testing.T) {
	e := New([]string{"blocked.example"})
	v, err := e.Evaluate(context.Background(), "blocked.example", "", domain.Counters{}, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.Decision != "deny" {
		t.Fatalf("Decision = %v, want deny", v.Decision)
	}
	if len(v.DenyReasons) != 1 {
		t.Fatalf("DenyReasons = %v, want 1 entry", v.DenyReasons)
	}
}

func TestEvaluateResearchPackSuppressesPIIDeny(t *testing.T) {
	e := New(nil)
	v, err := e.Evaluate(context.Background(), "example.com", "research", domain.Counters{SSN: 2}, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.Decision != "allow" {
		t.Fatalf("Decision = %v, want allow under the research pack", v.Decision)
	}
}

func TestEvaluateSSNOutsideResearchPackDenies(t *testing.T) {
	e := New(nil)
	v, err := e.Evaluate(context.Background(), "example.com", "", domain.Counters{SSN: 1}, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.Decision != "deny" {
		t.Fatalf("Decision = %v, want deny", v.Decision)
	}
}

func TestEvaluateContactInfoModifies(t *testing.T) {
	e := New(nil)
	v, err := e.Evaluate(context.Background(), "example.com", "", domain.Counters{Email: 1}, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.Decision != "modify" {
		t.Fatalf("Decision = %v, want modify", v.Decision)
	}
	if len(v.ModificationList) != 1 || v.ModificationList[0] != "pii_redaction" {
		t.Fatalf("ModificationList = %v, want [pii_redaction]", v.ModificationList)
	}
}

func TestEvaluateCredentialFeatureDenies(t *testing.T) {
	e := New(nil)
	v, err := e.Evaluate(context.Background(), "example.com", "", domain.Counters{}, map[string]any{"credential_detected": true})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.Decision != "deny" {
		t.Fatalf("Decision = %v, want deny", v.Decision)
	}
}

func TestEvaluateCleanInputAllows(t *testing.T) {
	e := New(nil)
	v, err := e.Evaluate(context.Background(), "example.com", "", domain.Counters{}, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.Decision != "allow" {
		t.Fatalf("Decision = %v, want allow", v.Decision)
	}
	if v.RiskScoreHint != 0 {
		t.Fatalf("RiskScoreHint = %v, want 0", v.RiskScoreHint)
	}
}

func TestEvaluateMatchedRulesAreSorted(t *testing.T) {
	e := New([]string{"blocked.example"})
	v, err := e.Evaluate(context.Background(), "blocked.example", "", domain.Counters{SSN: 1, Email: 1}, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	for i := 1; i < len(v.MatchedRules); i++ {
		if v.MatchedRules[i-1] > v.MatchedRules[i] {
			t.Fatalf("MatchedRules not sorted: %v", v.MatchedRules)
		}
	}
}

func TestEvaluateRiskScoreHintClampedToHundred(t *testing.T) {
	e := New([]string{"blocked.example"})
	v, err := e.Evaluate(context.Background(), "blocked.example", "", domain.Counters{SSN: 5, CreditCard: 5, Email: 20, Phone: 20, IPAddress: 20}, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.RiskScoreHint != 100 {
		t.Fatalf("RiskScoreHint = %v, want clamped to 100", v.RiskScoreHint)
	}
}
