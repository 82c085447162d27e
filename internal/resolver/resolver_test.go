package resolver

import (
	"context"
	"testing"

	"github.com/arbiter-ai/arbiter/internal/aaf"
	"github.com/arbiter-ai/arbiter/internal/domain"
)

func solve(t *testing.T, fw *domain.Framework) aaf.Result {
	t.Helper()
	res, err := aaf.New(aaf.Config{}).Solve(context.Background(), fw)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	return res
}

func TestResolveAllowWhenOnlyBaselineSurvives(t *testing.T) {
	fw := domain.NewFramework()
	_ = fw.AddArgument(domain.Argument{ID: "allow:baseline", Kind: domain.KindBaseline, Strength: 0.3})

	r := New()
	result := r.Resolve(fw, solve(t, fw), 0, nil)

	if result.Verdict != domain.VerdictAllow {
		t.Fatalf("Verdict = %v, want allow", result.Verdict)
	}
}

func TestResolveDenyWhenDenyWinsGrounded(t *testing.T) {
	fw := domain.NewFramework()
	_ = fw.AddArgument(domain.Argument{ID: "allow:baseline", Kind: domain.KindBaseline, Strength: 0.3})
	_ = fw.AddArgument(domain.Argument{ID: "deny:x", Kind: domain.KindDeny, Strength: 0.9, Claim: "blocked"})
	_ = fw.AddAttack("deny:x", "allow:baseline")

	r := New()
	result := r.Resolve(fw, solve(t, fw), 0, nil)

	if result.Verdict != domain.VerdictDeny {
		t.Fatalf("Verdict = %v, want deny", result.Verdict)
	}
	if len(result.DefeatedMap) != 1 || result.DefeatedMap[0].DefeatedID != "allow:baseline" {
		t.Fatalf("unexpected defeated map: %+v", result.DefeatedMap)
	}
}

func TestResolveAllowWithModificationsWhenOnlyModifySurvives(t *testing.T) {
	fw := domain.NewFramework()
	_ = fw.AddArgument(domain.Argument{ID: "allow:baseline", Kind: domain.KindBaseline, Strength: 0.3})
	_ = fw.AddArgument(domain.Argument{ID: "modify:x", Kind: domain.KindModify, Strength: 0.7, Claim: "redact"})
	_ = fw.AddAttack("modify:x", "allow:baseline")

	r := New()
	result := r.Resolve(fw, solve(t, fw), 0, nil)

	if result.Verdict != domain.VerdictAllowWithModifications {
		t.Fatalf("Verdict = %v, want allow_with_modifications", result.Verdict)
	}
}

func TestResolveFallsBackToBestPreferredWhenGroundedEmpty(t *testing.T) {
	// Mutual attack between two denies of different strength, grounded is
	// empty: the Resolver must pick the stronger preferred extension.
	fw := domain.NewFramework()
	_ = fw.AddArgument(domain.Argument{ID: "deny:strong", Kind: domain.KindDeny, Strength: 0.9})
	_ = fw.AddArgument(domain.Argument{ID: "deny:weak", Kind: domain.KindDeny, Strength: 0.2})
	_ = fw.AddAttack("deny:strong", "deny:weak")
	_ = fw.AddAttack("deny:weak", "deny:strong")

	r := New()
	result := r.Resolve(fw, solve(t, fw), 0, nil)

	if !result.ChosenExtension.Contains("deny:strong") {
		t.Fatalf("expected the stronger preferred extension to be chosen, got %v", result.ChosenExtension.Args)
	}
}

func TestRiskScoreBlendsHint(t *testing.T) {
	fw := domain.NewFramework()
	_ = fw.AddArgument(domain.Argument{ID: "deny:x", Kind: domain.KindDeny, Strength: 1.0})

	r := New()
	resultNoHint := r.Resolve(fw, solve(t, fw), 0, nil)
	resultWithHint := r.Resolve(fw, solve(t, fw), 100, nil)

	if resultWithHint.RiskScore <= resultNoHint.RiskScore {
		t.Fatalf("expected a higher risk_score_hint to raise the blended score: %v vs %v", resultWithHint.RiskScore, resultNoHint.RiskScore)
	}
}

func TestRiskScoreClampedToHundred(t *testing.T) {
	fw := domain.NewFramework()
	// Three unattacked denies all land in the grounded extension and sum
	// to 120 pre-clamp (3 * 40), well past the ceiling.
	_ = fw.AddArgument(domain.Argument{ID: "deny:a", Kind: domain.KindDeny, Strength: 1.0})
	_ = fw.AddArgument(domain.Argument{ID: "deny:b", Kind: domain.KindDeny, Strength: 1.0})
	_ = fw.AddArgument(domain.Argument{ID: "deny:c", Kind: domain.KindDeny, Strength: 1.0})

	r := New()
	result := r.Resolve(fw, solve(t, fw), 100, nil)

	if result.RiskScore != 100 {
		t.Fatalf("RiskScore = %v, want clamped to 100", result.RiskScore)
	}
}
