// Package resolver implements the Resolver: turning the Solver's
// extensions into a verdict, a risk score, a defeated map, and an
// explanation tree.
package resolver

import (
	"sort"

	"github.com/arbiter-ai/arbiter/internal/aaf"
	"github.com/arbiter-ai/arbiter/internal/domain"
)

// weights are the per-kind risk contributions.
var weights = map[domain.Kind]float64{
	domain.KindDeny:      40,
	domain.KindModify:    15,
	domain.KindSuspicion: 25,
	domain.KindTrust:     -20,
	domain.KindAllow:     0,
	domain.KindBaseline:  0,
}

// hintWeight is the blend weight for the policy evaluator's
// risk_score_hint.
const hintWeight = 0.25

// Resolver selects the authoritative extension and derives a
// domain.ResolutionResult from it.
type Resolver struct{}

// New returns a Resolver. It holds no state: every call is a pure
// function of its inputs, so the same Framework and Solver result always
// produce the same ResolutionResult.
func New() *Resolver {
	return &Resolver{}
}

// Resolve turns a Solver result plus the originating Framework and the
// policy evaluator's risk hint into a ResolutionResult.
func (r *Resolver) Resolve(fw *domain.Framework, solved aaf.Result, riskScoreHint int, substitutions []string) domain.ResolutionResult {
	chosen := r.authoritative(fw, solved)

	res := domain.ResolutionResult{
		Verdict:            verdictOf(fw, chosen),
		ChosenExtension:    chosen,
		Grounded:           solved.Grounded,
		Preferred:          solved.Preferred,
		Stable:             solved.Stable,
		TimeBudgetExceeded: solved.TimeBudgetExceeded,
		Substitutions:      substitutions,
	}

	res.DefeatedMap = defeatedMap(fw, chosen)
	res.RiskScore = riskScore(fw, chosen, riskScoreHint)
	res.Explanation = explain(fw, chosen, res.DefeatedMap)

	return res
}

// authoritative picks the grounded extension by default. If grounded is
// empty and at least one preferred extension exists, it picks the
// preferred extension with the highest summed strength (ties: more
// members, then lexical on sorted ids). domain.SortExtensions has no
// member-count key, so betterPreferred carries its own comparison.
func (r *Resolver) authoritative(fw *domain.Framework, solved aaf.Result) domain.Extension {
	if len(solved.Grounded.Args) > 0 || len(solved.Preferred) == 0 {
		return solved.Grounded
	}
	best := solved.Preferred[0]
	for _, p := range solved.Preferred[1:] {
		if betterPreferred(fw, p, best) {
			best = p
		}
	}
	return best
}

func betterPreferred(fw *domain.Framework, a, b domain.Extension) bool {
	sa, sb := a.AggregateStrength(fw), b.AggregateStrength(fw)
	if sa != sb {
		return sa > sb
	}
	if len(a.Args) != len(b.Args) {
		return len(a.Args) > len(b.Args)
	}
	return joinSorted(a.Args) < joinSorted(b.Args)
}

func joinSorted(ids []string) string {
	cp := append([]string(nil), ids...)
	sort.Strings(cp)
	out := ""
	for i, id := range cp {
		if i > 0 {
			out += ","
		}
		out += id
	}
	return out
}

func verdictOf(fw *domain.Framework, e domain.Extension) domain.Verdict {
	hasModify := false
	for _, id := range e.Args {
		a, ok := fw.Argument(id)
		if !ok {
			continue
		}
		if a.Kind == domain.KindDeny {
			return domain.VerdictDeny
		}
		if a.Kind == domain.KindModify {
			hasModify = true
		}
	}
	if hasModify {
		return domain.VerdictAllowWithModifications
	}
	return domain.VerdictAllow
}

// defeatedMap records, for every argument not in e but attacked by some
// member of e, the winning attacker — tie-broken by highest strength,
// then lexical id.
func defeatedMap(fw *domain.Framework, e domain.Extension) []domain.Defeat {
	inSet := make(map[string]bool, len(e.Args))
	for _, id := range e.Args {
		inSet[id] = true
	}

	winners := map[string]domain.Argument{} // defeated id -> current best winner
	for _, atk := range fw.Attacks() {
		if !inSet[atk.Attacker] || inSet[atk.Target] {
			continue
		}
		winnerArg, _ := fw.Argument(atk.Attacker)
		if cur, ok := winners[atk.Target]; !ok || betterWinner(winnerArg, cur) {
			winners[atk.Target] = winnerArg
		}
	}

	ids := make([]string, 0, len(winners))
	for id := range winners {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]domain.Defeat, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Defeat{DefeatedID: id, WinnerID: winners[id].ID})
	}
	return out
}

func betterWinner(candidate, current domain.Argument) bool {
	if candidate.Strength != current.Strength {
		return candidate.Strength > current.Strength
	}
	return candidate.ID < current.ID
}

func riskScore(fw *domain.Framework, e domain.Extension, hint int) float64 {
	var total float64
	for _, id := range e.Args {
		a, ok := fw.Argument(id)
		if !ok {
			continue
		}
		total += a.Strength * weights[a.Kind]
	}
	total = clamp(total, 0, 100)
	blended := (1-hintWeight)*total + hintWeight*clamp(float64(hint), 0, 100)
	return clamp(blended, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func explain(fw *domain.Framework, e domain.Extension, defeats []domain.Defeat) []domain.ExplanationEntry {
	byWinner := map[string][]string{}
	for _, d := range defeats {
		byWinner[d.WinnerID] = append(byWinner[d.WinnerID], d.DefeatedID)
	}
	for _, list := range byWinner {
		sort.Strings(list)
	}

	entries := make([]domain.ExplanationEntry, 0, len(e.Args))
	for _, id := range e.Args {
		a, ok := fw.Argument(id)
		if !ok {
			continue
		}
		entries = append(entries, domain.ExplanationEntry{
			ArgumentID: id,
			Claim:      a.Claim,
			Defeats:    byWinner[id],
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ArgumentID < entries[j].ArgumentID })
	return entries
}
