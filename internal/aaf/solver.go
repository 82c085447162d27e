// Package aaf computes the semantic extensions of an abstract
// argumentation framework: the grounded extension, the family of
// preferred extensions, and the family of stable extensions, per
// Dung (1995).
package aaf

import (
	"context"
	"sort"
	"time"

	"github.com/arbiter-ai/arbiter/internal/domain"
)

// Config tunes the Solver's resource budget.
type Config struct {
	// BudgetMS caps the preferred/stable search. Zero means the default
	// of 50ms.
	BudgetMS int
	// EnumerationCap aborts preferred/stable search (grounded still
	// runs) once the framework has more than this many arguments. Zero
	// means the default of 32.
	EnumerationCap int
}

func (c Config) budget() time.Duration {
	if c.BudgetMS <= 0 {
		return 50 * time.Millisecond
	}
	return time.Duration(c.BudgetMS) * time.Millisecond
}

func (c Config) cap() int {
	if c.EnumerationCap <= 0 {
		return 32
	}
	return c.EnumerationCap
}

// Result is everything the Solver computed for one Framework.
type Result struct {
	Grounded           domain.Extension
	Preferred          []domain.Extension
	Stable             []domain.Extension
	TimeBudgetExceeded bool
}

// Solver computes extensions of a domain.Framework.
type Solver struct {
	cfg Config
}

// New returns a Solver with the given resource budget.
func New(cfg Config) *Solver {
	return &Solver{cfg: cfg}
}

// indexed is the O(|A|^2/word) working representation: contiguous
// arrays plus bitset adjacency, built once per Solve call.
type indexed struct {
	fw          *domain.Framework
	ids         []string // index -> id, sorted lexically
	idx         map[string]int
	attackersOf []bitset // attackersOf[i] = bitset of arguments attacking i
	targetsOf   []bitset // targetsOf[i] = bitset of arguments i attacks
	selfAttack  []bool
	strength    []float64
	n           int
}

func buildIndexed(fw *domain.Framework) *indexed {
	args := fw.Arguments() // already sorted by id
	n := len(args)
	ix := &indexed{
		fw:          fw,
		ids:         make([]string, n),
		idx:         make(map[string]int, n),
		attackersOf: make([]bitset, n),
		targetsOf:   make([]bitset, n),
		selfAttack:  make([]bool, n),
		strength:    make([]float64, n),
		n:           n,
	}
	for i, a := range args {
		ix.ids[i] = a.ID
		ix.idx[a.ID] = i
		ix.strength[i] = a.Strength
	}
	for i := range args {
		ix.attackersOf[i] = newBitset(n)
		ix.targetsOf[i] = newBitset(n)
	}
	for _, atk := range fw.Attacks() {
		ai, aok := ix.idx[atk.Attacker]
		ti, tok := ix.idx[atk.Target]
		if !aok || !tok {
			continue // Validate() already rejects this; defensive only
		}
		ix.attackersOf[ti].set(ai)
		ix.targetsOf[ai].set(ti)
		if ai == ti {
			ix.selfAttack[ai] = true
		}
	}
	return ix
}

// defends reports whether S defends argument i: every attacker of i is
// itself attacked by some member of S.
func (ix *indexed) defends(s bitset, i int) bool {
	attackers := ix.attackersOf[i]
	for j := 0; j < ix.n; j++ {
		if !attackers.has(j) {
			continue
		}
		if !s.intersects(ix.attackersOf[j]) {
			return false
		}
	}
	return true
}

// characteristic computes F(S), Dung's characteristic function.
func (ix *indexed) characteristic(s bitset) bitset {
	out := newBitset(ix.n)
	for i := 0; i < ix.n; i++ {
		if ix.defends(s, i) {
			out.set(i)
		}
	}
	return out
}

func (ix *indexed) conflictFree(s bitset) bool {
	for i := 0; i < ix.n; i++ {
		if !s.has(i) {
			continue
		}
		if ix.selfAttack[i] {
			return false
		}
		if s.intersects(ix.targetsOf[i]) {
			return false
		}
	}
	return true
}

func (ix *indexed) toExtension(s bitset, kind domain.ExtensionKind) domain.Extension {
	members := s.indices(ix.n)
	ids := make([]string, len(members))
	for k, m := range members {
		ids[k] = ix.ids[m]
	}
	sort.Strings(ids)

	rejectedSet := newBitset(ix.n)
	for _, m := range members {
		rejectedSet = rejectedSet.or(ix.targetsOf[m])
	}
	rejIdx := rejectedSet.indices(ix.n)
	rej := make([]string, len(rejIdx))
	for k, r := range rejIdx {
		rej[k] = ix.ids[r]
	}
	sort.Strings(rej)

	return domain.Extension{Kind: kind, Args: ids, Rejected: rej}
}

// Solve computes the grounded extension unconditionally, and attempts
// the preferred and stable families subject to ctx's deadline, the
// enumeration cap, and the configured time budget.
func (s *Solver) Solve(ctx context.Context, fw *domain.Framework) (Result, error) {
	if err := fw.Validate(); err != nil {
		return Result{}, err
	}

	ix := buildIndexed(fw)

	grounded := s.grounded(ix)
	result := Result{Grounded: ix.toExtension(grounded, domain.ExtensionGrounded)}

	if ix.n > s.cfg.cap() {
		result.TimeBudgetExceeded = true
		return result, nil
	}

	deadline := time.Now().Add(s.cfg.budget())
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	preferredBitsets, exceeded := s.preferred(ix, deadline)
	if exceeded {
		result.TimeBudgetExceeded = true
		return result, nil
	}

	preferred := make([]domain.Extension, 0, len(preferredBitsets))
	for _, p := range preferredBitsets {
		preferred = append(preferred, ix.toExtension(p, domain.ExtensionPreferred))
	}
	domain.SortExtensions(preferred, fw)
	result.Preferred = preferred

	stable := s.stable(ix, preferredBitsets)
	stableExts := make([]domain.Extension, 0, len(stable))
	for _, st := range stable {
		stableExts = append(stableExts, ix.toExtension(st, domain.ExtensionStable))
	}
	domain.SortExtensions(stableExts, fw)
	result.Stable = stableExts

	return result, nil
}

// grounded iterates S_0=∅, S_{i+1}=F(S_i) to its fixed point. F is
// monotonic (Dung 1995), so this always converges, in at most |A| steps.
func (s *Solver) grounded(ix *indexed) bitset {
	current := newBitset(ix.n)
	for i := 0; i < ix.n; i++ {
		next := ix.characteristic(current)
		if next.equal(current) {
			return current
		}
		current = next
	}
	return current
}

// preferred enumerates the maximal admissible sets via a depth-first
// search over "is argument i IN the candidate set", branching IN before
// OUT and pruning on conflict. Arguments are visited in order of
// descending strength (ties broken lexically by id), so the strongest,
// most-contested arguments get decided first.
func (s *Solver) preferred(ix *indexed, deadline time.Time) ([]bitset, bool) {
	order := make([]int, ix.n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if ix.strength[ia] != ix.strength[ib] {
			return ix.strength[ia] > ix.strength[ib]
		}
		return ix.ids[ia] < ix.ids[ib]
	})

	var admissible []bitset
	exceeded := false
	checkEvery := 0

	var rec func(pos int, in bitset)
	rec = func(pos int, in bitset) {
		if exceeded {
			return
		}
		checkEvery++
		if checkEvery&1023 == 0 && time.Now().After(deadline) {
			exceeded = true
			return
		}
		if pos == len(order) {
			if ix.conflictFree(in) && isAdmissible(ix, in) {
				admissible = append(admissible, in.clone())
			}
			return
		}
		a := order[pos]

		// Branch 1: a IN.
		if !ix.selfAttack[a] && !ix.targetsOf[a].intersects(in) && !in.intersects(ix.attackersOf[a]) {
			withA := in.clone()
			withA.set(a)
			rec(pos+1, withA)
			if exceeded {
				return
			}
		}

		// Branch 2: a OUT.
		rec(pos+1, in)
	}
	rec(0, newBitset(ix.n))

	if exceeded {
		return nil, true
	}
	return maximal(admissible, ix.n), false
}

// isAdmissible checks S ⊆ F(S) for a conflict-free S.
func isAdmissible(ix *indexed, s bitset) bool {
	f := ix.characteristic(s)
	for i := 0; i < ix.n; i++ {
		if s.has(i) && !f.has(i) {
			return false
		}
	}
	return true
}

// maximal filters a slice of admissible bitsets down to those not a
// proper subset of another member, and deduplicates.
func maximal(sets []bitset, n int) []bitset {
	var out []bitset
	for i, s := range sets {
		dominated := false
		for j, t := range sets {
			if i == j {
				continue
			}
			if isSubset(s, t) && !s.equal(t) {
				dominated = true
				break
			}
		}
		if dominated {
			continue
		}
		// dedupe against already-accepted
		dup := false
		for _, kept := range out {
			if kept.equal(s) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, s)
		}
	}
	return out
}

func isSubset(s, t bitset) bool {
	for i := range s {
		if s[i]&^t[i] != 0 {
			return false
		}
	}
	return true
}

// stable filters the preferred family to those S where every argument
// outside S is attacked by some member of S.
func (s *Solver) stable(ix *indexed, preferred []bitset) []bitset {
	var out []bitset
	for _, p := range preferred {
		attackedBy := newBitset(ix.n)
		members := p.indices(ix.n)
		for _, m := range members {
			attackedBy = attackedBy.or(ix.targetsOf[m])
		}
		complete := true
		for i := 0; i < ix.n; i++ {
			if p.has(i) {
				continue
			}
			if !attackedBy.has(i) {
				complete = false
				break
			}
		}
		if complete {
			out = append(out, p)
		}
	}
	return out
}
