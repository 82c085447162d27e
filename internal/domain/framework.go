package domain

import (
	"fmt"
	"sort"
)

// Framework is an Abstract Argumentation Framework (A, R) in the sense of
// Dung (1995): a finite set of Arguments indexed by id, plus a set of
// Attacks between them. A Framework owns its Arguments and Attacks by
// value; callers that need to run a semantics over it should treat it as
// read-only (the Resolver borrows one, never mutates it).
type Framework struct {
	args    map[string]Argument
	order   []string // insertion order, preserved for audit/debug only
	attacks map[Attack]struct{}
}

// NewFramework returns an empty, mutable Framework ready for
// AddArgument/AddAttack calls from the Evidence Normalizer.
func NewFramework() *Framework {
	return &Framework{
		args:    make(map[string]Argument),
		attacks: make(map[Attack]struct{}),
	}
}

// AddArgument inserts an argument. Returns an error if the id already
// exists, since ids must be unique within a framework.
func (f *Framework) AddArgument(a Argument) error {
	if a.ID == "" {
		return fmt.Errorf("%w: empty argument id", ErrInvalidFramework)
	}
	if _, exists := f.args[a.ID]; exists {
		return fmt.Errorf("%w: duplicate argument id %q", ErrInvalidFramework, a.ID)
	}
	f.args[a.ID] = a
	f.order = append(f.order, a.ID)
	return nil
}

// HasArgument reports whether id is present in the framework.
func (f *Framework) HasArgument(id string) bool {
	_, ok := f.args[id]
	return ok
}

// Argument returns the argument with the given id, if present.
func (f *Framework) Argument(id string) (Argument, bool) {
	a, ok := f.args[id]
	return a, ok
}

// AddAttack inserts an attack edge. Multi-edges collapse silently
// (idempotent). Both ids must already be present in the framework.
func (f *Framework) AddAttack(attackerID, targetID string) error {
	if _, ok := f.args[attackerID]; !ok {
		return fmt.Errorf("%w: attacker id %q not in framework", ErrInvalidFramework, attackerID)
	}
	if _, ok := f.args[targetID]; !ok {
		return fmt.Errorf("%w: target id %q not in framework", ErrInvalidFramework, targetID)
	}
	f.attacks[Attack{Attacker: attackerID, Target: targetID}] = struct{}{}
	return nil
}

// Arguments returns all arguments, sorted by id for determinism.
func (f *Framework) Arguments() []Argument {
	out := make([]Argument, 0, len(f.args))
	for _, id := range f.sortedIDs() {
		out = append(out, f.args[id])
	}
	return out
}

// Attacks returns all attack edges, sorted for determinism.
func (f *Framework) Attacks() []Attack {
	out := make([]Attack, 0, len(f.attacks))
	for a := range f.attacks {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Attacker != out[j].Attacker {
			return out[i].Attacker < out[j].Attacker
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// HasAttack reports whether attacker attacks target.
func (f *Framework) HasAttack(attackerID, targetID string) bool {
	_, ok := f.attacks[Attack{Attacker: attackerID, Target: targetID}]
	return ok
}

func (f *Framework) sortedIDs() []string {
	ids := make([]string, 0, len(f.args))
	for id := range f.args {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of arguments in the framework.
func (f *Framework) Len() int {
	return len(f.args)
}

// Validate checks the core AAF invariants: every attack endpoint
// resolves in A, and the argument set is finite (trivially true for an
// in-memory map). It is redundant with the checks AddAttack/AddArgument
// already perform, but is kept as a single entry point the Solver calls
// before trusting a Framework built by another package.
func (f *Framework) Validate() error {
	for atk := range f.attacks {
		if _, ok := f.args[atk.Attacker]; !ok {
			return fmt.Errorf("%w: dangling attacker %q", ErrInvalidFramework, atk.Attacker)
		}
		if _, ok := f.args[atk.Target]; !ok {
			return fmt.Errorf("%w: dangling target %q", ErrInvalidFramework, atk.Target)
		}
	}
	return nil
}
