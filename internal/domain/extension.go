package domain

import "sort"

// ExtensionKind tags which semantics produced an Extension.
type ExtensionKind string

const (
	ExtensionGrounded  ExtensionKind = "Grounded"
	ExtensionPreferred ExtensionKind = "Preferred"
	ExtensionStable    ExtensionKind = "Stable"
)

// Extension is a subset of a Framework's arguments satisfying a
// semantics-specific predicate, returned together with its classification
// and the set of arguments it rejects (attacked by some member).
type Extension struct {
	Kind     ExtensionKind
	Args     []string // sorted ids, the members of E
	Rejected []string // sorted ids, attacked by some member of E
}

// Contains reports whether id is a member of the extension.
func (e Extension) Contains(id string) bool {
	for _, m := range e.Args {
		if m == id {
			return true
		}
	}
	return false
}

// AggregateStrength sums the strength of every member, resolving each id
// against fw. Used for the Resolver's tie-break and the Solver's
// deterministic ordering of multiple extensions of the same kind.
func (e Extension) AggregateStrength(fw *Framework) float64 {
	var total float64
	for _, id := range e.Args {
		if a, ok := fw.Argument(id); ok {
			total += a.Strength
		}
	}
	return total
}

// SortExtensions orders extensions by descending aggregate strength, then
// by the lexical join of their sorted member ids, giving a total,
// deterministic order over any extension family.
func SortExtensions(exts []Extension, fw *Framework) {
	sort.SliceStable(exts, func(i, j int) bool {
		si := exts[i].AggregateStrength(fw)
		sj := exts[j].AggregateStrength(fw)
		if diff := si - sj; diff > 1e-9 || diff < -1e-9 {
			return si > sj
		}
		return joinIDs(exts[i].Args) < joinIDs(exts[j].Args)
	})
}

func joinIDs(ids []string) string {
	out := make([]string, len(ids))
	copy(out, ids)
	sort.Strings(out)
	s := ""
	for i, id := range out {
		if i > 0 {
			s += ","
		}
		s += id
	}
	return s
}
