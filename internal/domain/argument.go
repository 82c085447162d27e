package domain

// Kind is the closed set of argument roles the Evidence Normalizer can
// produce. It is a tagged variant: strength modifiers and attack-generation
// rules are pure functions over the tag, never an open extension point.
type Kind string

const (
	KindDeny      Kind = "Deny"
	KindModify    Kind = "Modify"
	KindAllow     Kind = "Allow"
	KindTrust     Kind = "Trust"
	KindSuspicion Kind = "Suspicion"
	KindBaseline  Kind = "Baseline"
)

// Source identifies which collaborator produced an argument.
type Source string

const (
	SourcePolicy  Source = "Policy"
	SourcePattern Source = "Pattern"
	SourceMemory  Source = "Memory"
	SourceDefault Source = "Default"
)

// Argument is immutable once inserted into a Framework. Identity is the
// string id, unique within the framework it belongs to.
type Argument struct {
	ID       string
	Kind     Kind
	Strength float64
	Claim    string
	Source   Source
	Evidence map[string]any
}

// IsDeny reports whether the argument's kind contributes to a deny
// verdict when present in an authoritative extension.
func (a Argument) IsDeny() bool {
	return a.Kind == KindDeny
}

func (a Argument) IsModify() bool {
	return a.Kind == KindModify
}
