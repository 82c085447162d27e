package domain

// Attack is a directed edge of the attack relation R: (attacker_id,
// target_id). Self-attacks (Attacker == Target) are permitted and
// significant — see Framework.Validate and the grounded-extension
// fixed point in package aaf.
type Attack struct {
	Attacker string
	Target   string
}
