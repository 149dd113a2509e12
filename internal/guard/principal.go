// Package guard implements the enforcement boundary: guards resolve a caller
// to a typed principal and answer allow/deny decisions built on the
// permission evaluator.
//
// Guards fail closed. Any evaluator or resolution error during authorization
// becomes a denial with a warning log, never a grant and never a propagated
// infrastructure error.
package guard

// Principal is the typed identity of a caller. Exactly two kinds exist:
// Authenticated and Anonymous. Guards switch over the kind exhaustively; an
// unknown kind is denied.
type Principal interface {
	isPrincipal()
}

// Authenticated is a logged-in agent.
type Authenticated struct {
	// AgentID is the agent behind the caller.
	AgentID uint64
	// Staff mirrors the agent's back-office staff flag.
	Staff bool
	// Superuser mirrors the agent's superuser flag.
	Superuser bool
}

func (Authenticated) isPrincipal() {}

// Anonymous is an unauthenticated caller.
type Anonymous struct{}

func (Anonymous) isPrincipal() {}
