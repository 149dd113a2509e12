package guard

import "fmt"

// Effect is the outcome class of an authorization decision.
type Effect int

const (
	// Allow grants the operation.
	Allow Effect = iota
	// DenyUnauthenticated denies because no principal is logged in; the
	// boundary should answer with redirect-to-login semantics.
	DenyUnauthenticated
	// DenyForbidden denies an authenticated principal.
	DenyForbidden
)

// Decision is the outcome of one guard evaluation.
type Decision struct {
	// Effect classifies the outcome.
	Effect Effect
	// Reason is a short human-readable explanation, empty on Allow.
	Reason string
}

// Allowed reports whether the decision grants the operation.
func (d Decision) Allowed() bool {
	return d.Effect == Allow
}

func allow() Decision {
	return Decision{Effect: Allow}
}

func denyUnauthenticated() Decision {
	return Decision{Effect: DenyUnauthenticated, Reason: "authentication required"}
}

func denyForbidden(reason string) Decision {
	return Decision{Effect: DenyForbidden, Reason: reason}
}

// AuthorizationError is raised by Check on a genuine denial in strict mode.
type AuthorizationError struct {
	// Decision is the denial that produced the error.
	Decision Decision
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorization denied: %s", e.Decision.Reason)
}
