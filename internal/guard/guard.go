package guard

import (
	"context"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/authz"
)

// Evaluator is the subset of the permission evaluator guards rely on.
// Evaluator implementations are already fail-closed: they answer false on any
// internal error.
type Evaluator interface {
	CheckPermission(agentID uint64, codename string) bool
	CheckRole(agentID uint64, roleNames []string, mode authz.RoleMatchMode) bool
}

// Guard answers authorization decisions for one predicate. Guards compose by
// boolean combination (AnyOf, AllOf) rather than by chaining implementations.
type Guard interface {
	Authorize(ctx context.Context, p Principal) Decision
}

// GuardFunc adapts a function to the Guard interface.
type GuardFunc func(ctx context.Context, p Principal) Decision

// Authorize implements Guard.
func (f GuardFunc) Authorize(ctx context.Context, p Principal) Decision {
	return f(ctx, p)
}

// Check evaluates g in strict mode: a denial is returned as an
// *AuthorizationError, a grant as nil.
func Check(ctx context.Context, g Guard, p Principal) error {
	decision := g.Authorize(ctx, p)
	if decision.Allowed() {
		return nil
	}

	return &AuthorizationError{Decision: decision}
}
