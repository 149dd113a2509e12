package guard

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/authz"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
)

// Match selects how a guard combines multiple required codenames or role names.
type Match int

const (
	// MatchAll requires every listed codename or role.
	MatchAll Match = iota
	// MatchAny requires at least one.
	MatchAny
)

// authenticated narrows a principal to the Authenticated kind, denying
// anonymous callers and unknown principal kinds.
func authenticated(p Principal) (Authenticated, Decision, bool) {
	switch caller := p.(type) {
	case Authenticated:
		return caller, Decision{}, true
	case Anonymous, nil:
		return Authenticated{}, denyUnauthenticated(), false
	default:
		log.Warn().Type("principal", p).Msg("unknown principal kind, denying")
		return Authenticated{}, denyForbidden("unknown principal kind"), false
	}
}

// PermissionGuard requires the caller to hold the listed permission
// codenames. Superusers pass without an evaluator call.
func PermissionGuard(ev Evaluator, mode Match, codenames ...string) Guard {
	return GuardFunc(func(_ context.Context, p Principal) Decision {
		caller, denied, ok := authenticated(p)
		if !ok {
			return denied
		}

		if caller.Superuser {
			return allow()
		}

		held := 0
		for _, cn := range codenames {
			if ev.CheckPermission(caller.AgentID, cn) {
				held++
			}
		}

		if mode == MatchAny && held > 0 {
			return allow()
		}
		if mode == MatchAll && held == len(codenames) && len(codenames) > 0 {
			return allow()
		}

		return denyForbidden(fmt.Sprintf("missing permission: %s", strings.Join(codenames, ", ")))
	})
}

// RoleGuard requires the caller to hold the listed roles.
func RoleGuard(ev Evaluator, mode Match, roleNames ...string) Guard {
	return GuardFunc(func(_ context.Context, p Principal) Decision {
		caller, denied, ok := authenticated(p)
		if !ok {
			return denied
		}

		evMode := authz.RoleMatchAny
		if mode == MatchAll {
			evMode = authz.RoleMatchAll
		}

		if ev.CheckRole(caller.AgentID, roleNames, evMode) {
			return allow()
		}

		return denyForbidden(fmt.Sprintf("missing role: %s", strings.Join(roleNames, ", ")))
	})
}

// SuperuserGuard requires the superuser flag. No evaluator call.
func SuperuserGuard() Guard {
	return GuardFunc(func(_ context.Context, p Principal) Decision {
		caller, denied, ok := authenticated(p)
		if !ok {
			return denied
		}

		if caller.Superuser {
			return allow()
		}

		return denyForbidden("superuser required")
	})
}

// StaffGuard requires the staff flag. No evaluator call.
func StaffGuard() Guard {
	return GuardFunc(func(_ context.Context, p Principal) Decision {
		caller, denied, ok := authenticated(p)
		if !ok {
			return denied
		}

		if caller.Staff || caller.Superuser {
			return allow()
		}

		return denyForbidden("staff access required")
	})
}

// AnyOf grants when at least one guard grants.
func AnyOf(guards ...Guard) Guard {
	return GuardFunc(func(ctx context.Context, p Principal) Decision {
		sawForbidden := false
		for _, g := range guards {
			decision := g.Authorize(ctx, p)
			if decision.Allowed() {
				return decision
			}
			if decision.Effect == DenyForbidden {
				sawForbidden = true
			}
		}

		if !sawForbidden {
			return denyUnauthenticated()
		}

		return denyForbidden("no rule granted access")
	})
}

// AllOf grants only when every guard grants; the first denial wins.
func AllOf(guards ...Guard) Guard {
	return GuardFunc(func(ctx context.Context, p Principal) Decision {
		for _, g := range guards {
			if decision := g.Authorize(ctx, p); !decision.Allowed() {
				return decision
			}
		}

		return allow()
	})
}

// AdminGuard grants superusers and holders of the administrator role.
func AdminGuard(ev Evaluator) Guard {
	return AnyOf(
		SuperuserGuard(),
		RoleGuard(ev, MatchAny, models.RoleAdministrator),
	)
}

// SupervisorOrAdminGuard grants superusers, supervisors and administrators.
func SupervisorOrAdminGuard(ev Evaluator) Guard {
	return AnyOf(
		SuperuserGuard(),
		RoleGuard(ev, MatchAny, models.RoleSupervisor, models.RoleAdministrator),
	)
}
