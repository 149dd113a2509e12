package guard

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/authz"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
)

// OwnerResolver resolves the owning agent of the resource targeted by the
// current operation, typically from request context.
type OwnerResolver func(ctx context.Context) (uint64, error)

// OwnerGuard grants the owner of the targeted resource. With
// allowAdminOverride, superusers and administrator-role holders bypass the
// ownership comparison. An unresolvable owner is a denial, not a failure.
func OwnerGuard(ev Evaluator, resolve OwnerResolver, allowAdminOverride bool) Guard {
	return GuardFunc(func(ctx context.Context, p Principal) Decision {
		caller, denied, ok := authenticated(p)
		if !ok {
			return denied
		}

		if allowAdminOverride {
			if caller.Superuser || ev.CheckRole(caller.AgentID, []string{models.RoleAdministrator}, authz.RoleMatchAny) {
				return allow()
			}
		}

		ownerID, err := resolve(ctx)
		if err != nil {
			log.Warn().Err(err).Uint64("agent_id", caller.AgentID).Msg("owner resolution failed, denying")
			return denyForbidden("resource owner could not be resolved")
		}

		if ownerID == caller.AgentID {
			return allow()
		}

		return denyForbidden("caller does not own this resource")
	})
}
