package directory

import (
	"errors"

	"gorm.io/gorm"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
)

// defaultPermissions are the capabilities the back office ships with.
var defaultPermissions = []models.Permission{
	{Codename: "view_property", Name: "Ver propiedades", Resource: "property"},
	{Codename: "add_property", Name: "Crear propiedades", Resource: "property"},
	{Codename: "change_property", Name: "Modificar propiedades", Resource: "property"},
	{Codename: "change_own_property", Name: "Modificar propiedades propias", Resource: "property"},
	{Codename: "delete_property", Name: "Eliminar propiedades", Resource: "property"},
	{Codename: "view_contract", Name: "Ver contratos", Resource: "contract"},
	{Codename: "add_contract", Name: "Crear contratos", Resource: "contract"},
	{Codename: "change_contract", Name: "Modificar contratos", Resource: "contract"},
	{Codename: "view_payment", Name: "Ver pagos", Resource: "payment"},
	{Codename: "add_payment", Name: "Registrar pagos", Resource: "payment"},
	{Codename: "view_report", Name: "Ver reportes", Resource: "report"},
	{Codename: "manage_agents", Name: "Gestionar agentes", Resource: "agent"},
	{Codename: "manage_roles", Name: "Gestionar roles", Resource: "role"},
	{Codename: "view_audit_log", Name: "Ver registro de auditoría", Resource: "audit"},
}

// defaultRoles are the system roles seeded at install time.
// The Administrador role receives every permission.
var defaultRoles = []struct {
	name        string
	description string
	permissions []string // nil means all
}{
	{
		name:        models.RoleBasicAgent,
		description: "Rol básico para agentes inmobiliarios",
		permissions: []string{"view_property", "add_property", "change_own_property"},
	},
	{
		name:        models.RoleSupervisor,
		description: "Supervisor de agentes con permisos adicionales",
		permissions: []string{
			"view_property", "add_property", "change_property",
			"view_contract", "view_payment", "view_report",
		},
	},
	{
		name:        models.RoleAdministrator,
		description: "Administrador del sistema con todos los permisos",
		permissions: nil,
	},
}

// EnsureDefaults creates the default permissions and system roles if they do
// not exist yet. It is idempotent and safe to run at every startup.
func EnsureDefaults(db *gorm.DB) error {
	if db == nil {
		return ErrDBNil
	}

	for _, p := range defaultPermissions {
		if _, err := CreatePermission(db, p.Codename, p.Name, p.Resource); err != nil {
			if errors.Is(err, ErrPermissionExists) {
				continue
			}
			return err
		}
	}

	allCodenames := make([]string, 0, len(defaultPermissions))
	for _, p := range defaultPermissions {
		allCodenames = append(allCodenames, p.Codename)
	}

	for _, r := range defaultRoles {
		codenames := r.permissions
		if codenames == nil {
			codenames = allCodenames
		}

		if _, err := CreateRole(db, r.name, r.description, codenames, true); err != nil {
			if errors.Is(err, ErrRoleExists) {
				continue
			}
			return err
		}
	}

	return nil
}
