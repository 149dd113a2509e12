// Package directory provides persistence operations for the role and
// permission entities of the authorization subsystem.
package directory

import (
	"errors"

	"gorm.io/gorm"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
)

const (
	nameQueryPattern     = "name = ?"
	codenameQueryPattern = "codename = ?"
)

// CreateRole creates a new role, optionally granting it an initial set of
// permissions by codename. Role names are unique.
func CreateRole(db *gorm.DB, name, description string, permissionCodenames []string, isSystemRole bool) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	var existing models.Role
	result := db.Where(nameQueryPattern, name).First(&existing)
	if result.Error == nil {
		return nil, ErrRoleExists
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	role := &models.Role{
		Name:         name,
		Description:  description,
		IsSystemRole: isSystemRole,
	}

	if len(permissionCodenames) > 0 {
		var perms []models.Permission
		if err := db.Where("codename IN ?", permissionCodenames).Find(&perms).Error; err != nil {
			return nil, err
		}
		role.Permissions = perms
	}

	if err := db.Create(role).Error; err != nil {
		return nil, err
	}

	return role, nil
}

// GetRole retrieves a role by its ID, with its permissions preloaded.
func GetRole(db *gorm.DB, id uint) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var role models.Role
	result := db.Preload("Permissions").First(&role, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, result.Error
	}

	return &role, nil
}

// GetRoleByName retrieves a role by its unique name, with its permissions preloaded.
func GetRoleByName(db *gorm.DB, name string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	var role models.Role
	result := db.Preload("Permissions").Where(nameQueryPattern, name).First(&role)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, result.Error
	}

	return &role, nil
}

// ListRoles retrieves all roles ordered by name.
func ListRoles(db *gorm.DB) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var roles []models.Role
	result := db.Preload("Permissions").Order("name").Find(&roles)
	if result.Error != nil {
		return nil, result.Error
	}

	return roles, nil
}

// DeleteRole deletes a non-system role. System roles are protected.
func DeleteRole(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	role, err := GetRole(db, id)
	if err != nil {
		return err
	}

	if role.IsSystemRole {
		return ErrSystemRole
	}

	return db.Select("Permissions").Delete(role).Error
}

// AddPermissionToRole grants a permission to a role by codename.
func AddPermissionToRole(db *gorm.DB, roleID uint, codename string) error {
	if db == nil {
		return ErrDBNil
	}

	role, err := GetRole(db, roleID)
	if err != nil {
		return err
	}

	perm, err := GetPermission(db, codename)
	if err != nil {
		return err
	}

	return db.Model(role).Association("Permissions").Append(perm)
}

// RemovePermissionFromRole removes a permission from a role by codename.
func RemovePermissionFromRole(db *gorm.DB, roleID uint, codename string) error {
	if db == nil {
		return ErrDBNil
	}

	role, err := GetRole(db, roleID)
	if err != nil {
		return err
	}

	perm, err := GetPermission(db, codename)
	if err != nil {
		return err
	}

	return db.Model(role).Association("Permissions").Delete(perm)
}

// RoleHasPermission reports whether a role grants a permission codename.
func RoleHasPermission(db *gorm.DB, roleID uint, codename string) (bool, error) {
	if db == nil {
		return false, ErrDBNil
	}

	var count int64
	err := db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ? AND permissions.codename = ?", roleID, codename).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
