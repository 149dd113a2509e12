package directory

import (
	"errors"

	"gorm.io/gorm"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
)

// CreatePermission creates a new permission. Codenames are unique.
func CreatePermission(db *gorm.DB, codename, name, resource string) (*models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if codename == "" {
		return nil, ErrCodenameEmpty
	}

	var existing models.Permission
	result := db.Where(codenameQueryPattern, codename).First(&existing)
	if result.Error == nil {
		return nil, ErrPermissionExists
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	perm := &models.Permission{
		Codename: codename,
		Name:     name,
		Resource: resource,
	}

	if err := db.Create(perm).Error; err != nil {
		return nil, err
	}

	return perm, nil
}

// GetPermission retrieves a permission by its unique codename.
func GetPermission(db *gorm.DB, codename string) (*models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if codename == "" {
		return nil, ErrCodenameEmpty
	}

	var perm models.Permission
	result := db.Where(codenameQueryPattern, codename).First(&perm)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionNotFound
		}
		return nil, result.Error
	}

	return &perm, nil
}

// ListPermissions retrieves all permissions ordered by resource and codename.
func ListPermissions(db *gorm.DB) ([]models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var perms []models.Permission
	result := db.Order("resource, codename").Find(&perms)
	if result.Error != nil {
		return nil, result.Error
	}

	return perms, nil
}
