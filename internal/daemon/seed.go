package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/authz"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/config"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/directory"
)

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Agent{},
		&models.SecuritySettings{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.AgentRole{},
		&models.Session{},
		&models.AuditLog{},
	)
}

// seed installs the system roles and permissions and, on an empty agent
// table, an initial superuser with a password that must be changed.
func seed(_ *config.Config, db *gorm.DB) error {
	if err := directory.EnsureDefaults(db); err != nil {
		return err
	}

	var count int64
	if err := db.Model(&models.Agent{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	admin := models.Agent{
		Active:        true,
		FirstName:     "Admin",
		LastName:      "Inicial",
		Email:         "admin@example.com",
		LicenseNumber: "ADMIN-0001",
		Password:      models.HashPassword("changeme"),
		Staff:         true,
		Superuser:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	var role models.Role
	if err := db.Where("name = ?", models.RoleAdministrator).First(&role).Error; err != nil {
		return err
	}

	if _, err := authz.NewEvaluator(db, nil, 0).AssignRole(admin.ID, role.ID, nil); err != nil {
		return err
	}

	log.Warn().Str("email", admin.Email).Msg("seeded initial superuser with default password, change it")

	return nil
}
