package directory

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/db/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func createPerms(t *testing.T, db *gorm.DB, codenames ...string) {
	t.Helper()

	for _, cn := range codenames {
		_, err := CreatePermission(db, cn, "perm "+cn, "test")
		require.NoError(t, err)
	}
}

func TestCreateRole(t *testing.T) {
	db := setupTestDB(t)
	createPerms(t, db, "view_thing", "edit_thing")

	role, err := CreateRole(db, "Editor", "can edit things", []string{"view_thing", "edit_thing"}, false)
	require.NoError(t, err)
	assert.NotZero(t, role.ID)
	assert.Equal(t, "Editor", role.Name)
	assert.False(t, role.IsSystemRole)
	assert.Len(t, role.Permissions, 2)

	_, err = CreateRole(db, "Editor", "again", nil, false)
	assert.ErrorIs(t, err, ErrRoleExists)

	_, err = CreateRole(db, "", "", nil, false)
	assert.ErrorIs(t, err, ErrRoleNameEmpty)
}

func TestCreateRole_UnknownPermissionsIgnored(t *testing.T) {
	db := setupTestDB(t)
	createPerms(t, db, "view_thing")

	role, err := CreateRole(db, "Viewer", "", []string{"view_thing", "no_such_perm"}, false)
	require.NoError(t, err)
	assert.Len(t, role.Permissions, 1)
	assert.Equal(t, "view_thing", role.Permissions[0].Codename)
}

func TestGetRole(t *testing.T) {
	db := setupTestDB(t)
	createPerms(t, db, "view_thing")

	created, err := CreateRole(db, "Viewer", "", []string{"view_thing"}, false)
	require.NoError(t, err)

	byID, err := GetRole(db, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Viewer", byID.Name)
	assert.Len(t, byID.Permissions, 1)

	byName, err := GetRoleByName(db, "Viewer")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	_, err = GetRole(db, 9999)
	assert.ErrorIs(t, err, ErrRoleNotFound)

	_, err = GetRoleByName(db, "Nobody")
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestListRoles_OrderedByName(t *testing.T) {
	db := setupTestDB(t)

	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		_, err := CreateRole(db, name, "", nil, false)
		require.NoError(t, err)
	}

	roles, err := ListRoles(db)
	require.NoError(t, err)
	require.Len(t, roles, 3)
	assert.Equal(t, "Alpha", roles[0].Name)
	assert.Equal(t, "Mid", roles[1].Name)
	assert.Equal(t, "Zeta", roles[2].Name)
}

func TestDeleteRole(t *testing.T) {
	db := setupTestDB(t)

	plain, err := CreateRole(db, "Temporary", "", nil, false)
	require.NoError(t, err)

	system, err := CreateRole(db, "Administrador", "", nil, true)
	require.NoError(t, err)

	assert.ErrorIs(t, DeleteRole(db, system.ID), ErrSystemRole)

	require.NoError(t, DeleteRole(db, plain.ID))
	_, err = GetRole(db, plain.ID)
	assert.ErrorIs(t, err, ErrRoleNotFound)

	assert.ErrorIs(t, DeleteRole(db, 9999), ErrRoleNotFound)
}

func TestRolePermissionMembership(t *testing.T) {
	db := setupTestDB(t)
	createPerms(t, db, "view_thing", "edit_thing")

	role, err := CreateRole(db, "Viewer", "", []string{"view_thing"}, false)
	require.NoError(t, err)

	has, err := RoleHasPermission(db, role.ID, "edit_thing")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, AddPermissionToRole(db, role.ID, "edit_thing"))

	has, err = RoleHasPermission(db, role.ID, "edit_thing")
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, RemovePermissionFromRole(db, role.ID, "edit_thing"))

	has, err = RoleHasPermission(db, role.ID, "edit_thing")
	require.NoError(t, err)
	assert.False(t, has)

	assert.ErrorIs(t, AddPermissionToRole(db, role.ID, "no_such_perm"), ErrPermissionNotFound)
	assert.ErrorIs(t, AddPermissionToRole(db, 9999, "view_thing"), ErrRoleNotFound)
}

func TestCreatePermission(t *testing.T) {
	db := setupTestDB(t)

	perm, err := CreatePermission(db, "view_thing", "Ver", "thing")
	require.NoError(t, err)
	assert.NotZero(t, perm.ID)

	_, err = CreatePermission(db, "view_thing", "Ver", "thing")
	assert.ErrorIs(t, err, ErrPermissionExists)

	_, err = CreatePermission(db, "", "Ver", "thing")
	assert.ErrorIs(t, err, ErrCodenameEmpty)

	_, err = GetPermission(db, "missing")
	assert.ErrorIs(t, err, ErrPermissionNotFound)
}

func TestListPermissions_OrderedByResource(t *testing.T) {
	db := setupTestDB(t)

	_, err := CreatePermission(db, "view_payment", "", "payment")
	require.NoError(t, err)
	_, err = CreatePermission(db, "view_contract", "", "contract")
	require.NoError(t, err)
	_, err = CreatePermission(db, "add_contract", "", "contract")
	require.NoError(t, err)

	perms, err := ListPermissions(db)
	require.NoError(t, err)
	require.Len(t, perms, 3)
	assert.Equal(t, "add_contract", perms[0].Codename)
	assert.Equal(t, "view_contract", perms[1].Codename)
	assert.Equal(t, "view_payment", perms[2].Codename)
}

func TestEnsureDefaults_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, EnsureDefaults(db))
	require.NoError(t, EnsureDefaults(db))

	perms, err := ListPermissions(db)
	require.NoError(t, err)
	assert.Len(t, perms, len(defaultPermissions))

	roles, err := ListRoles(db)
	require.NoError(t, err)
	require.Len(t, roles, len(defaultRoles))

	for _, role := range roles {
		assert.True(t, role.IsSystemRole, "seeded role %s should be a system role", role.Name)
	}

	admin, err := GetRoleByName(db, models.RoleAdministrator)
	require.NoError(t, err)
	assert.Len(t, admin.Permissions, len(defaultPermissions))

	basic, err := GetRoleByName(db, models.RoleBasicAgent)
	require.NoError(t, err)
	assert.Len(t, basic.Permissions, 3)
}

func TestNilDB(t *testing.T) {
	_, err := CreateRole(nil, "x", "", nil, false)
	assert.ErrorIs(t, err, ErrDBNil)

	_, err = GetPermission(nil, "x")
	assert.ErrorIs(t, err, ErrDBNil)

	assert.ErrorIs(t, EnsureDefaults(nil), ErrDBNil)
}
