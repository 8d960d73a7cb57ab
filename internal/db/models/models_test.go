package models_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/plex-projectplanner/projectplanner/internal/db/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	require.NoError(t, db.AutoMigrate(&models.ApplicationSetting{}, &models.Role{}, &models.User{}))

	return db
}

func TestApplicationSettingHooks(t *testing.T) {
	db := setupTestDB(t)
	tenant := uuid.NullUUID{UUID: uuid.New(), Valid: true}

	host := models.ApplicationSetting{Key: "k", Value: "v"}
	require.NoError(t, db.Create(&host).Error)
	assert.NotEqual(t, uuid.Nil, host.ID)
	assert.Empty(t, host.TenantScope)

	scoped := models.ApplicationSetting{Key: "k", Value: "v", TenantID: tenant}
	require.NoError(t, db.Create(&scoped).Error)
	assert.Equal(t, tenant.UUID.String(), scoped.TenantScope)

	// same key in the same scope violates the unique index
	dup := models.ApplicationSetting{Key: "k", Value: "other"}
	assert.Error(t, db.Create(&dup).Error)

	dupTenant := models.ApplicationSetting{Key: "k", Value: "other", TenantID: tenant}
	assert.Error(t, db.Create(&dupTenant).Error)
}

func TestTenantScopeOf(t *testing.T) {
	id := uuid.New()

	assert.Empty(t, models.TenantScopeOf(uuid.NullUUID{}))
	assert.Equal(t, id.String(), models.TenantScopeOf(uuid.NullUUID{UUID: id, Valid: true}))
}

func TestPassword(t *testing.T) {
	hash, err := models.HashPassword("1q2w3E*")
	require.NoError(t, err)

	u := models.User{Password: hash}
	assert.True(t, u.VerifyPassword("1q2w3E*"))
	assert.False(t, u.VerifyPassword("wrong"))

	broken := models.User{Password: "not-a-hash"}
	assert.False(t, broken.VerifyPassword("1q2w3E*"))
}

func TestUserBeforeCreate(t *testing.T) {
	db := setupTestDB(t)

	role := models.Role{Name: "admin"}
	require.NoError(t, db.Create(&role).Error)

	u := models.User{Username: "admin", Email: "admin@abp.io", RoleID: role.ID}
	require.NoError(t, db.Create(&u).Error)
	assert.NotEqual(t, uuid.Nil, u.ID)
}
