package archive

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/plex-projectplanner/projectplanner/internal/db/controller/appsetting"
	"github.com/plex-projectplanner/projectplanner/internal/db/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.ApplicationSetting{}))

	return db
}

func TestLoadDefault(t *testing.T) {
	db := setupTestDB(t)

	var s Settings
	require.NoError(t, s.Load(db, appsetting.Scope{}))
	assert.Equal(t, DefaultRetentionDays, s.RetentionDays)
}

func TestSaveAndLoad(t *testing.T) {
	db := setupTestDB(t)
	scope := appsetting.Scope{TenantID: uuid.NullUUID{UUID: uuid.New(), Valid: true}}

	s := Settings{RetentionDays: 30}
	require.NoError(t, s.Save(db, scope))

	stored, err := appsetting.GetByKey(db, scope, SettingKeyRetentionDays)
	require.NoError(t, err)
	assert.Equal(t, "30", stored.Value)

	// a second save updates the same record
	s.RetentionDays = 45
	require.NoError(t, s.Save(db, scope))

	updated, err := appsetting.GetByKey(db, scope, SettingKeyRetentionDays)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, updated.ID)
	assert.Equal(t, "45", updated.Value)

	var loaded Settings
	require.NoError(t, loaded.Load(db, scope))
	assert.Equal(t, 45, loaded.RetentionDays)

	// the host still sees the default
	var host Settings
	require.NoError(t, host.Load(db, appsetting.Scope{}))
	assert.Equal(t, DefaultRetentionDays, host.RetentionDays)
}

func TestInvalidRetentionDays(t *testing.T) {
	db := setupTestDB(t)

	for _, days := range []int{0, -1} {
		s := Settings{RetentionDays: days}
		require.ErrorIs(t, s.Save(db, appsetting.Scope{}), ErrInvalidRetentionDays)
	}

	_, err := appsetting.Create(db, appsetting.Scope{}, appsetting.Input{Key: SettingKeyRetentionDays, Value: "thirty"})
	require.NoError(t, err)

	var s Settings
	require.ErrorIs(t, s.Load(db, appsetting.Scope{}), ErrInvalidRetentionDays)
}
