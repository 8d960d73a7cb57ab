package daemon

import (
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plex-projectplanner/projectplanner/internal/auth"
	"github.com/plex-projectplanner/projectplanner/internal/config"
	"github.com/plex-projectplanner/projectplanner/internal/db/controller/appsetting"
	"github.com/plex-projectplanner/projectplanner/internal/db/controller/archive"
	"github.com/plex-projectplanner/projectplanner/internal/db/models"
	"github.com/plex-projectplanner/projectplanner/internal/password"
)

const adminRoleName = "admin"

// seed creates permissions, the admin role and user, and on request the default host settings.
// Every step is skipped when its data exists already.
func seed(cfg *config.Config, db *gorm.DB) error {
	authService := auth.NewService(db, cfg.Auth)

	if err := authService.SyncDefinitions(); err != nil {
		return err
	}

	role := models.Role{Name: adminRoleName, Description: "Administrator", IsStatic: true}
	if err := db.Where("name = ?", adminRoleName).FirstOrCreate(&role).Error; err != nil {
		return err
	}

	var all []string
	for _, p := range auth.Flatten(auth.Definitions()) {
		all = append(all, p.Name)
	}

	if err := authService.GrantPermissions(role.ID, all...); err != nil {
		return err
	}

	if err := seedAdmin(cfg, db, role.ID); err != nil {
		return err
	}

	if !cfg.Seed.ArchiveSettings {
		return nil
	}

	return seedSettings(db)
}

func seedAdmin(cfg *config.Config, db *gorm.DB, roleID uint) error {
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", cfg.Auth.AdminUsername).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	pw := cfg.Auth.AdminPassword
	generated := pw == ""

	if generated {
		var err error
		if pw, err = password.Generate(password.DefaultLen); err != nil {
			return err
		}
	}

	user, err := auth.NewLocalProvider(db).CreateUser(cfg.Auth.AdminUsername, cfg.Auth.AdminUsername+"@localhost", pw, roleID)
	if err != nil {
		return err
	}

	event := log.Warn().Stringer("user_id", user.ID).Str("user", user.Username)
	if generated {
		// shown once, only the hash is stored
		event = event.Str("password", pw)
	}

	event.Msg("admin user created")

	return nil
}

func seedSettings(db *gorm.DB) error {
	_, err := appsetting.GetByKey(db, appsetting.Scope{}, archive.SettingKeyRetentionDays)
	if !errors.Is(err, appsetting.ErrNotFound) {
		return err
	}

	s := archive.Settings{RetentionDays: archive.DefaultRetentionDays}

	return s.Save(db, appsetting.Scope{})
}
