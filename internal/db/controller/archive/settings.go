// Package archive provides the typed archive settings stored as application settings.
package archive

import (
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/plex-projectplanner/projectplanner/internal/db/controller/appsetting"
)

const (
	// SettingKeyRetentionDays is the application setting key of the retention period.
	SettingKeyRetentionDays = "ArchiveRetentionDays"
	// DefaultRetentionDays is used while no setting is stored.
	DefaultRetentionDays = 30
)

// ErrInvalidRetentionDays is returned for non-positive or non-numeric retention values.
var ErrInvalidRetentionDays = errors.New("archive retention days must be a positive number")

type (
	// Settings holds the archive configuration of one tenant.
	Settings struct {
		RetentionDays int `json:"retentionDays"`
	}
)

// Load reads the settings of the scope, missing values fall back to the defaults.
func (s *Settings) Load(db *gorm.DB, scope appsetting.Scope) error {
	s.RetentionDays = DefaultRetentionDays

	stored, err := appsetting.GetByKey(db, scope, SettingKeyRetentionDays)
	if errors.Is(err, appsetting.ErrNotFound) {
		return nil
	}

	if err != nil {
		return err
	}

	days, err := strconv.Atoi(stored.Value)
	if err != nil || days <= 0 {
		return ErrInvalidRetentionDays
	}

	s.RetentionDays = days

	return nil
}

// Save creates or updates the settings of the scope.
func (s *Settings) Save(db *gorm.DB, scope appsetting.Scope) error {
	if s.RetentionDays <= 0 {
		return ErrInvalidRetentionDays
	}

	in := appsetting.Input{
		Key:         SettingKeyRetentionDays,
		Value:       strconv.Itoa(s.RetentionDays),
		Description: description(),
	}

	stored, err := appsetting.GetByKey(db, scope, SettingKeyRetentionDays)
	if errors.Is(err, appsetting.ErrNotFound) {
		_, err = appsetting.Create(db, scope, in)
		return err
	}

	if err != nil {
		return err
	}

	_, err = appsetting.Update(db, scope, stored.ID, in)

	return err
}

func description() *string {
	d := "Number of days archived projects are kept"
	return &d
}
