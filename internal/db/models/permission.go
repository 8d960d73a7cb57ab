package models

import "time"

// Permission represents a named permission of the permission tree.
// Names are dotted, e.g. "ProjectPlanner.ApplicationSettings.Create".
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey"`
	// Name is the unique permission name.
	Name string `gorm:"unique;size:128;not null"`
	// Group is the permission group the permission is listed under.
	Group string `gorm:"column:group_name;size:128;not null"`
	// Parent is the name of the parent permission, empty for top level permissions.
	Parent string `gorm:"size:128"`
	// DisplayName is shown in permission management views.
	DisplayName string `gorm:"size:255"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Permission model.
func (Permission) TableName() string {
	return "permissions"
}
