// Package models contains database model definitions.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// KeyMaxLength is the maximum length of ApplicationSetting.Key.
	KeyMaxLength = 256
	// ValueMaxLength is the maximum length of ApplicationSetting.Value.
	ValueMaxLength = 2048
	// DescriptionMaxLength is the maximum length of ApplicationSetting.Description.
	DescriptionMaxLength = 512
)

// Audited holds creation and modification metadata.
// The fields are written by the persistence layer, never taken from user input.
type Audited struct {
	CreationTime         time.Time     `gorm:"not null"          json:"creationTime"`
	CreatorID            uuid.NullUUID `gorm:"type:varchar(36)"  json:"creatorId"`
	LastModificationTime *time.Time    `json:"lastModificationTime"`
	LastModifierID       uuid.NullUUID `gorm:"type:varchar(36)"  json:"lastModifierId"`
}

// ApplicationSetting is a tenant scoped key/value configuration record.
// A null TenantID marks a host (shared) record.
type ApplicationSetting struct {
	ID          uuid.UUID     `gorm:"type:varchar(36);primaryKey"                                     json:"id"`
	Key         string        `gorm:"column:setting_key;size:256;not null;uniqueIndex:ix_app_application_settings_key_tenant,priority:1" json:"key"`
	Value       string        `gorm:"size:2048;not null"                                              json:"value"`
	Description *string       `gorm:"size:512"                                                        json:"description"`
	TenantID    uuid.NullUUID `gorm:"type:varchar(36);index"                                          json:"tenantId"`
	// TenantScope mirrors TenantID as non-null text so the unique index also covers host records.
	TenantScope string `gorm:"size:36;not null;default:'';uniqueIndex:ix_app_application_settings_key_tenant,priority:2" json:"-"`

	Audited
}

// TableName specifies the database table name for the ApplicationSetting model.
func (ApplicationSetting) TableName() string {
	return "app_application_settings"
}

// TenantScopeOf returns the tenant_scope column value for a tenant id.
func TenantScopeOf(tenantID uuid.NullUUID) string {
	if !tenantID.Valid {
		return ""
	}

	return tenantID.UUID.String()
}

// BeforeSave keeps TenantScope in sync with TenantID and assigns a missing id.
func (s *ApplicationSetting) BeforeSave(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	s.TenantScope = TenantScopeOf(s.TenantID)

	return nil
}
