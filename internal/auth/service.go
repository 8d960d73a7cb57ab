package auth

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/plex-projectplanner/projectplanner/internal/config"
	"github.com/plex-projectplanner/projectplanner/internal/db/models"
)

// Service provides authorization checks against the role permissions of users.
type Service struct {
	db  *gorm.DB
	cfg config.Auth
}

// NewService creates a new auth service.
func NewService(db *gorm.DB, cfg config.Auth) *Service {
	return &Service{db: db, cfg: cfg}
}

// AllowAnonymous reports whether permission checks are switched off.
func (s *Service) AllowAnonymous() bool {
	return s.cfg.AllowAnonymous
}

// HasPermission checks if the role of an active user grants permission.
func (s *Service) HasPermission(userID uuid.UUID, permission string) (bool, error) {
	var count int64

	err := s.db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN users ON users.role_id = role_permissions.role_id").
		Where("users.id = ? AND users.active = ? AND permissions.name = ?", userID, true, permission).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check role permission: %w", err)
	}

	return count > 0, nil
}

// HasAnyPermission checks if a user has at least one of the given permissions.
func (s *Service) HasAnyPermission(userID uuid.UUID, permissions []string) (bool, error) {
	for _, perm := range permissions {
		has, err := s.HasPermission(userID, perm)
		if err != nil {
			return false, err
		}

		if has {
			return true, nil
		}
	}

	return false, nil
}

// GetUserPermissions returns the sorted permission names granted to a user.
func (s *Service) GetUserPermissions(userID uuid.UUID) ([]string, error) {
	permissions := []string{}

	err := s.db.Table("permissions").
		Distinct("permissions.name").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN users ON users.role_id = role_permissions.role_id").
		Where("users.id = ? AND users.active = ?", userID, true).
		Pluck("permissions.name", &permissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user permissions: %w", err)
	}

	sort.Strings(permissions)

	return permissions, nil
}

// SyncDefinitions inserts the permissions of the definition tree that are missing in the database.
func (s *Service) SyncDefinitions() error {
	for _, p := range Flatten(Definitions()) {
		perm := models.Permission{Name: p.Name, Group: p.Group, Parent: p.Parent, DisplayName: p.DisplayName}

		err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"group_name", "parent", "display_name"}),
		}).Create(&perm).Error
		if err != nil {
			return fmt.Errorf("failed to sync permission %s: %w", p.Name, err)
		}
	}

	return nil
}

// GrantPermissions assigns the named permissions to a role. Existing grants are kept.
func (s *Service) GrantPermissions(roleID uint, names ...string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			if !IsDefined(name) {
				return fmt.Errorf("%w: %s", ErrUnknownPermission, name)
			}

			var perm models.Permission
			if err := tx.Where("name = ?", name).First(&perm).Error; err != nil {
				return fmt.Errorf("failed to load permission %s: %w", name, err)
			}

			err := tx.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).
				Create(&models.RolePermission{RoleID: roleID, PermissionID: perm.ID}).Error
			if err != nil {
				return fmt.Errorf("failed to grant permission %s: %w", name, err)
			}
		}

		return nil
	})
}

// AssignRoleToUser assigns a role to a user.
func (s *Service) AssignRoleToUser(userID uuid.UUID, roleID uint) error {
	return s.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("role_id", roleID).Error
}
