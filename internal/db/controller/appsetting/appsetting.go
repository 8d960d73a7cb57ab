// Package appsetting provides tenant scoped CRUD operations for application settings.
package appsetting

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/plex-projectplanner/projectplanner/internal/db/models"
)

const (
	scopeQuery    = "tenant_scope = ?"
	keyScopeQuery = "setting_key = ? AND tenant_scope = ?"

	// DefaultMaxResultCount is used by callers that do not ask for a page size.
	DefaultMaxResultCount = 10
	// MaxMaxResultCount caps the page size of GetList.
	MaxMaxResultCount = 1000
)

var (
	// ErrNotFound is returned when no setting with the id exists in the caller's tenant.
	ErrNotFound = errors.New("application setting not found")
	// ErrAlreadyExists is returned when the key is already used in the caller's tenant.
	ErrAlreadyExists = errors.New("application setting already exists")
	// ErrValidation is returned for invalid input, it wraps the field errors.
	ErrValidation = errors.New("application setting validation failed")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

var (
	validate     *validator.Validate //nolint:gochecknoglobals
	validateOnce sync.Once           //nolint:gochecknoglobals
)

// Scope is the caller context of an operation.
// A null TenantID addresses host records, a null UserID leaves the audit ids empty.
type Scope struct {
	TenantID uuid.NullUUID
	UserID   uuid.NullUUID
}

// Input carries the writable fields of a setting for Create and Update.
type Input struct {
	Key         string  `json:"key"         validate:"required,max=256"`
	Value       string  `json:"value"       validate:"required,max=2048"`
	Description *string `json:"description" validate:"omitempty,max=512"`
}

// ListInput is the paging and sorting request of GetList.
type ListInput struct {
	SkipCount      int
	MaxResultCount int
	// Sorting is a comma separated list of "field [asc|desc]".
	Sorting string
}

// ListResult is one page of settings plus the total count of the tenant.
type ListResult struct {
	Items      []models.ApplicationSetting `json:"items"`
	TotalCount int64                       `json:"totalCount"`
}

// FieldError describes one invalid input member.
type FieldError struct {
	Member  string
	Message string
}

// ValidationError lists the invalid members of an Input or ListInput.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}

	return ErrValidation.Error() + ": " + strings.Join(msgs, "; ")
}

// Unwrap makes errors.Is(err, ErrValidation) work.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// KeyExistsError names the key that is already used in the tenant.
type KeyExistsError struct {
	Key string
}

func (e *KeyExistsError) Error() string {
	return fmt.Sprintf("Application setting with key '%s' already exists.", e.Key)
}

// Unwrap makes errors.Is(err, ErrAlreadyExists) work.
func (e *KeyExistsError) Unwrap() error {
	return ErrAlreadyExists
}

func validationError(member, format string, args ...any) error {
	return &ValidationError{Fields: []FieldError{{Member: member, Message: fmt.Sprintf(format, args...)}}}
}

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// report members by their json name
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}

			return name
		})
	})

	return validate
}

// Validate checks the field rules of in.
func (in Input) Validate() error {
	err := getValidator().Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	ve := &ValidationError{}
	for _, fe := range fieldErrs {
		var msg string

		switch fe.Tag() {
		case "required":
			msg = fmt.Sprintf("The %s field is required.", fe.Field())
		case "max":
			msg = fmt.Sprintf("The field %s must be a string with a maximum length of %s.", fe.Field(), fe.Param())
		default:
			msg = fmt.Sprintf("The field %s is invalid.", fe.Field())
		}

		ve.Fields = append(ve.Fields, FieldError{Member: fe.Field(), Message: msg})
	}

	return ve
}

func scopedByTenant(db *gorm.DB, scope Scope) *gorm.DB {
	return db.Where(scopeQuery, models.TenantScopeOf(scope.TenantID))
}

// Get retrieves a setting of the caller's tenant by id.
func Get(db *gorm.DB, scope Scope, id uuid.UUID) (*models.ApplicationSetting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var setting models.ApplicationSetting

	result := scopedByTenant(db, scope).Where("id = ?", id).First(&setting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, result.Error
	}

	return &setting, nil
}

// GetByKey retrieves a setting of the caller's tenant by key.
func GetByKey(db *gorm.DB, scope Scope, key string) (*models.ApplicationSetting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if key == "" {
		return nil, validationError("key", "The key field is required.")
	}

	var setting models.ApplicationSetting

	result := db.Where(keyScopeQuery, key, models.TenantScopeOf(scope.TenantID)).First(&setting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, result.Error
	}

	return &setting, nil
}

// GetList returns one page of the caller's settings.
// Without Sorting the page is ordered by key ascending.
func GetList(db *gorm.DB, scope Scope, in ListInput) (*ListResult, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if in.SkipCount < 0 {
		return nil, validationError("skipCount", "The field skipCount must not be negative.")
	}

	if in.MaxResultCount < 0 || in.MaxResultCount > MaxMaxResultCount {
		return nil, validationError("maxResultCount",
			"The field maxResultCount must be between 0 and %d.", MaxMaxResultCount)
	}

	order, err := ParseSorting(in.Sorting)
	if err != nil {
		return nil, err
	}

	res := &ListResult{Items: []models.ApplicationSetting{}}

	if err = scopedByTenant(db.Model(&models.ApplicationSetting{}), scope).Count(&res.TotalCount).Error; err != nil {
		return nil, err
	}

	if in.MaxResultCount == 0 || int64(in.SkipCount) >= res.TotalCount {
		return res, nil
	}

	err = scopedByTenant(db, scope).
		Clauses(order).
		Offset(in.SkipCount).
		Limit(in.MaxResultCount).
		Find(&res.Items).Error
	if err != nil {
		return nil, err
	}

	return res, nil
}

// Create inserts a new setting into the caller's tenant.
func Create(db *gorm.DB, scope Scope, in Input) (*models.ApplicationSetting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	setting := &models.ApplicationSetting{
		ID:          uuid.New(),
		Key:         in.Key,
		Value:       in.Value,
		Description: in.Description,
		TenantID:    scope.TenantID,
		Audited: models.Audited{
			CreationTime: time.Now().UTC(),
			CreatorID:    scope.UserID,
		},
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ensureKeyIsFree(tx, scope, in.Key, uuid.Nil); err != nil {
			return err
		}

		return tx.Create(setting).Error
	})
	if err != nil {
		return nil, translate(err, in.Key)
	}

	return setting, nil
}

// Update overwrites key, value and description of a setting in the caller's tenant.
// Id and tenant never change.
func Update(db *gorm.DB, scope Scope, id uuid.UUID, in Input) (*models.ApplicationSetting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	var setting *models.ApplicationSetting

	err := db.Transaction(func(tx *gorm.DB) error {
		var err error

		setting, err = Get(tx, scope, id)
		if err != nil {
			return err
		}

		if setting.Key != in.Key {
			if err = ensureKeyIsFree(tx, scope, in.Key, setting.ID); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		setting.Key = in.Key
		setting.Value = in.Value
		setting.Description = in.Description
		setting.LastModificationTime = &now
		setting.LastModifierID = scope.UserID

		// Save would insert the row again if it vanished since Get
		result := tx.Model(setting).Select("*").Omit("id", "creation_time", "creator_id").Updates(setting)
		if result.Error != nil {
			return result.Error
		}

		// mysql also reports 0 for a row that already holds the values
		if result.RowsAffected == 0 {
			_, err = Get(tx, scope, id)
			return err
		}

		return nil
	})
	if err != nil {
		return nil, translate(err, in.Key)
	}

	return setting, nil
}

// Delete removes a setting of the caller's tenant.
func Delete(db *gorm.DB, scope Scope, id uuid.UUID) error {
	if db == nil {
		return ErrDBNil
	}

	result := scopedByTenant(db, scope).Where("id = ?", id).Delete(&models.ApplicationSetting{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ensureKeyIsFree fails with ErrAlreadyExists if another setting of the tenant uses key.
func ensureKeyIsFree(tx *gorm.DB, scope Scope, key string, except uuid.UUID) error {
	var count int64

	q := tx.Model(&models.ApplicationSetting{}).Where(keyScopeQuery, key, models.TenantScopeOf(scope.TenantID))
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}

	if err := q.Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return &KeyExistsError{Key: key}
	}

	return nil
}

// translate maps unique index violations raised by the database to a KeyExistsError.
func translate(err error, key string) error {
	if err == nil || errors.Is(err, ErrAlreadyExists) || errors.Is(err, ErrNotFound) {
		return err
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return &KeyExistsError{Key: key}
	}

	return err
}

// isUniqueViolation matches the messages of drivers that have no gorm error translator.
func isUniqueViolation(err error) bool {
	msg := err.Error()

	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "Duplicate entry")
}

// sortColumns maps sortable json names to columns.
var sortColumns = map[string]string{ //nolint:gochecknoglobals
	"key":                  "setting_key",
	"value":                "value",
	"description":          "description",
	"creationtime":         "creation_time",
	"lastmodificationtime": "last_modification_time",
}

// tiebreak keeps pages stable when the sort columns have equal values.
var tiebreak = clause.OrderByColumn{Column: clause.Column{Name: "id"}} //nolint:gochecknoglobals

// ParseSorting turns "key desc, creationTime" into an ORDER BY clause.
// Field names are case insensitive, the default direction is ascending.
// The id is always the last sort column.
func ParseSorting(sorting string) (clause.OrderBy, error) {
	if strings.TrimSpace(sorting) == "" {
		return clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "setting_key"}}, tiebreak}}, nil
	}

	var order clause.OrderBy

	for _, part := range strings.Split(sorting, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 || len(fields) > 2 {
			return order, validationError("sorting", "The sorting expression %q is invalid.", part)
		}

		column, ok := sortColumns[strings.ToLower(fields[0])]
		if !ok {
			return order, validationError("sorting", "The field %s can not be used for sorting.", fields[0])
		}

		desc := false

		if len(fields) == 2 { //nolint:mnd
			switch strings.ToLower(fields[1]) {
			case "asc":
			case "desc":
				desc = true
			default:
				return order, validationError("sorting", "The sort direction %s is invalid.", fields[1])
			}
		}

		order.Columns = append(order.Columns, clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc})
	}

	order.Columns = append(order.Columns, tiebreak)

	return order, nil
}
