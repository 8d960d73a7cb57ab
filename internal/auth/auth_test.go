package auth

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/plex-projectplanner/projectplanner/internal/config"
	"github.com/plex-projectplanner/projectplanner/internal/db/models"
	"github.com/plex-projectplanner/projectplanner/internal/tenant"
	"github.com/plex-projectplanner/projectplanner/internal/web/session"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Permission{},
		&models.Role{},
		&models.RolePermission{},
		&models.User{},
	))

	return db
}

type fixture struct {
	db      *gorm.DB
	service *Service
	local   *LocalProvider
	editor  *models.User
	reader  *models.User
}

// newFixture creates an editor allowed to create settings and a reader without permissions.
func newFixture(t *testing.T, cfg config.Auth) fixture {
	t.Helper()

	db := setupTestDB(t)
	f := fixture{db: db, service: NewService(db, cfg), local: NewLocalProvider(db)}

	require.NoError(t, f.service.SyncDefinitions())

	editorRole := models.Role{Name: "editor"}
	require.NoError(t, db.Create(&editorRole).Error)
	require.NoError(t, f.service.GrantPermissions(editorRole.ID, PermApplicationSettings, PermApplicationSettingsCreate))

	readerRole := models.Role{Name: "reader"}
	require.NoError(t, db.Create(&readerRole).Error)

	var err error

	f.editor, err = f.local.CreateUser("editor", "editor@example.com", "1q2w3E*", editorRole.ID)
	require.NoError(t, err)

	f.reader, err = f.local.CreateUser("reader", "reader@example.com", "1q2w3E*", readerRole.ID)
	require.NoError(t, err)

	return f
}

func TestFlatten(t *testing.T) {
	flat := Flatten(Definitions())
	require.Len(t, flat, 4)

	assert.Equal(t, FlatPermission{
		Name: PermApplicationSettings, DisplayName: "Application settings", Group: GroupProjectPlanner,
	}, flat[0])

	for _, p := range flat[1:] {
		assert.Equal(t, PermApplicationSettings, p.Parent)
		assert.Equal(t, GroupProjectPlanner, p.Group)
	}

	assert.True(t, IsDefined(PermApplicationSettingsDelete))
	assert.False(t, IsDefined("ProjectPlanner.Books"))
}

func TestSyncDefinitionsIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db, config.Auth{})

	require.NoError(t, s.SyncDefinitions())
	require.NoError(t, s.SyncDefinitions())

	var count int64
	require.NoError(t, db.Model(&models.Permission{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)

	var child models.Permission
	require.NoError(t, db.Where("name = ?", PermApplicationSettingsUpdate).First(&child).Error)
	assert.Equal(t, PermApplicationSettings, child.Parent)
	assert.Equal(t, GroupProjectPlanner, child.Group)
}

func TestPermissions(t *testing.T) {
	f := newFixture(t, config.Auth{})

	has, err := f.service.HasPermission(f.editor.ID, PermApplicationSettingsCreate)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = f.service.HasPermission(f.editor.ID, PermApplicationSettingsDelete)
	require.NoError(t, err)
	assert.False(t, has)

	has, err = f.service.HasAnyPermission(f.editor.ID, []string{PermApplicationSettingsDelete, PermApplicationSettings})
	require.NoError(t, err)
	assert.True(t, has)

	has, err = f.service.HasAnyPermission(f.reader.ID, []string{PermApplicationSettings})
	require.NoError(t, err)
	assert.False(t, has)

	perms, err := f.service.GetUserPermissions(f.editor.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{PermApplicationSettings, PermApplicationSettingsCreate}, perms)

	perms, err = f.service.GetUserPermissions(f.reader.ID)
	require.NoError(t, err)
	assert.Empty(t, perms)

	// granting twice keeps a single row
	require.NoError(t, f.service.GrantPermissions(f.editor.RoleID, PermApplicationSettingsCreate))
	require.ErrorIs(t, f.service.GrantPermissions(f.editor.RoleID, "ProjectPlanner.Books"), ErrUnknownPermission)

	// inactive users lose their permissions
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", f.editor.ID).Update("active", false).Error)

	has, err = f.service.HasPermission(f.editor.ID, PermApplicationSettingsCreate)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestAssignRoleToUser(t *testing.T) {
	f := newFixture(t, config.Auth{})

	require.NoError(t, f.service.AssignRoleToUser(f.reader.ID, f.editor.RoleID))

	has, err := f.service.HasPermission(f.reader.ID, PermApplicationSettingsCreate)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestLocalProvider(t *testing.T) {
	f := newFixture(t, config.Auth{})

	user, err := f.local.Authenticate("editor", "1q2w3E*")
	require.NoError(t, err)
	assert.Equal(t, f.editor.ID, user.ID)

	_, err = f.local.Authenticate("editor", "wrong")
	require.ErrorIs(t, err, ErrInvalidPassword)

	user, err = f.local.Authenticate("editor@example.com", "1q2w3E*")
	require.NoError(t, err)
	assert.Equal(t, f.editor.ID, user.ID)

	_, err = f.local.Authenticate("nobody", "1q2w3E*")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.local.CreateUser("editor", "other@example.com", "x", f.editor.RoleID)
	require.ErrorIs(t, err, ErrUserNameOrEmailExists)

	require.NoError(t, f.local.ResetPassword(f.editor.ID, "n3w-Secret"))
	_, err = f.local.Authenticate("editor", "n3w-Secret")
	require.NoError(t, err)
	require.ErrorIs(t, f.local.ResetPassword(uuid.New(), "x"), ErrUserNotFound)

	loaded, err := f.local.GetUserByID(f.editor.ID)
	require.NoError(t, err)
	assert.Equal(t, "editor", loaded.Role.Name)

	_, err = f.local.GetUserByID(uuid.New())
	require.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", f.reader.ID).Update("active", false).Error)
	_, err = f.local.Authenticate("reader", "1q2w3E*")
	require.ErrorIs(t, err, ErrUserAccountDisabled)
}

func newSession(t *testing.T, user *models.User) string {
	t.Helper()

	id, err := session.GenerateSessionID()
	require.NoError(t, err)
	require.NoError(t, (&session.Data{UserID: user.ID, Username: user.Username}).Write(id, time.Minute))

	return id
}

func TestRequirePermission(t *testing.T) {
	session.Init(nil)

	f := newFixture(t, config.Auth{})
	anonymous := NewService(f.db, config.Auth{AllowAnonymous: true})

	newApp := func(s *Service) *fiber.App {
		app := fiber.New()
		app.Post("/", RequirePermission(s, PermApplicationSettingsCreate), func(c *fiber.Ctx) error {
			if u := UserFromCtx(c); u.Valid {
				return c.SendString(u.UUID.String())
			}

			return c.SendString("anonymous")
		})
		app.Get("/me", RequireAuthenticated(), func(c *fiber.Ctx) error {
			return c.SendString(UserFromCtx(c).UUID.String())
		})

		return app
	}

	editorSession := newSession(t, f.editor)
	readerSession := newSession(t, f.reader)

	tests := []struct {
		name       string
		service    *Service
		method     string
		path       string
		cookie     string
		wantStatus int
	}{
		{name: "no session", service: f.service, method: fiber.MethodPost, path: "/", wantStatus: fiber.StatusUnauthorized},
		{name: "unknown session", service: f.service, method: fiber.MethodPost, path: "/", cookie: "nope", wantStatus: fiber.StatusUnauthorized},
		{name: "missing permission", service: f.service, method: fiber.MethodPost, path: "/", cookie: readerSession, wantStatus: fiber.StatusForbidden},
		{name: "granted", service: f.service, method: fiber.MethodPost, path: "/", cookie: editorSession, wantStatus: fiber.StatusOK},
		{name: "anonymous allowed", service: anonymous, method: fiber.MethodPost, path: "/", wantStatus: fiber.StatusOK},
		{name: "anonymous allowed with session", service: anonymous, method: fiber.MethodPost, path: "/", cookie: readerSession, wantStatus: fiber.StatusOK},
		{name: "profile without session", service: f.service, method: fiber.MethodGet, path: "/me", wantStatus: fiber.StatusUnauthorized},
		{name: "profile", service: f.service, method: fiber.MethodGet, path: "/me", cookie: readerSession, wantStatus: fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.cookie != "" {
				req.Header.Set(fiber.HeaderCookie, session.CookieName+"="+tt.cookie)
			}

			resp, err := newApp(tt.service).Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestSessionTenant(t *testing.T) {
	session.Init(nil)

	f := newFixture(t, config.Auth{})
	anonymous := NewService(f.db, config.Auth{AllowAnonymous: true})

	tenantA := uuid.MustParse("3fa85f64-5717-4562-b3fc-2c963f66afa6")
	tenantB := uuid.MustParse("1fcaee03-2d3b-4c5e-9f6a-7b8c9d0e1f2a")

	memberSession, err := session.GenerateSessionID()
	require.NoError(t, err)
	require.NoError(t, (&session.Data{
		UserID:   f.editor.ID,
		Username: f.editor.Username,
		TenantID: uuid.NullUUID{UUID: tenantA, Valid: true},
	}).Write(memberSession, time.Minute))

	hostSession := newSession(t, f.editor)

	newApp := func(s *Service) *fiber.App {
		app := fiber.New()
		app.Use(tenant.New(tenant.Config{Enabled: true}))

		current := func(c *fiber.Ctx) error {
			if id := tenant.FromCtx(c); id.Valid {
				return c.SendString(id.UUID.String())
			}

			return c.SendString("host")
		}

		app.Get("/", RequirePermission(s, PermApplicationSettings), current)
		app.Get("/me", RequireAuthenticated(), current)

		return app
	}

	tests := []struct {
		name       string
		service    *Service
		path       string
		cookie     string
		header     string
		wantStatus int
		wantTenant string
	}{
		{name: "session tenant without header", service: f.service, path: "/", cookie: memberSession, wantStatus: fiber.StatusOK, wantTenant: tenantA.String()},
		{name: "session tenant with same header", service: f.service, path: "/", cookie: memberSession, header: tenantA.String(), wantStatus: fiber.StatusOK, wantTenant: tenantA.String()},
		{name: "session tenant with other header", service: f.service, path: "/", cookie: memberSession, header: tenantB.String(), wantStatus: fiber.StatusForbidden},
		{name: "profile with other header", service: f.service, path: "/me", cookie: memberSession, header: tenantB.String(), wantStatus: fiber.StatusForbidden},
		{name: "anonymous allowed with other header", service: anonymous, path: "/", cookie: memberSession, header: tenantB.String(), wantStatus: fiber.StatusForbidden},
		{name: "anonymous without session", service: anonymous, path: "/", header: tenantB.String(), wantStatus: fiber.StatusOK, wantTenant: tenantB.String()},
		{name: "host user selects tenant", service: f.service, path: "/", cookie: hostSession, header: tenantB.String(), wantStatus: fiber.StatusOK, wantTenant: tenantB.String()},
		{name: "host user without header", service: f.service, path: "/me", cookie: hostSession, wantStatus: fiber.StatusOK, wantTenant: "host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, tt.path, nil)
			req.Header.Set(fiber.HeaderCookie, session.CookieName+"="+tt.cookie)

			if tt.header != "" {
				req.Header.Set("__tenant", tt.header)
			}

			resp, err := newApp(tt.service).Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			require.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus != fiber.StatusOK {
				return
			}

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTenant, string(body))
		})
	}
}
