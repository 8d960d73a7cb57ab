// Package appsetting serves the application setting api.
package appsetting

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plex-projectplanner/projectplanner/internal/auth"
	"github.com/plex-projectplanner/projectplanner/internal/config"
	store "github.com/plex-projectplanner/projectplanner/internal/db/controller/appsetting"
	"github.com/plex-projectplanner/projectplanner/internal/tenant"
	"github.com/plex-projectplanner/projectplanner/internal/web/handler"
)

const (
	// Path is the route group of the application setting api.
	Path = "/api/app/application-setting"
)

// Service is the application setting handler service.
type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
}

// Handler is the application setting handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the handler and registers its routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return nil
	}

	s.cfg = cfg
	s.db = db
	s.authService = authService

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, auth.RequirePermission(authService, auth.PermApplicationSettings), s.GetList)
		router.Get(handler.IDPath, auth.RequirePermission(authService, auth.PermApplicationSettings), s.Get)
		router.Post(handler.RootPath, auth.RequirePermission(authService, auth.PermApplicationSettingsCreate), s.Create)
		router.Put(handler.IDPath, auth.RequirePermission(authService, auth.PermApplicationSettingsUpdate), s.Update)
		router.Delete(handler.IDPath, auth.RequirePermission(authService, auth.PermApplicationSettingsDelete), s.Delete)
	})

	return nil
}

func scopeOf(c *fiber.Ctx) store.Scope {
	return store.Scope{
		TenantID: tenant.FromCtx(c),
		UserID:   auth.UserFromCtx(c),
	}
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid id "+c.Params("id"))
	}

	return id, nil
}

func parseInput(c *fiber.Ctx) (store.Input, error) {
	var in store.Input

	if err := c.BodyParser(&in); err != nil {
		return in, fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	return in, nil
}

// queryInt reads an optional integer query parameter.
func queryInt(c *fiber.Ctx, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name+" "+raw)
	}

	return v, nil
}

// Get returns one setting.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	setting, err := store.Get(s.db, scopeOf(c), id)
	if err != nil {
		return err
	}

	return c.JSON(setting)
}

// GetList returns one page of settings.
func (s *Service) GetList(c *fiber.Ctx) error {
	skip, err := queryInt(c, "skipCount", 0)
	if err != nil {
		return err
	}

	take, err := queryInt(c, "maxResultCount", store.DefaultMaxResultCount)
	if err != nil {
		return err
	}

	res, err := store.GetList(s.db, scopeOf(c), store.ListInput{
		SkipCount:      skip,
		MaxResultCount: take,
		Sorting:        c.Query("sorting"),
	})
	if err != nil {
		return err
	}

	return c.JSON(res)
}

// Create stores a new setting.
func (s *Service) Create(c *fiber.Ctx) error {
	in, err := parseInput(c)
	if err != nil {
		return err
	}

	setting, err := store.Create(s.db, scopeOf(c), in)
	if err != nil {
		return err
	}

	log.Info().Stringer("id", setting.ID).Str("key", setting.Key).Msg("application setting created")

	return c.JSON(setting)
}

// Update replaces key, value and description of a setting.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	in, err := parseInput(c)
	if err != nil {
		return err
	}

	setting, err := store.Update(s.db, scopeOf(c), id, in)
	if err != nil {
		return err
	}

	return c.JSON(setting)
}

// Delete removes a setting.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err = store.Delete(s.db, scopeOf(c), id); err != nil {
		return err
	}

	log.Info().Stringer("id", id).Msg("application setting deleted")

	return c.SendStatus(fiber.StatusNoContent)
}
