// Package account serves login, logout and the profile of the signed-in user.
package account

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plex-projectplanner/projectplanner/internal/auth"
	"github.com/plex-projectplanner/projectplanner/internal/config"
	"github.com/plex-projectplanner/projectplanner/internal/db/models"
	"github.com/plex-projectplanner/projectplanner/internal/tenant"
	"github.com/plex-projectplanner/projectplanner/internal/web/handler"
	"github.com/plex-projectplanner/projectplanner/internal/web/session"
)

const (
	// Path is the route group of the account api.
	Path = "/api/account"
)

var (
	// ErrInvalidCredentials is returned when the provided username and/or password are not valid.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type (
	// LoginInput is the body of a login request.
	LoginInput struct {
		UserNameOrEmailAddress string `json:"userNameOrEmailAddress"`
		Password               string `json:"password"`
		RememberMe             bool   `json:"rememberMe"`
	}

	// Profile describes the signed-in user.
	Profile struct {
		ID          uuid.UUID     `json:"id"`
		UserName    string        `json:"userName"`
		Email       string        `json:"email"`
		Name        string        `json:"name"`
		Surname     string        `json:"surname"`
		TenantID    uuid.NullUUID `json:"tenantId"`
		Role        string        `json:"role"`
		Permissions []string      `json:"permissions"`
	}
)

// Service is the account handler service.
type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	local       *auth.LocalProvider
}

// Handler is the account handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the account handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return nil
	}

	s.cfg = cfg
	s.db = db
	s.authService = authService
	s.local = auth.NewLocalProvider(db)

	app.Route(Path, func(router fiber.Router) {
		router.Post("/login", s.Login)
		router.Post("/logout", s.Logout)
		router.Get("/my-profile", auth.RequireAuthenticated(), s.MyProfile)
	})

	return nil
}

// Login checks the credentials and starts a session.
func (s *Service) Login(c *fiber.Ctx) error {
	in := new(LoginInput)

	if err := c.BodyParser(in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	user, err := s.local.Authenticate(in.UserNameOrEmailAddress, in.Password)
	if err != nil {
		log.Warn().Err(err).Str("user", in.UserNameOrEmailAddress).Msg("login failed")

		if errors.Is(err, auth.ErrUserAccountDisabled) {
			return fiber.NewError(fiber.StatusUnauthorized, "The user is not active.")
		}

		if errors.Is(err, auth.ErrUserNotFound) || errors.Is(err, auth.ErrInvalidPassword) {
			return fiber.NewError(fiber.StatusUnauthorized, ErrInvalidCredentials.Error())
		}

		return err
	}

	// a login inside a tenant only finds the users of that tenant
	if requested := tenant.FromCtx(c); requested.Valid && user.TenantID != requested {
		log.Warn().Stringer("user_id", user.ID).Stringer("tenant", requested.UUID).Msg("login into foreign tenant")

		return fiber.NewError(fiber.StatusUnauthorized, ErrInvalidCredentials.Error())
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		return err
	}

	userSession := &session.Data{
		UserID:   user.ID,
		Username: user.Username,
		TenantID: user.TenantID,
	}

	expiry := s.cfg.Webserver.Session.ExpiryTime
	if err = userSession.Write(sessionID, expiry); err != nil {
		return err
	}

	cookie := &fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		Secure:   !s.cfg.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}

	// without remember me the cookie ends with the browser session
	if in.RememberMe {
		cookie.MaxAge = int(expiry.Seconds())
	}

	c.Cookie(cookie)

	log.Info().Stringer("user_id", user.ID).Str("user", user.Username).Msg("user logged in")

	return s.writeProfile(c, user.ID)
}

// Logout ends the session of the request.
func (s *Service) Logout(c *fiber.Ctx) error {
	if sessionID := c.Cookies(session.CookieName); sessionID != "" {
		if err := session.Delete(sessionID); err != nil {
			log.Error().Err(err).Msg("failed to delete session")
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    "",
		MaxAge:   -1,
		Secure:   !s.cfg.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.SendStatus(fiber.StatusNoContent)
}

// MyProfile returns the signed-in user and its permissions.
func (s *Service) MyProfile(c *fiber.Ctx) error {
	user := auth.UserFromCtx(c)
	if !user.Valid {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	return s.writeProfile(c, user.UUID)
}

func (s *Service) writeProfile(c *fiber.Ctx, userID uuid.UUID) error {
	user, err := s.local.GetUserByID(userID)
	if errors.Is(err, auth.ErrUserNotFound) {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	if err != nil {
		return err
	}

	permissions, err := s.authService.GetUserPermissions(userID)
	if err != nil {
		return err
	}

	return c.JSON(profileOf(user, permissions))
}

func profileOf(user *models.User, permissions []string) Profile {
	return Profile{
		ID:          user.ID,
		UserName:    user.Username,
		Email:       user.Email,
		Name:        user.Name,
		Surname:     user.Surname,
		TenantID:    user.TenantID,
		Role:        user.Role.Name,
		Permissions: permissions,
	}
}
