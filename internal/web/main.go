// Package web builds the fiber application serving the json api.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plex-projectplanner/projectplanner/internal/auth"
	"github.com/plex-projectplanner/projectplanner/internal/config"
	fiberlogger "github.com/plex-projectplanner/projectplanner/internal/logger/adapter/fiber"
	"github.com/plex-projectplanner/projectplanner/internal/tenant"
	"github.com/plex-projectplanner/projectplanner/internal/web/handler"
	"github.com/plex-projectplanner/projectplanner/internal/web/handler/account"
	"github.com/plex-projectplanner/projectplanner/internal/web/handler/appsetting"
	"github.com/plex-projectplanner/projectplanner/internal/web/handler/health"
)

// MetricsPath serves the prometheus metrics.
const MetricsPath = "/metrics"

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
}

// Start starts the web service on the given address and blocks until it stops.
func (s *Service) Start(addr string) error {
	if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Alive reports whether the service accepts traffic.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// WaitShutdown waits for SIGINT or SIGTERM and shuts the http server down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown lets the check alive endpoint fail for the configured drain time, then stops the server.
func (s *Service) Shutdown() {
	s.alive.Store(false)

	// Graceful shutdown for reverse proxies: checkalive returns 503 so the LB removes this instance.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192, //nolint:mnd
			AppName:        cfg.Title,
			CaseSensitive:  false,
			Prefork:        false,
			Immutable:      true,
			BodyLimit:      cfg.Webserver.BodyLimit,
			ErrorHandler:   handler.ErrorHandler,
		},
	)

	authService := auth.NewService(db, cfg.Auth)

	service := &Service{
		cfg:          cfg,
		App:          app,
		db:           db,
		authService:  authService,
		fastShutDown: cfg.Webserver.ShutDownTime <= 0,
	}

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: health.Path,
	}))

	allowMethods := []string{
		fiber.MethodGet, fiber.MethodPost, fiber.MethodPut,
		fiber.MethodDelete, fiber.MethodPatch, fiber.MethodOptions,
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Webserver.Cors.AllowOrigins, ","),
		AllowMethods:     strings.Join(allowMethods, ","),
		AllowCredentials: cfg.Webserver.Cors.AllowCredentials,
		ExposeHeaders:    "X-Performance",
		MaxAge:           cfg.Webserver.Cors.MaxAge,
	}))

	app.Use(tenant.New(tenant.Config{
		Enabled: cfg.MultiTenancy.Enabled,
		Header:  cfg.MultiTenancy.TenantHeader,
	}))

	health.Register(app, service.Alive)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	// init handlers (they register their own routes with permission checks)
	for _, h := range []handler.Service{&account.Handler, &appsetting.Handler} {
		if err := h.Init(app, cfg, db, authService); err != nil {
			panic(err)
		}
	}

	service.alive.Store(true)

	return service
}
