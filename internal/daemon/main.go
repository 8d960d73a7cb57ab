// Package daemon wires database, sessions and the web service together.
package daemon

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plex-projectplanner/projectplanner/internal/config"
	"github.com/plex-projectplanner/projectplanner/internal/db"
	"github.com/plex-projectplanner/projectplanner/internal/db/dsn"
	"github.com/plex-projectplanner/projectplanner/internal/web"
	"github.com/plex-projectplanner/projectplanner/internal/web/session"
)

const sessionTable = "sessions"

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	webService *web.Service
}

// Start starts the Daemon's web service. It blocks until the server stops.
func (d *Daemon) Start() error {
	addr := fmt.Sprintf(":%d", d.cfg.Webserver.Port)
	log.Info().Str("addr", addr).Str("url", d.cfg.Webserver.URL).Msg("starting web service")

	return d.webService.Start(addr)
}

// WaitShutdown blocks until a termination signal and stops the web service.
func (d *Daemon) WaitShutdown() {
	d.webService.WaitShutdown()
}

// Migrate opens the database, migrates the schema and seeds the initial data.
func Migrate(cfg *config.Config) (*gorm.DB, error) {
	conn, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(conn); err != nil {
		return nil, err
	}

	if err = seed(cfg, conn); err != nil {
		return nil, errors.Wrap(err, "failed to seed database")
	}

	return conn, nil
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	conn, err := Migrate(cfg)
	if err != nil {
		return nil, err
	}

	session.Init(newSessionStorage(cfg))

	return &Daemon{
		cfg:        cfg,
		db:         conn,
		webService: web.New(cfg, conn),
	}, nil
}

// newSessionStorage keeps sessions next to the data, sqlite setups use memory.
func newSessionStorage(cfg *config.Config) fiber.Storage {
	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		})
	case config.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.CreateURI(cfg),
			Table:         sessionTable,
		})
	default:
		log.Warn().Msg("sessions are kept in memory and lost on restart")
		return nil
	}
}
