package config

import (
	"time"

	"github.com/plex-projectplanner/projectplanner/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration // lifetime of a login session
}

// Cors holds the default CORS policy applied to every route.
type Cors struct {
	AllowOrigins     []string // allowed origins, wildcards are not accepted together with credentials
	AllowCredentials bool     // send Access-Control-Allow-Credentials
	MaxAge           int      // preflight cache in seconds
}

// MultiTenancy controls how the current tenant is resolved for a request.
type MultiTenancy struct {
	Enabled      bool   // false = every request runs as host
	TenantHeader string // request header carrying the tenant id
}

// Auth holds authorization settings.
type Auth struct {
	AllowAnonymous bool   // skip permission checks on the application setting api
	AdminUsername  string // username of the seeded administrator
	AdminPassword  string // password of the seeded administrator, generated if empty
}

// Seed controls the data created by migrate and start.
type Seed struct {
	ArchiveSettings bool // store the default archive settings for the host
}

// Config overall data structure.
type Config struct {
	DevMode      bool // enable dev mode for development
	DB           DB
	Log          logger.Log
	Title        string
	Webserver    Webserver
	MultiTenancy MultiTenancy
	Auth         Auth
	Seed         Seed
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool    // disable recover middleware
	Domain         string  // domain name for the webserver
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown
	URL            string  // base url for the webserver
	BodyLimit      int     // max request body size in bytes
	Session        Session // session settings
	Cors           Cors    // cors settings
}
