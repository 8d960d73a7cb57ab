// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix of single value environment overrides, e.g. PROJECTPLANNER_WEBSERVER_PORT.
	EnvPrefix = "PROJECTPLANNER"

	// EnvConfigJSON holds a complete JSON document merged over the file config.
	EnvConfigJSON = "PROJECTPLANNER_CONFIG_JSON"

	// DefaultTenantHeader is the request header the tenant id is read from.
	DefaultTenantHeader = "__tenant"

	// DefaultBodyLimit is the maximum accepted request body (500 MiB).
	DefaultBodyLimit = 500 * 1024 * 1024

	defaultShutDownTime  = 5
	defaultSessionExpiry = 24 * time.Hour
	defaultSQLiteName    = "projectplanner.db"
	defaultAdminUsername = "admin"
)

// DefaultCorsOrigins are the front-end dev origins allowed when none are configured.
var DefaultCorsOrigins = []string{ //nolint:gochecknoglobals
	"http://localhost:3000",
	"http://localhost:8080",
	"http://localhost:5000",
	"https://localhost:3000",
	"https://localhost:8080",
	"https://localhost:5000",
}

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(path, "main.toml"))
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err = v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read json config override")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate the config and fill in defaults for optional values.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Webserver.BodyLimit <= 0 {
		c.Webserver.BodyLimit = DefaultBodyLimit
	}

	if c.Webserver.Session.ExpiryTime <= 0 {
		c.Webserver.Session.ExpiryTime = defaultSessionExpiry
	}

	if len(c.Webserver.Cors.AllowOrigins) == 0 {
		c.Webserver.Cors.AllowOrigins = slices.Clone(DefaultCorsOrigins)
	}

	if c.Webserver.Cors.AllowCredentials && slices.Contains(c.Webserver.Cors.AllowOrigins, "*") {
		return errors.Wrap(ErrWildcardOriginWithCredentials, invalidErrMessage)
	}

	if c.MultiTenancy.TenantHeader == "" {
		c.MultiTenancy.TenantHeader = DefaultTenantHeader
	}

	if c.Auth.AdminUsername == "" {
		c.Auth.AdminUsername = defaultAdminUsername
	}

	switch strings.ToLower(c.DB.GormEngine) {
	case "":
		c.DB.GormEngine = EngineSQLite
	case EngineMySQL, EnginePostgres, EngineSQLite:
		c.DB.GormEngine = strings.ToLower(c.DB.GormEngine)
	default:
		return errors.Wrapf(ErrUnsupportedGormEngine, "%s: %s", invalidErrMessage, c.DB.GormEngine)
	}

	if c.DB.GormEngine == EngineSQLite && c.DB.Name == "" {
		c.DB.Name = defaultSQLiteName
	}

	return nil
}
