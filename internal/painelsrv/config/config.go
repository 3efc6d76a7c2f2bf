// Package config loads the database settings for painelcore. Resolution
// order, highest first: process environment, then .env override files in a
// fixed candidate order (first file wins per key), then built-in defaults.
// Loading never fails; problems degrade to warnings and defaults so a
// misconfigured panel still starts and surfaces its real error at connect
// time.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	mysql "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Environment keys recognized by the loader. Only these are read; anything
// else in an override file is ignored.
const (
	EnvHost     = "DB_HOST"
	EnvPort     = "DB_PORT"
	EnvUser     = "DB_USER"
	EnvPassword = "DB_PASS"
	EnvDatabase = "DB_NAME"
	EnvPoolSize = "DB_POOL_SIZE"
)

const (
	defaultHost     = "localhost"
	defaultPort     = 3306
	defaultUser     = "root"
	defaultDatabase = "sistema_login"
	defaultPoolSize = 8
)

// DefaultEnvFiles are the override candidates, in precedence order. The
// working directory is checked first, then its parent, so a deploy can keep
// one shared .env above several checkouts.
var DefaultEnvFiles = []string{".env", "../.env"}

// Settings holds the resolved database configuration.
type Settings struct {
	Host     string `validate:"required"`
	Port     int    `validate:"gte=1,lte=65535"`
	User     string `validate:"required"`
	Password string
	Database string `validate:"required"`
	PoolSize int    `validate:"gte=1"`
}

// Load resolves settings using the default override file candidates.
func Load() *Settings {
	return LoadFrom(DefaultEnvFiles...)
}

// LoadFrom resolves settings against the given override files. Files that
// are missing or unreadable are skipped silently; for a key present in more
// than one file the earliest file wins. Process environment beats any file.
func LoadFrom(files ...string) *Settings {
	overlays := readOverlays(files)

	s := &Settings{
		Host:     lookup(EnvHost, defaultHost, overlays),
		User:     lookup(EnvUser, defaultUser, overlays),
		Password: lookup(EnvPassword, "", overlays),
		Database: lookup(EnvDatabase, defaultDatabase, overlays),
	}
	s.Port = safeInt(EnvPort, lookup(EnvPort, "", overlays), defaultPort)
	s.PoolSize = safeInt(EnvPoolSize, lookup(EnvPoolSize, "", overlays), defaultPoolSize)

	if s.PoolSize < 1 {
		log.Warn().Int("value", s.PoolSize).Msg("pool size below minimum, clamping to 1")
		s.PoolSize = 1
	}
	if s.Password == "" {
		log.Warn().Str("key", EnvPassword).Msg("database password is not set; connections will likely be refused")
	}
	if err := validator.New().Struct(s); err != nil {
		log.Warn().Err(err).Msg("settings failed validation; continuing with resolved values")
	}
	return s
}

// readOverlays parses each candidate file into a key/value map, keeping the
// candidate order so earlier files take precedence.
func readOverlays(files []string) []map[string]string {
	overlays := make([]map[string]string, 0, len(files))
	for _, f := range files {
		kv, err := godotenv.Read(f)
		if err != nil {
			continue
		}
		overlays = append(overlays, kv)
	}
	return overlays
}

// lookup resolves one key: environment first, then the override files in
// order, then the default.
func lookup(key, def string, overlays []map[string]string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	for _, kv := range overlays {
		if v, ok := kv[key]; ok {
			return v
		}
	}
	return def
}

// safeInt parses a numeric setting defensively: an empty value silently
// yields the default, a malformed one logs a warning and yields the default.
func safeInt(key, raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Int("default", def).
			Msg("setting is not a valid integer, using default")
		return def
	}
	return n
}

// DSN renders the go-sql-driver connection string. parseTime is required so
// DATETIME columns scan into time.Time; charset matches the schema contract.
func (s *Settings) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = s.User
	cfg.Passwd = s.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", s.Host, s.Port)
	cfg.DBName = s.Database
	cfg.ParseTime = true
	cfg.Loc = time.Local
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Redacted identifies the target without the password. This is the only
// form that may appear in logs or error messages.
func (s *Settings) Redacted() string {
	return fmt.Sprintf("%s@%s:%d/%s", s.User, s.Host, s.Port, s.Database)
}
