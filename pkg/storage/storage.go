package storage

import "strings"

// Supported database drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config captures the connection settings for a storage backend. Detailed
// validation is handled by higher layers (runtimeconfig).
type Config struct {
	Name         string
	Driver       string
	DSN          string
	MaxOpenConns int
	Options      map[string]any
}

// NormalizedDriver maps driver aliases onto the supported driver names.
func (c Config) NormalizedDriver() string {
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite
	case "postgres", "postgresql", "pg":
		return DriverPostgres
	default:
		return strings.ToLower(strings.TrimSpace(c.Driver))
	}
}
