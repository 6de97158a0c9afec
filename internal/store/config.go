package store

import (
	"github.com/loykin/httpstep/internal/store/postgresql"
	"github.com/loykin/httpstep/internal/store/sqlite"
)

const (
	DriverSqlite     = "sqlite"
	DriverPostgresql = "postgresql"
)

type SqliteConfig = sqlite.Config

type PostgresConfig = postgresql.Config

type Config struct {
	Driver       string `mapstructure:"driver"`
	TableName    string `mapstructure:"table_name"`
	DriverConfig DriverConfig
}

type DriverConfig interface {
	ToMap() map[string]interface{}
}
