// Package migrations embeds the goose migrations for every SQL dialect.
// Each dialect lives in its own directory named after the driver.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS

// Dir names inside Migrations.
const (
	DirPostgres = "postgres"
	DirSQLite   = "sqlite"
)
