// Package db embeds the SQL migrations applied at boot.
package db

import "embed"

//go:embed migrations/*.sql
var MigrationFS embed.FS
