// Package db carries the SQL migration files embedded into the binary, so
// the server can migrate on startup regardless of its working directory.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
