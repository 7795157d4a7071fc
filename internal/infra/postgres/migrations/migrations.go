package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the Postgres schema, one file per version.
var Migrations = migrate.NewMigrations()
