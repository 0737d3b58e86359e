package database

import (
	"context"
	"fmt"
)

// PreferencesSchemaPostgres creates the preferences table on Postgres
const PreferencesSchemaPostgres = `
CREATE TABLE IF NOT EXISTS preferences (
	owner           TEXT PRIMARY KEY,
	market_discount DOUBLE PRECISION NOT NULL,
	include_listed  BOOLEAN NOT NULL DEFAULT FALSE,
	armor_sort      TEXT NOT NULL DEFAULT 'type',
	cache_discount  BIGINT NOT NULL,
	cache_margin    DOUBLE PRECISION NOT NULL,
	icon_position   TEXT NOT NULL DEFAULT 'right',
	icon_offset     INTEGER NOT NULL DEFAULT 0,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PreferencesSchemaSQLite creates the preferences table on SQLite
const PreferencesSchemaSQLite = `
CREATE TABLE IF NOT EXISTS preferences (
	owner           TEXT PRIMARY KEY,
	market_discount REAL NOT NULL,
	include_listed  INTEGER NOT NULL DEFAULT 0,
	armor_sort      TEXT NOT NULL DEFAULT 'type',
	cache_discount  INTEGER NOT NULL,
	cache_margin    REAL NOT NULL,
	icon_position   TEXT NOT NULL DEFAULT 'right',
	icon_offset     INTEGER NOT NULL DEFAULT 0,
	updated_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// EnsureSchema creates the tables used by the service on the shared pool
func EnsureSchema(ctx context.Context) error {
	p := Pool()
	if p == nil {
		return fmt.Errorf("database not initialized")
	}
	if _, err := p.Exec(ctx, PreferencesSchemaPostgres); err != nil {
		return fmt.Errorf("failed to create preferences table: %w", err)
	}
	return nil
}
