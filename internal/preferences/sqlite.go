package preferences

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/scolli03/rwmarket/internal/database"
	"github.com/scolli03/rwmarket/internal/sorting"
)

// SQLiteStore keeps preferences in a local SQLite file
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) the SQLite database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(database.PreferencesSchemaSQLite); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, owner string) (Preferences, error) {
	p := Preferences{Owner: owner}
	var armorSort string
	var includeListed int
	err := s.db.QueryRowContext(ctx, `
		SELECT market_discount, include_listed, armor_sort, cache_discount,
		       cache_margin, icon_position, icon_offset, updated_at
		FROM preferences WHERE owner = ?`, owner).
		Scan(&p.MarketDiscount, &includeListed, &armorSort, &p.CacheDiscount,
			&p.CacheMargin, &p.IconPosition, &p.IconOffset, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Defaults(owner), nil
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to load preferences for %s: %w", owner, err)
	}
	p.IncludeListed = includeListed != 0
	p.ArmorSort = sorting.ParseArmorMode(armorSort)
	return p, nil
}

func (s *SQLiteStore) Put(ctx context.Context, p Preferences) (Preferences, error) {
	if err := p.Validate(); err != nil {
		return Preferences{}, err
	}
	p.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	includeListed := 0
	if p.IncludeListed {
		includeListed = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (owner, market_discount, include_listed, armor_sort,
			cache_discount, cache_margin, icon_position, icon_offset, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner) DO UPDATE SET
			market_discount = excluded.market_discount,
			include_listed  = excluded.include_listed,
			armor_sort      = excluded.armor_sort,
			cache_discount  = excluded.cache_discount,
			cache_margin    = excluded.cache_margin,
			icon_position   = excluded.icon_position,
			icon_offset     = excluded.icon_offset,
			updated_at      = excluded.updated_at`,
		p.Owner, p.MarketDiscount, includeListed, string(p.ArmorSort),
		p.CacheDiscount, p.CacheMargin, p.IconPosition, p.IconOffset, p.UpdatedAt)
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to save preferences for %s: %w", p.Owner, err)
	}
	return p, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
