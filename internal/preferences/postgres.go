package preferences

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scolli03/rwmarket/internal/sorting"
)

// PostgresStore keeps preferences in Postgres through a shared pgx pool
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps pool. The schema must already exist
// (see database.EnsureSchema).
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Get(ctx context.Context, owner string) (Preferences, error) {
	p := Preferences{Owner: owner}
	var armorSort string
	err := s.pool.QueryRow(ctx, `
		SELECT market_discount, include_listed, armor_sort, cache_discount,
		       cache_margin, icon_position, icon_offset, updated_at
		FROM preferences WHERE owner = $1`, owner).
		Scan(&p.MarketDiscount, &p.IncludeListed, &armorSort, &p.CacheDiscount,
			&p.CacheMargin, &p.IconPosition, &p.IconOffset, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Defaults(owner), nil
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to load preferences for %s: %w", owner, err)
	}
	p.ArmorSort = sorting.ParseArmorMode(armorSort)
	return p, nil
}

func (s *PostgresStore) Put(ctx context.Context, p Preferences) (Preferences, error) {
	if err := p.Validate(); err != nil {
		return Preferences{}, err
	}
	p.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	_, err := s.pool.Exec(ctx, `
		INSERT INTO preferences (owner, market_discount, include_listed, armor_sort,
			cache_discount, cache_margin, icon_position, icon_offset, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (owner) DO UPDATE SET
			market_discount = EXCLUDED.market_discount,
			include_listed  = EXCLUDED.include_listed,
			armor_sort      = EXCLUDED.armor_sort,
			cache_discount  = EXCLUDED.cache_discount,
			cache_margin    = EXCLUDED.cache_margin,
			icon_position   = EXCLUDED.icon_position,
			icon_offset     = EXCLUDED.icon_offset,
			updated_at      = EXCLUDED.updated_at`,
		p.Owner, p.MarketDiscount, p.IncludeListed, string(p.ArmorSort),
		p.CacheDiscount, p.CacheMargin, p.IconPosition, p.IconOffset, p.UpdatedAt)
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to save preferences for %s: %w", p.Owner, err)
	}
	return p, nil
}

// Close is a no-op; the shared pool is closed by database.Close
func (s *PostgresStore) Close() error {
	return nil
}
