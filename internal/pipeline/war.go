package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scolli03/rwmarket/internal/cachequote"
	"github.com/scolli03/rwmarket/internal/metrics"
	"github.com/scolli03/rwmarket/internal/pricing"
	"github.com/scolli03/rwmarket/internal/types"
)

var (
	// ErrTooFewFactions means the report lists fewer than two factions
	ErrTooFewFactions = errors.New("war report has fewer than two factions")
	// ErrFactionNotFound means the winner or loser could not be identified
	ErrFactionNotFound = errors.New("could not identify winner and loser factions")
)

// Side names one faction of a war
type Side string

const (
	SideWinner Side = "winner"
	SideLoser  Side = "loser"
)

// ParseSide parses "winner" or "loser"
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideWinner, SideLoser:
		return Side(s), nil
	default:
		return "", fmt.Errorf("invalid side %q: must be winner or loser", s)
	}
}

// WarSource is the Torn API surface the war cache run needs
type WarSource interface {
	RankedWarReport(ctx context.Context, rankID int64) (types.WarReport, error)
	FactionBasic(ctx context.Context, factionID int64) (types.FactionBasic, error)
}

// Leader is a faction leader or co-leader
type Leader struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// WarSide is one faction with its priced reward cache
type WarSide struct {
	Side     Side                    `json:"side"`
	Faction  types.WarFaction        `json:"faction"`
	Leader   *Leader                 `json:"leader,omitempty"`
	CoLeader *Leader                 `json:"coLeader,omitempty"`
	Items    []*cachequote.CacheItem `json:"items"`
}

// Item returns the cache item with the given reward id
func (s *WarSide) Item(itemID int64) (*cachequote.CacheItem, bool) {
	for _, it := range s.Items {
		if it.Reward.ID == itemID {
			return it, true
		}
	}
	return nil, false
}

// Quote computes the buy quote of this side under policy
func (s *WarSide) Quote(policy pricing.CachePolicy) cachequote.Sheet {
	sheet := cachequote.Quote(s.Items, policy)
	metrics.NewRecorder().RecordQuoteTotal(string(s.Side), sheet.Total)
	return sheet
}

// WarCache is the priced reward caches of both sides of one ranked war
type WarCache struct {
	RankID     int64           `json:"rankId"`
	Report     types.WarReport `json:"report"`
	Winner     *WarSide        `json:"winner"`
	Loser      *WarSide        `json:"loser"`
	ResolvedAt time.Time       `json:"resolvedAt"`
}

// Side returns the named side
func (w *WarCache) Side(s Side) *WarSide {
	if s == SideLoser {
		return w.Loser
	}
	return w.Winner
}

// War runs the war cache flow
type War struct {
	Source WarSource
	Engine *cachequote.Engine
}

// Run fetches the war report, splits winner and loser, looks up their
// leaders and prices both reward caches. Report errors abort the run;
// leader and per-item price failures do not.
func (w *War) Run(ctx context.Context, rankID int64) (*WarCache, error) {
	report, err := w.Source.RankedWarReport(ctx, rankID)
	if err != nil {
		return nil, fmt.Errorf("fetch war report %d: %w", rankID, err)
	}

	winner, loser, err := SplitFactions(report)
	if err != nil {
		return nil, fmt.Errorf("war report %d: %w", rankID, err)
	}

	cache := &WarCache{RankID: rankID, Report: report}
	for _, side := range []struct {
		side    Side
		faction types.WarFaction
		dst     **WarSide
	}{
		{SideWinner, winner, &cache.Winner},
		{SideLoser, loser, &cache.Loser},
	} {
		ws, err := w.resolveSide(ctx, side.side, side.faction)
		if err != nil {
			return nil, err
		}
		*side.dst = ws
	}
	cache.ResolvedAt = time.Now().UTC()
	return cache, nil
}

func (w *War) resolveSide(ctx context.Context, side Side, faction types.WarFaction) (*WarSide, error) {
	log.Info().
		Str("side", string(side)).
		Int64("faction_id", faction.ID).
		Int("items", len(faction.Rewards)).
		Msg("Fetching cache prices")

	ws := &WarSide{Side: side, Faction: faction}
	ws.Leader, ws.CoLeader = w.leaders(ctx, faction)

	items, err := w.Engine.Resolve(ctx, faction.Rewards)
	if err != nil {
		return nil, fmt.Errorf("resolve %s cache: %w", side, err)
	}
	ws.Items = items
	return ws, nil
}

func (w *War) leaders(ctx context.Context, faction types.WarFaction) (leader, coLeader *Leader) {
	basic, err := w.Source.FactionBasic(ctx, faction.ID)
	if err != nil {
		log.Warn().Err(err).Int64("faction_id", faction.ID).Msg("Could not fetch faction leaders")
		return nil, nil
	}
	named := func(id *int64) *Leader {
		if id == nil {
			return nil
		}
		return &Leader{ID: *id, Name: faction.MemberName(*id, "ID "+strconv.FormatInt(*id, 10))}
	}
	return named(basic.LeaderID), named(basic.CoLeaderID)
}

// SplitFactions finds the winning faction and the first other faction
func SplitFactions(report types.WarReport) (winner, loser types.WarFaction, err error) {
	if len(report.Factions) < 2 {
		return winner, loser, ErrTooFewFactions
	}
	var foundWinner, foundLoser bool
	for _, f := range report.Factions {
		switch {
		case f.ID == report.WinnerID && !foundWinner:
			winner, foundWinner = f, true
		case f.ID != report.WinnerID && !foundLoser:
			loser, foundLoser = f, true
		}
	}
	if !foundWinner || !foundLoser {
		return winner, loser, ErrFactionNotFound
	}
	return winner, loser, nil
}
