package stats

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"pokerlens.com/tracker/tracker"
)

const applyTimeout = 5 * time.Second

// CounterCache is the durable counter store, normally redis.
type CounterCache interface {
	Apply(ctx context.Context, playerName string, delta Counters) error
	Get(ctx context.Context, playerName string) (Counters, error)
	Replace(ctx context.Context, playerName string, counters Counters) error
	Remove(ctx context.Context, playerName string) error
}

// HandRecord is one stored hand as seen by a rebuild: who was dealt in
// and what they did.
type HandRecord struct {
	Players []string
	Actions []*tracker.PlayerAction
}

// HandHistory replays stored hands, normally backed by postgres.
type HandHistory interface {
	PlayerHands(ctx context.Context, playerName string) ([]HandRecord, error)
}

// Publisher pushes refreshed stats to HUD subscribers. May be nil.
type Publisher interface {
	PublishStats(sessionCode string, playerStats []PlayerStats)
}

// Aggregator turns completed hands into per-player counters and serves
// derived stats. A small LRU in front of redis absorbs the REST and
// publish reads; entries are dropped whenever the player's counters
// move.
type Aggregator struct {
	cache         CounterCache
	history       HandHistory
	publisher     Publisher
	front         *lru.Cache
	minSampleSize int
	logger        *zerolog.Logger
}

func NewAggregator(
	cache CounterCache,
	history HandHistory,
	publisher Publisher,
	frontCacheSize int,
	minSampleSize int,
	logger *zerolog.Logger) (*Aggregator, error) {

	front, err := lru.New(frontCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to create stats front cache")
	}
	return &Aggregator{
		cache:         cache,
		history:       history,
		publisher:     publisher,
		front:         front,
		minSampleSize: minSampleSize,
		logger:        logger,
	}, nil
}

// ApplyCompletedHand merges one hand into every involved player's
// counters and returns their refreshed stats.
func (a *Aggregator) ApplyCompletedHand(ctx context.Context, hand *tracker.HandState) ([]PlayerStats, error) {
	if hand == nil || len(hand.Actions) == 0 {
		return nil, nil
	}

	deltas := HandCounters(dealtPlayers(hand), hand.Actions)

	var playerStats []PlayerStats
	for playerName, delta := range deltas {
		err := a.cache.Apply(ctx, playerName, delta)
		if err != nil {
			return nil, errors.Wrapf(err, "Unable to apply hand counters for player [%s]", playerName)
		}
		a.front.Remove(playerName)

		stats, err := a.GetPlayerStats(ctx, playerName)
		if err != nil {
			return nil, err
		}
		playerStats = append(playerStats, stats)
	}
	return playerStats, nil
}

// GetPlayerStats serves the derived stats for one player.
func (a *Aggregator) GetPlayerStats(ctx context.Context, playerName string) (PlayerStats, error) {
	if cached, hit := a.front.Get(playerName); hit {
		return cached.(PlayerStats), nil
	}

	counters, err := a.cache.Get(ctx, playerName)
	if err != nil {
		return PlayerStats{}, errors.Wrapf(err, "Unable to load counters for player [%s]", playerName)
	}

	stats := Compute(playerName, counters, a.minSampleSize)
	a.front.Add(playerName, stats)
	return stats, nil
}

// Rebuild recomputes a player's counters from the stored hand history.
// Used when the counter semantics change or the redis hash is suspect.
func (a *Aggregator) Rebuild(ctx context.Context, playerName string) error {
	if a.history == nil {
		return errors.New("No hand history configured for rebuild")
	}

	hands, err := a.history.PlayerHands(ctx, playerName)
	if err != nil {
		return errors.Wrapf(err, "Unable to load hand history for player [%s]", playerName)
	}

	var total Counters
	for _, hand := range hands {
		if delta, exists := HandCounters(hand.Players, hand.Actions)[playerName]; exists {
			total.Add(delta)
		}
	}

	err = a.cache.Replace(ctx, playerName, total)
	if err != nil {
		return errors.Wrapf(err, "Unable to replace counters for player [%s]", playerName)
	}
	a.front.Remove(playerName)
	a.logger.Info().Str("playerName", playerName).Int("hands", len(hands)).Msg("Rebuilt player counters")
	return nil
}

func (a *Aggregator) SessionStarted(session *tracker.TableSession) {}

func (a *Aggregator) HandCompleted(session *tracker.TableSession, hand *tracker.HandState) {
	ctx, cancel := context.WithTimeout(context.Background(), applyTimeout)
	defer cancel()

	playerStats, err := a.ApplyCompletedHand(ctx, hand)
	if err != nil {
		a.logger.Error().Msgf("Unable to aggregate hand %d: %v", hand.HandNum, err)
		return
	}
	if a.publisher != nil && len(playerStats) > 0 {
		a.publisher.PublishStats(session.SessionCode, playerStats)
	}
}

func (a *Aggregator) SessionEnded(session *tracker.TableSession) {}

func dealtPlayers(hand *tracker.HandState) []string {
	var players []string
	for _, seat := range hand.Seats {
		if seat.IsOccupied {
			players = append(players, seat.PlayerName)
		}
	}
	return players
}
