package stats

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pokerlens.com/tracker/tracker"
)

type memoryCounterCache struct {
	counters map[string]Counters
}

func newMemoryCounterCache() *memoryCounterCache {
	return &memoryCounterCache{counters: make(map[string]Counters)}
}

func (m *memoryCounterCache) Apply(ctx context.Context, playerName string, delta Counters) error {
	c := m.counters[playerName]
	c.Add(delta)
	m.counters[playerName] = c
	return nil
}

func (m *memoryCounterCache) Get(ctx context.Context, playerName string) (Counters, error) {
	return m.counters[playerName], nil
}

func (m *memoryCounterCache) Replace(ctx context.Context, playerName string, counters Counters) error {
	m.counters[playerName] = counters
	return nil
}

func (m *memoryCounterCache) Remove(ctx context.Context, playerName string) error {
	delete(m.counters, playerName)
	return nil
}

type recordingPublisher struct {
	published [][]PlayerStats
}

func (r *recordingPublisher) PublishStats(sessionCode string, playerStats []PlayerStats) {
	r.published = append(r.published, playerStats)
}

type staticHistory struct {
	hands []HandRecord
}

func (s *staticHistory) PlayerHands(ctx context.Context, playerName string) ([]HandRecord, error) {
	return s.hands, nil
}

func testAggregator(t *testing.T, cache CounterCache, history HandHistory, publisher Publisher) *Aggregator {
	t.Helper()
	logger := zerolog.Nop()
	agg, err := NewAggregator(cache, history, publisher, 128, 10, &logger)
	require.NoError(t, err)
	return agg
}

func completedHand(actions []*tracker.PlayerAction) *tracker.HandState {
	return &tracker.HandState{
		HandNum:   1,
		StartedAt: time.Now(),
		Actions:   actions,
		Seats: map[uint32]tracker.SeatInfo{
			0: {SeatNo: 0, PlayerName: "Alice", IsOccupied: true},
			1: {SeatNo: 1, PlayerName: "Bob", IsOccupied: true},
		},
		IsComplete: true,
	}
}

func TestApplyCompletedHand(t *testing.T) {
	cache := newMemoryCounterCache()
	agg := testAggregator(t, cache, nil, nil)

	hand := completedHand([]*tracker.PlayerAction{
		action("Alice", tracker.ActionRaise, tracker.StreetPreflop),
		action("Bob", tracker.ActionCall, tracker.StreetPreflop),
	})

	playerStats, err := agg.ApplyCompletedHand(context.Background(), hand)
	require.NoError(t, err)
	assert.Len(t, playerStats, 2)

	assert.Equal(t, int64(1), cache.counters["Alice"].TotalHands)
	assert.Equal(t, int64(1), cache.counters["Alice"].PFRHands)
	assert.Equal(t, int64(1), cache.counters["Bob"].VPIPHands)
}

func TestApplyCompletedHandEmptyHand(t *testing.T) {
	agg := testAggregator(t, newMemoryCounterCache(), nil, nil)
	playerStats, err := agg.ApplyCompletedHand(context.Background(), completedHand(nil))
	require.NoError(t, err)
	assert.Empty(t, playerStats)
}

func TestGetPlayerStatsInvalidatedOnApply(t *testing.T) {
	cache := newMemoryCounterCache()
	agg := testAggregator(t, cache, nil, nil)
	ctx := context.Background()

	// Prime the front cache at zero hands.
	stats, err := agg.GetPlayerStats(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.HandsSeen)

	hand := completedHand([]*tracker.PlayerAction{
		action("Alice", tracker.ActionCall, tracker.StreetPreflop),
	})
	_, err = agg.ApplyCompletedHand(ctx, hand)
	require.NoError(t, err)

	stats, err = agg.GetPlayerStats(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.HandsSeen)
}

func TestHandCompletedPublishes(t *testing.T) {
	publisher := &recordingPublisher{}
	agg := testAggregator(t, newMemoryCounterCache(), nil, publisher)

	session := &tracker.TableSession{SessionCode: "abc"}
	agg.HandCompleted(session, completedHand([]*tracker.PlayerAction{
		action("Alice", tracker.ActionRaise, tracker.StreetPreflop),
	}))

	require.Len(t, publisher.published, 1)
}

func TestRebuild(t *testing.T) {
	cache := newMemoryCounterCache()
	history := &staticHistory{
		hands: []HandRecord{
			{
				Players: []string{"Alice", "Bob"},
				Actions: []*tracker.PlayerAction{
					action("Alice", tracker.ActionRaise, tracker.StreetPreflop),
				},
			},
			{
				Players: []string{"Alice", "Bob"},
				Actions: []*tracker.PlayerAction{
					action("Alice", tracker.ActionCall, tracker.StreetPreflop),
				},
			},
		},
	}
	agg := testAggregator(t, cache, history, nil)

	// Poison the cached counters, then rebuild from history.
	require.NoError(t, cache.Replace(context.Background(), "Alice", Counters{TotalHands: 99}))
	require.NoError(t, agg.Rebuild(context.Background(), "Alice"))

	assert.Equal(t, int64(2), cache.counters["Alice"].TotalHands)
	assert.Equal(t, int64(2), cache.counters["Alice"].VPIPHands)
	assert.Equal(t, int64(1), cache.counters["Alice"].PFRHands)
}

func TestRebuildWithoutHistory(t *testing.T) {
	agg := testAggregator(t, newMemoryCounterCache(), nil, nil)
	assert.Error(t, agg.Rebuild(context.Background(), "Alice"))
}
