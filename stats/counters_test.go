package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pokerlens.com/tracker/tracker"
)

func action(player string, actionType tracker.ActionType, street tracker.Street) *tracker.PlayerAction {
	return &tracker.PlayerAction{
		PlayerName:  player,
		ActionType:  actionType,
		Street:      street,
		IsVoluntary: tracker.IsVoluntaryAction(actionType),
	}
}

func TestHandCountersTotalHands(t *testing.T) {
	counters := HandCounters([]string{"Alice", "Bob", "Carol"}, nil)
	require.Len(t, counters, 3)
	for _, c := range counters {
		assert.Equal(t, int64(1), c.TotalHands)
		assert.Equal(t, int64(0), c.VPIPHands)
	}
}

func TestHandCountersVPIP(t *testing.T) {
	actions := []*tracker.PlayerAction{
		action("Alice", tracker.ActionPostBlind, tracker.StreetPreflop),
		action("Bob", tracker.ActionCall, tracker.StreetPreflop),
		action("Alice", tracker.ActionCheck, tracker.StreetPreflop),
	}
	counters := HandCounters([]string{"Alice", "Bob"}, actions)

	// A blind post and a check are not voluntary money.
	assert.Equal(t, int64(0), counters["Alice"].VPIPHands)
	assert.Equal(t, int64(1), counters["Bob"].VPIPHands)
}

func TestHandCountersVPIPCountedOncePerHand(t *testing.T) {
	actions := []*tracker.PlayerAction{
		action("Alice", tracker.ActionCall, tracker.StreetPreflop),
		action("Bob", tracker.ActionRaise, tracker.StreetPreflop),
		action("Alice", tracker.ActionCall, tracker.StreetPreflop),
	}
	counters := HandCounters([]string{"Alice", "Bob"}, actions)
	assert.Equal(t, int64(1), counters["Alice"].VPIPHands)
}

func TestHandCountersPFR(t *testing.T) {
	actions := []*tracker.PlayerAction{
		action("Alice", tracker.ActionCall, tracker.StreetPreflop),
		action("Bob", tracker.ActionRaise, tracker.StreetPreflop),
	}
	counters := HandCounters([]string{"Alice", "Bob"}, actions)
	assert.Equal(t, int64(0), counters["Alice"].PFRHands)
	assert.Equal(t, int64(1), counters["Bob"].PFRHands)
}

func TestHandCountersThreeBet(t *testing.T) {
	actions := []*tracker.PlayerAction{
		action("Alice", tracker.ActionRaise, tracker.StreetPreflop),
		action("Bob", tracker.ActionRaise, tracker.StreetPreflop),
		action("Carol", tracker.ActionCall, tracker.StreetPreflop),
	}
	counters := HandCounters([]string{"Alice", "Bob", "Carol"}, actions)

	// Bob faced one raise and re-raised: chance taken. Carol acted
	// after the second raise, so she never had a 3-bet spot.
	assert.Equal(t, int64(1), counters["Bob"].ThreeBetChances)
	assert.Equal(t, int64(1), counters["Bob"].ThreeBetsMade)
	assert.Equal(t, int64(0), counters["Carol"].ThreeBetChances)
	assert.Equal(t, int64(0), counters["Alice"].ThreeBetChances)
}

func TestHandCountersThreeBetDeclined(t *testing.T) {
	actions := []*tracker.PlayerAction{
		action("Alice", tracker.ActionRaise, tracker.StreetPreflop),
		action("Bob", tracker.ActionFold, tracker.StreetPreflop),
	}
	counters := HandCounters([]string{"Alice", "Bob"}, actions)
	assert.Equal(t, int64(1), counters["Bob"].ThreeBetChances)
	assert.Equal(t, int64(0), counters["Bob"].ThreeBetsMade)
}

func TestHandCountersPostflopAggression(t *testing.T) {
	actions := []*tracker.PlayerAction{
		action("Alice", tracker.ActionBet, tracker.StreetFlop),
		action("Bob", tracker.ActionCall, tracker.StreetFlop),
		action("Alice", tracker.ActionBet, tracker.StreetTurn),
		action("Bob", tracker.ActionRaise, tracker.StreetTurn),
	}
	counters := HandCounters([]string{"Alice", "Bob"}, actions)

	assert.Equal(t, int64(2), counters["Alice"].PostflopBets)
	assert.Equal(t, int64(1), counters["Bob"].PostflopCalls)
	assert.Equal(t, int64(1), counters["Bob"].PostflopRaises)
}

func TestHandCountersFoldToCBet(t *testing.T) {
	actions := []*tracker.PlayerAction{
		action("Alice", tracker.ActionRaise, tracker.StreetPreflop),
		action("Bob", tracker.ActionCall, tracker.StreetPreflop),
		action("Carol", tracker.ActionCall, tracker.StreetPreflop),
		action("Alice", tracker.ActionBet, tracker.StreetFlop),
		action("Bob", tracker.ActionFold, tracker.StreetFlop),
		action("Carol", tracker.ActionCall, tracker.StreetFlop),
	}
	counters := HandCounters([]string{"Alice", "Bob", "Carol"}, actions)

	assert.Equal(t, int64(1), counters["Bob"].FoldToCBetChances)
	assert.Equal(t, int64(1), counters["Bob"].FoldToCBetsMade)
	assert.Equal(t, int64(1), counters["Carol"].FoldToCBetChances)
	assert.Equal(t, int64(0), counters["Carol"].FoldToCBetsMade)
	assert.Equal(t, int64(0), counters["Alice"].FoldToCBetChances)
}

func TestHandCountersNoCBetWhenDonkBet(t *testing.T) {
	actions := []*tracker.PlayerAction{
		action("Alice", tracker.ActionRaise, tracker.StreetPreflop),
		action("Bob", tracker.ActionCall, tracker.StreetPreflop),
		action("Bob", tracker.ActionBet, tracker.StreetFlop),
		action("Alice", tracker.ActionFold, tracker.StreetFlop),
	}
	counters := HandCounters([]string{"Alice", "Bob"}, actions)

	// Bob bet into the raiser first; nobody faced a continuation bet.
	assert.Equal(t, int64(0), counters["Alice"].FoldToCBetChances)
	assert.Equal(t, int64(0), counters["Bob"].FoldToCBetChances)
}

func TestHandCountersPlayerMissingFromDealtList(t *testing.T) {
	actions := []*tracker.PlayerAction{
		action("Ghost", tracker.ActionCall, tracker.StreetPreflop),
	}
	counters := HandCounters([]string{"Alice"}, actions)

	require.Contains(t, counters, "Ghost")
	assert.Equal(t, int64(1), counters["Ghost"].TotalHands)
	assert.Equal(t, int64(1), counters["Ghost"].VPIPHands)
}

func TestCountersAdd(t *testing.T) {
	total := Counters{TotalHands: 5, VPIPHands: 2, PostflopCalls: 3}
	total.Add(Counters{TotalHands: 1, VPIPHands: 1, PFRHands: 1, PostflopCalls: 1})
	assert.Equal(t, Counters{TotalHands: 6, VPIPHands: 3, PFRHands: 1, PostflopCalls: 4}, total)
}
