package tracker

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func twoPlayerSeats() map[uint32]SeatInfo {
	return map[uint32]SeatInfo{
		0: {SeatNo: 0, PlayerName: "Alice", StackSize: 100, IsOccupied: true, HasCards: true},
		1: {SeatNo: 1, PlayerName: "Bob", StackSize: 100, IsOccupied: true, HasCards: true},
	}
}

func TestDetectNewHandDealerMoved(t *testing.T) {
	h := NewHandTracker(testLogger())
	h.StartNewHand(0, twoPlayerSeats())

	// Same dealer, same pot, same board: nothing new.
	assert.False(t, h.DetectNewHand(0, 0, nil, twoPlayerSeats()))

	// Button moved.
	assert.True(t, h.DetectNewHand(1, 0, nil, twoPlayerSeats()))

	// A negative dealer read never triggers.
	assert.False(t, h.DetectNewHand(-1, 0, nil, twoPlayerSeats()))
}

func TestDetectNewHandPotShrank(t *testing.T) {
	h := NewHandTracker(testLogger())
	h.StartNewHand(0, twoPlayerSeats())
	h.UpdateHandState(50, nil, twoPlayerSeats())

	// Pot grows: still the same hand.
	assert.False(t, h.DetectNewHand(0, 75, nil, twoPlayerSeats()))

	// A pot can only shrink when a new hand started.
	assert.True(t, h.DetectNewHand(0, 10, nil, twoPlayerSeats()))
}

func TestDetectNewHandBoardCleared(t *testing.T) {
	h := NewHandTracker(testLogger())
	h.StartNewHand(0, twoPlayerSeats())
	h.UpdateHandState(10, []string{"Ah", "Kd", "Qc"}, twoPlayerSeats())

	assert.False(t, h.DetectNewHand(0, 10, []string{"Ah", "Kd", "Qc", "2s"}, twoPlayerSeats()))
	assert.True(t, h.DetectNewHand(0, 10, nil, twoPlayerSeats()))
}

func TestDetectNewHandFirstActivePlayers(t *testing.T) {
	h := NewHandTracker(testLogger())

	empty := map[uint32]SeatInfo{
		0: {SeatNo: 0, IsOccupied: false},
	}
	assert.False(t, h.DetectNewHand(-1, 0, nil, empty))

	one := map[uint32]SeatInfo{
		0: {SeatNo: 0, PlayerName: "Alice", IsOccupied: true, HasCards: true},
	}
	assert.False(t, h.DetectNewHand(-1, 0, nil, one))

	// Two seats showing cards while no hand is tracked.
	assert.True(t, h.DetectNewHand(-1, 0, nil, twoPlayerSeats()))

	// Once a hand is tracked the same observation is not a trigger.
	h.StartNewHand(-1, twoPlayerSeats())
	assert.False(t, h.DetectNewHand(-1, 0, nil, twoPlayerSeats()))
}

func TestStartNewHandNumbering(t *testing.T) {
	h := NewHandTracker(testLogger())

	for i := uint32(1); i <= 5; i++ {
		hand := h.StartNewHand(0, twoPlayerSeats())
		require.Equal(t, i, hand.HandNum)
	}

	h.Reset()
	hand := h.StartNewHand(0, twoPlayerSeats())
	assert.Equal(t, uint32(1), hand.HandNum)
}

func TestStartNewHandCompletesPrior(t *testing.T) {
	h := NewHandTracker(testLogger())

	first := h.StartNewHand(0, twoPlayerSeats())
	assert.False(t, first.IsComplete)

	second := h.StartNewHand(1, twoPlayerSeats())
	assert.True(t, first.IsComplete)
	assert.False(t, second.IsComplete)
	assert.Equal(t, StreetPreflop, second.CurrentStreet)
	assert.Equal(t, 0.0, second.PotSize)
	assert.Empty(t, second.Actions)
	assert.Empty(t, second.CommunityCards)
}

func TestMarkCompleteOnlyOnce(t *testing.T) {
	hand := &HandState{HandNum: 1}
	assert.True(t, hand.MarkComplete())
	assert.False(t, hand.MarkComplete())
}

func TestDetectStreetChangeMapping(t *testing.T) {
	testCases := []struct {
		cards    []string
		expected Street
		changed  bool
	}{
		{[]string{"Ah", "Kd", "Qc"}, StreetFlop, true},
		{[]string{"Ah", "Kd", "Qc", "2s"}, StreetTurn, true},
		{[]string{"Ah", "Kd", "Qc", "2s", "9h"}, StreetRiver, true},
	}

	h := NewHandTracker(testLogger())
	h.StartNewHand(0, twoPlayerSeats())

	for i, tc := range testCases {
		street, changed := h.DetectStreetChange(tc.cards)
		if changed != tc.changed {
			t.Fatalf("Test case %d: expected changed=%v", i, tc.changed)
		}
		if street != tc.expected {
			t.Errorf("Test case %d: expected %s, got %s", i, tc.expected, street)
		}
	}
}

func TestDetectStreetChangeIgnoresMidDealCounts(t *testing.T) {
	h := NewHandTracker(testLogger())
	h.StartNewHand(0, twoPlayerSeats())

	// 0 -> 1 -> 3 cards must go straight preflop -> flop, never
	// through an invalid intermediate street.
	_, changed := h.DetectStreetChange([]string{"Ah"})
	assert.False(t, changed)
	assert.Equal(t, StreetPreflop, h.CurrentHand().CurrentStreet)

	_, changed = h.DetectStreetChange([]string{"Ah", "Kd"})
	assert.False(t, changed)
	assert.Equal(t, StreetPreflop, h.CurrentHand().CurrentStreet)

	street, changed := h.DetectStreetChange([]string{"Ah", "Kd", "Qc"})
	assert.True(t, changed)
	assert.Equal(t, StreetFlop, street)
	assert.Equal(t, StreetFlop, h.CurrentHand().CurrentStreet)
}

func TestDetectStreetChangeNoHand(t *testing.T) {
	h := NewHandTracker(testLogger())
	_, changed := h.DetectStreetChange([]string{"Ah", "Kd", "Qc"})
	assert.False(t, changed)
}

func TestUpdateHandStateNoHandIsNoop(t *testing.T) {
	h := NewHandTracker(testLogger())
	h.UpdateHandState(100, []string{"Ah", "Kd", "Qc"}, twoPlayerSeats())
	assert.Nil(t, h.CurrentHand())
}

func TestHandLifecycleScenario(t *testing.T) {
	h := NewHandTracker(testLogger())

	// Two players seen at dealer 0 start hand #1 at preflop.
	hand := h.StartNewHand(0, twoPlayerSeats())
	require.Equal(t, uint32(1), hand.HandNum)
	require.Equal(t, StreetPreflop, hand.CurrentStreet)
	require.Equal(t, 0.0, hand.PotSize)
	require.Empty(t, hand.Actions)

	// Flop comes down.
	h.UpdateHandState(10, []string{"Ah", "Kd", "Qc"}, twoPlayerSeats())
	assert.Equal(t, StreetFlop, hand.CurrentStreet)
	assert.Equal(t, []string{"Ah", "Kd", "Qc"}, hand.CommunityCards)

	// Button moves to seat 1: new hand, prior hand completed.
	require.True(t, h.DetectNewHand(1, 10, []string{"Ah", "Kd", "Qc"}, twoPlayerSeats()))
	second := h.StartNewHand(1, twoPlayerSeats())
	assert.True(t, hand.IsComplete)
	assert.Equal(t, uint32(2), second.HandNum)
	assert.Equal(t, StreetPreflop, second.CurrentStreet)
}

func snapshotWithSeats(seats map[uint32]SeatInfo) *TableSnapshot {
	return &TableSnapshot{
		Timestamp: time.Now(),
		Seats:     seats,
		DealerPos: 0,
	}
}

func TestDetectActionsBetDelta(t *testing.T) {
	r := testRecognizer()

	prev := snapshotWithSeats(map[uint32]SeatInfo{
		0: {SeatNo: 0, PlayerName: "Alice", StackSize: 100, CurrentBet: 0, IsOccupied: true, HasCards: true},
		1: {SeatNo: 1, PlayerName: "Bob", StackSize: 100, CurrentBet: 0, IsOccupied: true, HasCards: true},
	})
	curr := snapshotWithSeats(map[uint32]SeatInfo{
		0: {SeatNo: 0, PlayerName: "Alice", StackSize: 90, CurrentBet: 10, IsOccupied: true, HasCards: true},
		1: {SeatNo: 1, PlayerName: "Bob", StackSize: 100, CurrentBet: 0, IsOccupied: true, HasCards: true},
	})

	var readSeats []uint32
	actions := DetectActions(prev, curr, StreetFlop, false, r, func(seatNo uint32) string {
		readSeats = append(readSeats, seatNo)
		return "Bets $10"
	})

	require.Len(t, actions, 1)
	assert.Equal(t, "Alice", actions[0].PlayerName)
	assert.Equal(t, ActionBet, actions[0].ActionType)
	assert.Equal(t, 10.0, actions[0].Amount)
	assert.Equal(t, StreetFlop, actions[0].Street)
	assert.True(t, actions[0].IsVoluntary)

	// Action text is read lazily: only the seat whose delta fired.
	assert.Equal(t, []uint32{0}, readSeats)
}

func TestDetectActionsAmountFromDeltaNotText(t *testing.T) {
	r := testRecognizer()

	prev := snapshotWithSeats(map[uint32]SeatInfo{
		0: {SeatNo: 0, PlayerName: "Alice", StackSize: 100, CurrentBet: 10, IsOccupied: true, HasCards: true},
	})
	curr := snapshotWithSeats(map[uint32]SeatInfo{
		0: {SeatNo: 0, PlayerName: "Alice", StackSize: 75, CurrentBet: 35, IsOccupied: true, HasCards: true},
	})

	actions := DetectActions(prev, curr, StreetPreflop, false, r, func(uint32) string {
		// OCR read the "to" amount, not the delta.
		return "Raises to $35"
	})

	require.Len(t, actions, 1)
	assert.Equal(t, ActionRaise, actions[0].ActionType)
	assert.Equal(t, 25.0, actions[0].Amount)
}

func TestDetectActionsBlindInference(t *testing.T) {
	r := testRecognizer()

	prev := snapshotWithSeats(map[uint32]SeatInfo{
		0: {SeatNo: 0, PlayerName: "Alice", StackSize: 100, CurrentBet: 0, IsOccupied: true, HasCards: true},
		1: {SeatNo: 1, PlayerName: "Bob", StackSize: 100, CurrentBet: 0, IsOccupied: true, HasCards: true},
		2: {SeatNo: 2, PlayerName: "Carol", StackSize: 100, CurrentBet: 0, IsOccupied: true, HasCards: true},
	})
	curr := snapshotWithSeats(map[uint32]SeatInfo{
		0: {SeatNo: 0, PlayerName: "Alice", StackSize: 99.5, CurrentBet: 0.5, IsOccupied: true, HasCards: true},
		1: {SeatNo: 1, PlayerName: "Bob", StackSize: 99, CurrentBet: 1, IsOccupied: true, HasCards: true},
		2: {SeatNo: 2, PlayerName: "Carol", StackSize: 100, CurrentBet: 0, IsOccupied: true, HasCards: true},
	})

	actions := DetectActions(prev, curr, StreetPreflop, true, r, func(uint32) string { return "" })

	require.Len(t, actions, 2)
	for _, a := range actions {
		assert.Equal(t, ActionPostBlind, a.ActionType)
		assert.False(t, a.IsVoluntary)
	}
}

func TestDetectActionsFoldOnCardsGone(t *testing.T) {
	r := testRecognizer()

	prev := snapshotWithSeats(map[uint32]SeatInfo{
		0: {SeatNo: 0, PlayerName: "Alice", StackSize: 100, IsOccupied: true, HasCards: true},
	})
	curr := snapshotWithSeats(map[uint32]SeatInfo{
		0: {SeatNo: 0, PlayerName: "Alice", StackSize: 100, IsOccupied: true, HasCards: false},
	})

	actions := DetectActions(prev, curr, StreetFlop, false, r, func(uint32) string { return "Folds" })

	require.Len(t, actions, 1)
	assert.Equal(t, ActionFold, actions[0].ActionType)
	assert.Equal(t, 0.0, actions[0].Amount)
}

func TestDetectActionsSkipsSeatsNotInBothFrames(t *testing.T) {
	r := testRecognizer()

	prev := snapshotWithSeats(map[uint32]SeatInfo{
		0: {SeatNo: 0, IsOccupied: false},
		1: {SeatNo: 1, PlayerName: "Bob", StackSize: 100, IsOccupied: true, HasCards: true},
	})
	curr := snapshotWithSeats(map[uint32]SeatInfo{
		0: {SeatNo: 0, PlayerName: "Alice", StackSize: 50, CurrentBet: 50, IsOccupied: true, HasCards: true},
		1: {SeatNo: 1, PlayerName: "Bob", StackSize: 100, IsOccupied: true, HasCards: true},
	})

	actions := DetectActions(prev, curr, StreetPreflop, false, r, func(uint32) string { return "Bets" })
	assert.Empty(t, actions)
}

func TestDetectActionsNilSnapshots(t *testing.T) {
	r := testRecognizer()
	assert.Empty(t, DetectActions(nil, snapshotWithSeats(nil), StreetPreflop, false, r, func(uint32) string { return "" }))
	assert.Empty(t, DetectActions(snapshotWithSeats(nil), nil, StreetPreflop, false, r, func(uint32) string { return "" }))
}

func TestDetectActionsAllInClassification(t *testing.T) {
	r := testRecognizer()

	prev := snapshotWithSeats(map[uint32]SeatInfo{
		0: {SeatNo: 0, PlayerName: "Alice", StackSize: 40, CurrentBet: 10, IsOccupied: true, HasCards: true},
	})
	curr := snapshotWithSeats(map[uint32]SeatInfo{
		0: {SeatNo: 0, PlayerName: "Alice", StackSize: 0, CurrentBet: 50, IsOccupied: true, HasCards: true},
	})

	// Action text unreadable; classification falls back to deltas.
	actions := DetectActions(prev, curr, StreetTurn, false, r, func(uint32) string { return "" })

	require.Len(t, actions, 1)
	assert.Equal(t, ActionAllIn, actions[0].ActionType)
	assert.Equal(t, 40.0, actions[0].Amount)
}
