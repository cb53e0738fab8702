package tracker

import (
	"fmt"
	"sort"
	"time"
)

// Street is one betting round. The string forms are the persisted
// vocabulary; do not change them without migrating stored actions.
type Street int

const (
	StreetPreflop Street = iota
	StreetFlop
	StreetTurn
	StreetRiver
)

func (s Street) String() string {
	switch s {
	case StreetPreflop:
		return "preflop"
	case StreetFlop:
		return "flop"
	case StreetTurn:
		return "turn"
	case StreetRiver:
		return "river"
	default:
		return fmt.Sprintf("street(%d)", int(s))
	}
}

// StreetFromCardCount maps a board card count to a street. Counts 1 and
// 2 are mid-deal camera noise and map to nothing.
func StreetFromCardCount(count int) (Street, bool) {
	switch count {
	case 0:
		return StreetPreflop, true
	case 3:
		return StreetFlop, true
	case 4:
		return StreetTurn, true
	case 5:
		return StreetRiver, true
	default:
		return StreetPreflop, false
	}
}

type ActionType int

const (
	ActionFold ActionType = iota
	ActionCheck
	ActionCall
	ActionBet
	ActionRaise
	ActionAllIn
	ActionPostBlind
)

func (a ActionType) String() string {
	switch a {
	case ActionFold:
		return "fold"
	case ActionCheck:
		return "check"
	case ActionCall:
		return "call"
	case ActionBet:
		return "bet"
	case ActionRaise:
		return "raise"
	case ActionAllIn:
		return "all-in"
	case ActionPostBlind:
		return "post_blind"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ActionTypeFromString parses the persisted action vocabulary.
func ActionTypeFromString(s string) (ActionType, bool) {
	switch s {
	case "fold":
		return ActionFold, true
	case "check":
		return ActionCheck, true
	case "call":
		return ActionCall, true
	case "bet":
		return ActionBet, true
	case "raise":
		return ActionRaise, true
	case "all-in":
		return ActionAllIn, true
	case "post_blind":
		return ActionPostBlind, true
	default:
		return ActionFold, false
	}
}

type Position int

const (
	PositionUnknown Position = iota
	PositionButton
	PositionSmallBlind
	PositionBigBlind
	PositionUTG
	PositionMiddle
	PositionCutoff
)

func (p Position) String() string {
	switch p {
	case PositionButton:
		return "button"
	case PositionSmallBlind:
		return "small_blind"
	case PositionBigBlind:
		return "big_blind"
	case PositionUTG:
		return "under_the_gun"
	case PositionMiddle:
		return "middle_position"
	case PositionCutoff:
		return "cutoff"
	default:
		return "unknown"
	}
}

// SeatInfo is one seat as observed in a single frame. Values are
// created fresh on every snapshot; identity across frames is seat
// number plus name equality only.
type SeatInfo struct {
	SeatNo       uint32
	PlayerName   string
	StackSize    float64
	IsOccupied   bool
	HasCards     bool
	CurrentBet   float64
	Position     Position
	IsSittingOut bool
}

// TableSnapshot is the full table state reconstructed from one frame.
// Snapshots are immutable values; the tracker retains only the previous
// one to compute diffs.
type TableSnapshot struct {
	Timestamp      time.Time
	Seats          map[uint32]SeatInfo
	DealerPos      int // -1 when no marker was found
	PotSize        float64
	CurrentStreet  Street
	CommunityCards []string
	LastAction     *PlayerAction
}

func (t *TableSnapshot) ActivePlayers() []SeatInfo {
	var active []SeatInfo
	for _, seatNo := range sortedSeatNumbers(t.Seats) {
		seat := t.Seats[seatNo]
		if seat.HasCards {
			active = append(active, seat)
		}
	}
	return active
}

func (t *TableSnapshot) PlayerByName(name string) (SeatInfo, bool) {
	for _, seat := range t.Seats {
		if seat.IsOccupied && seat.PlayerName == name {
			return seat, true
		}
	}
	return SeatInfo{}, false
}

// PlayerAction is one discrete event synthesized by the tracker. Never
// mutated after creation.
type PlayerAction struct {
	PlayerName  string
	SeatNo      uint32
	ActionType  ActionType
	Amount      float64
	Street      Street
	Timestamp   time.Time
	IsVoluntary bool
}

func (a *PlayerAction) String() string {
	if a.Amount > 0 {
		return fmt.Sprintf("%s %s $%.2f", a.PlayerName, a.ActionType, a.Amount)
	}
	return fmt.Sprintf("%s %s", a.PlayerName, a.ActionType)
}

// HandState is one poker hand in progress or completed. The tracker
// mutates the current hand in place as frames arrive; once superseded a
// hand is immutable.
type HandState struct {
	HandID         uint64 // assigned at persistence time
	HandNum        uint32
	StartedAt      time.Time
	CurrentStreet  Street
	PotSize        float64
	CommunityCards []string
	Actions        []*PlayerAction
	Seats          map[uint32]SeatInfo
	DealerPos      int
	IsComplete     bool
}

func (h *HandState) AddAction(action *PlayerAction) {
	h.Actions = append(h.Actions, action)
}

func (h *HandState) ActionsForStreet(street Street) []*PlayerAction {
	var actions []*PlayerAction
	for _, a := range h.Actions {
		if a.Street == street {
			actions = append(actions, a)
		}
	}
	return actions
}

func (h *HandState) PlayerActions(playerName string) []*PlayerAction {
	var actions []*PlayerAction
	for _, a := range h.Actions {
		if a.PlayerName == playerName {
			actions = append(actions, a)
		}
	}
	return actions
}

// MarkComplete completes the hand. A hand is completable exactly once;
// the second call reports false and changes nothing.
func (h *HandState) MarkComplete() bool {
	if h.IsComplete {
		return false
	}
	h.IsComplete = true
	return true
}

func (h *HandState) String() string {
	return fmt.Sprintf("Hand #%d (%s, $%.2f, %d actions)", h.HandNum, h.CurrentStreet, h.PotSize, len(h.Actions))
}

func copySeats(seats map[uint32]SeatInfo) map[uint32]SeatInfo {
	out := make(map[uint32]SeatInfo, len(seats))
	for seatNo, seat := range seats {
		out[seatNo] = seat
	}
	return out
}

func copyCards(cards []string) []string {
	if cards == nil {
		return nil
	}
	out := make([]string, len(cards))
	copy(out, cards)
	return out
}

func sortedSeatNumbers(seats map[uint32]SeatInfo) []uint32 {
	numbers := make([]uint32, 0, len(seats))
	for seatNo := range seats {
		numbers = append(numbers, seatNo)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	return numbers
}

// AssignPositions labels each occupied seat relative to the dealer
// button. Heads-up the button posts the small blind.
func AssignPositions(seats map[uint32]SeatInfo, dealerPos int, numSeats uint32) map[uint32]SeatInfo {
	out := copySeats(seats)
	if dealerPos < 0 {
		return out
	}

	// Occupied seats in clockwise order starting at the button.
	var order []uint32
	for offset := uint32(0); offset < numSeats; offset++ {
		seatNo := (uint32(dealerPos) + offset) % numSeats
		if seat, exists := out[seatNo]; exists && seat.IsOccupied && !seat.IsSittingOut {
			order = append(order, seatNo)
		}
	}
	if len(order) < 2 {
		return out
	}

	assign := func(seatNo uint32, pos Position) {
		seat := out[seatNo]
		seat.Position = pos
		out[seatNo] = seat
	}

	if len(order) == 2 {
		assign(order[0], PositionButton)
		assign(order[1], PositionBigBlind)
		return out
	}

	assign(order[0], PositionButton)
	assign(order[1], PositionSmallBlind)
	assign(order[2], PositionBigBlind)
	for i := 3; i < len(order); i++ {
		switch {
		case i == 3 && len(order) > 4:
			assign(order[i], PositionUTG)
		case i == len(order)-1:
			assign(order[i], PositionCutoff)
		default:
			assign(order[i], PositionMiddle)
		}
	}
	return out
}
