package tracker

import (
	"time"

	"github.com/rs/zerolog"

	"pokerlens.com/tracker/util"
)

// HandTracker infers hand boundaries, street transitions, and player
// actions from the stream of table snapshots. It never sees a protocol
// event; everything is derived from diffs between successive frames,
// and any single field may be misread in any given frame.
type HandTracker struct {
	logger *zerolog.Logger

	currentHand    *HandState
	previousPot    float64
	previousBoard  []string
	previousDealer int
	handCounter    uint32
}

func NewHandTracker(logger *zerolog.Logger) *HandTracker {
	return &HandTracker{
		logger:         logger,
		previousDealer: -1,
	}
}

func (h *HandTracker) CurrentHand() *HandState {
	return h.currentHand
}

func (h *HandTracker) HandCounter() uint32 {
	return h.handCounter
}

// DetectNewHand reports whether a new hand has started. The four
// heuristics are deliberately redundant and OR-combined; any one OCR
// field may be garbage in a given frame, but a real hand boundary
// moves several of them at once.
func (h *HandTracker) DetectNewHand(dealerPos int, potSize float64, board []string, seats map[uint32]SeatInfo) bool {
	if dealerPos != h.previousDealer && dealerPos >= 0 {
		return true
	}

	if util.Greater(h.previousPot, potSize) && potSize >= 0 {
		return true
	}

	if len(board) < len(h.previousBoard) {
		return true
	}

	if h.currentHand == nil {
		activePlayers := 0
		for _, seat := range seats {
			if seat.HasCards {
				activePlayers++
			}
		}
		if activePlayers >= 2 {
			return true
		}
	}

	return false
}

// StartNewHand completes the prior hand (if any), increments the
// session hand counter, and begins a fresh preflop hand.
func (h *HandTracker) StartNewHand(dealerPos int, seats map[uint32]SeatInfo) *HandState {
	if h.currentHand != nil && h.currentHand.MarkComplete() {
		util.Metrics.HandCompleted()
		h.logger.Debug().
			Uint32("handNo", h.currentHand.HandNum).
			Int("actions", len(h.currentHand.Actions)).
			Msg("Hand completed")
	}

	h.handCounter++
	util.Metrics.HandStarted()

	h.currentHand = &HandState{
		HandNum:        h.handCounter,
		StartedAt:      time.Now(),
		CurrentStreet:  StreetPreflop,
		PotSize:        0,
		CommunityCards: nil,
		Actions:        nil,
		Seats:          copySeats(seats),
		DealerPos:      dealerPos,
	}

	h.previousDealer = dealerPos
	h.previousPot = 0
	h.previousBoard = nil

	h.logger.Debug().Uint32("handNo", h.handCounter).Int("dealer", dealerPos).Msg("New hand started")
	return h.currentHand
}

// DetectStreetChange maps the board card count to a street and applies
// the transition to the current hand. Counts 1 and 2 are mid-deal
// noise and cause no state change.
func (h *HandTracker) DetectStreetChange(board []string) (Street, bool) {
	if h.currentHand == nil {
		return StreetPreflop, false
	}

	newStreet, valid := StreetFromCardCount(len(board))
	if !valid {
		return StreetPreflop, false
	}

	if newStreet == h.currentHand.CurrentStreet {
		return StreetPreflop, false
	}

	h.currentHand.CurrentStreet = newStreet
	h.previousBoard = copyCards(board)
	h.logger.Debug().
		Uint32("handNo", h.currentHand.HandNum).
		Str("street", newStreet.String()).
		Msg("Street changed")
	return newStreet, true
}

// UpdateHandState applies the frame's raw field values to the current
// hand. No-op when no hand is being tracked or the hand was completed.
func (h *HandTracker) UpdateHandState(potSize float64, board []string, seats map[uint32]SeatInfo) {
	if h.currentHand == nil || h.currentHand.IsComplete {
		return
	}

	h.currentHand.PotSize = util.ClampNonNegative(potSize)
	h.currentHand.CommunityCards = copyCards(board)
	h.currentHand.Seats = copySeats(seats)

	h.previousPot = potSize

	h.DetectStreetChange(board)
}

// EndCurrentHand marks the current hand complete without starting a new
// one. Used at session end.
func (h *HandTracker) EndCurrentHand() {
	if h.currentHand != nil && h.currentHand.MarkComplete() {
		util.Metrics.HandCompleted()
	}
}

// Reset clears all tracker state, including the hand counter.
func (h *HandTracker) Reset() {
	h.currentHand = nil
	h.previousPot = 0
	h.previousDealer = -1
	h.previousBoard = nil
	h.handCounter = 0
}

// DetectActions synthesizes PlayerActions by diffing two causally
// adjacent retained snapshots. There is no direct "player acted"
// signal; a positive bet delta or stack delta is the only evidence.
// The action text region is read lazily through readActionText, only
// for seats where a delta fired.
//
// handFresh marks a just-started preflop hand with no actions yet: a
// positive bet delta with no recognizable action text on a fresh hand
// is a blind post, which must stay involuntary or it would inflate
// VPIP.
func DetectActions(
	prev *TableSnapshot,
	curr *TableSnapshot,
	street Street,
	handFresh bool,
	recognizer *ActionRecognizer,
	readActionText func(seatNo uint32) string) []*PlayerAction {

	if prev == nil || curr == nil {
		return nil
	}

	var actions []*PlayerAction
	blindsInferred := 0

	for _, seatNo := range sortedSeatNumbers(curr.Seats) {
		currSeat := curr.Seats[seatNo]
		if !currSeat.IsOccupied {
			continue
		}
		prevSeat, exists := prev.Seats[seatNo]
		if !exists || !prevSeat.IsOccupied {
			continue
		}

		betDelta := currSeat.CurrentBet - prevSeat.CurrentBet
		stackDelta := prevSeat.StackSize - currSeat.StackSize

		if util.Greater(betDelta, 0) || util.Greater(stackDelta, 0) {
			text := readActionText(seatNo)
			actionType, recognized, parsedAmount := recognizer.ParseActionWithAmount(text)

			amount := betDelta
			if stackDelta > amount {
				amount = stackDelta
			}
			amount = util.ClampNonNegative(amount)
			if util.NearlyEqual(amount, 0) {
				amount = parsedAmount
			}

			if !recognized {
				if handFresh && blindsInferred < 2 {
					// Money moved before anyone could act: blinds.
					actionType = ActionPostBlind
					blindsInferred++
				} else {
					actionType = classifyByDeltas(prevSeat, currSeat)
				}
			}

			actions = append(actions, &PlayerAction{
				PlayerName:  currSeat.PlayerName,
				SeatNo:      seatNo,
				ActionType:  actionType,
				Amount:      amount,
				Street:      street,
				Timestamp:   curr.Timestamp,
				IsVoluntary: IsVoluntaryAction(actionType),
			})
			continue
		}

		// No chips moved. Cards disappearing mid-hand is a fold; any
		// other zero-delta action (a check) is only visible through
		// the action text, which is not worth an OCR call per seat
		// per frame.
		if prevSeat.HasCards && !currSeat.HasCards && !currSeat.IsSittingOut {
			text := readActionText(seatNo)
			actionType, recognized := recognizer.RecognizeAction(text)
			if !recognized || actionType == ActionFold {
				actions = append(actions, &PlayerAction{
					PlayerName:  currSeat.PlayerName,
					SeatNo:      seatNo,
					ActionType:  ActionFold,
					Amount:      0,
					Street:      street,
					Timestamp:   curr.Timestamp,
					IsVoluntary: true,
				})
			}
		}
	}

	return actions
}

// classifyByDeltas guesses the action type when the action text was
// unreadable. Best effort: a stack at zero is an all-in; a bet opening
// from zero is a bet; anything else is treated as a call.
func classifyByDeltas(prevSeat SeatInfo, currSeat SeatInfo) ActionType {
	if util.NearlyEqual(currSeat.StackSize, 0) {
		return ActionAllIn
	}
	if util.NearlyEqual(prevSeat.CurrentBet, 0) && util.Greater(currSeat.CurrentBet, 0) {
		return ActionBet
	}
	return ActionCall
}
