package stats

import (
	"pokerlens.com/tracker/tracker"
)

// Counters are the raw per-player tallies that every derived stat is
// computed from. They only ever increase, so they can be kept as a
// counter hash and merged across sessions without reprocessing hands.
type Counters struct {
	TotalHands        int64 `redis:"totalHands"`
	VPIPHands         int64 `redis:"vpipHands"`
	PFRHands          int64 `redis:"pfrHands"`
	PostflopBets      int64 `redis:"postflopBets"`
	PostflopRaises    int64 `redis:"postflopRaises"`
	PostflopCalls     int64 `redis:"postflopCalls"`
	ThreeBetChances   int64 `redis:"threeBetChances"`
	ThreeBetsMade     int64 `redis:"threeBetsMade"`
	FoldToCBetChances int64 `redis:"foldToCBetChances"`
	FoldToCBetsMade   int64 `redis:"foldToCBetsMade"`
}

func (c *Counters) Add(other Counters) {
	c.TotalHands += other.TotalHands
	c.VPIPHands += other.VPIPHands
	c.PFRHands += other.PFRHands
	c.PostflopBets += other.PostflopBets
	c.PostflopRaises += other.PostflopRaises
	c.PostflopCalls += other.PostflopCalls
	c.ThreeBetChances += other.ThreeBetChances
	c.ThreeBetsMade += other.ThreeBetsMade
	c.FoldToCBetChances += other.FoldToCBetChances
	c.FoldToCBetsMade += other.FoldToCBetsMade
}

func isRaise(actionType tracker.ActionType) bool {
	return actionType == tracker.ActionRaise || actionType == tracker.ActionAllIn
}

// HandCounters computes each player's counter deltas for one completed
// hand. players lists everyone dealt in; they get a TotalHands tick
// even if they never acted.
func HandCounters(players []string, actions []*tracker.PlayerAction) map[string]Counters {
	counters := make(map[string]Counters, len(players))
	for _, player := range players {
		counters[player] = Counters{TotalHands: 1}
	}

	apply := func(player string, update func(c *Counters)) {
		c, exists := counters[player]
		if !exists {
			// Acted but missed from the dealt list; a misread name
			// region can do that.
			c = Counters{TotalHands: 1}
		}
		update(&c)
		counters[player] = c
	}

	vpipCounted := make(map[string]bool)
	pfrCounted := make(map[string]bool)
	threeBetCounted := make(map[string]bool)
	preflopRaises := 0

	for _, action := range actions {
		if action.Street != tracker.StreetPreflop {
			continue
		}

		if preflopRaises == 1 && !threeBetCounted[action.PlayerName] && action.IsVoluntary {
			// First decision while facing exactly one raise.
			threeBetCounted[action.PlayerName] = true
			made := isRaise(action.ActionType)
			apply(action.PlayerName, func(c *Counters) {
				c.ThreeBetChances++
				if made {
					c.ThreeBetsMade++
				}
			})
		}

		switch action.ActionType {
		case tracker.ActionCall, tracker.ActionBet, tracker.ActionRaise, tracker.ActionAllIn:
			if action.IsVoluntary && !vpipCounted[action.PlayerName] {
				vpipCounted[action.PlayerName] = true
				apply(action.PlayerName, func(c *Counters) { c.VPIPHands++ })
			}
		}

		if isRaise(action.ActionType) {
			if !pfrCounted[action.PlayerName] {
				pfrCounted[action.PlayerName] = true
				apply(action.PlayerName, func(c *Counters) { c.PFRHands++ })
			}
			preflopRaises++
		}
	}

	for _, action := range actions {
		if action.Street == tracker.StreetPreflop {
			continue
		}
		switch action.ActionType {
		case tracker.ActionBet:
			apply(action.PlayerName, func(c *Counters) { c.PostflopBets++ })
		case tracker.ActionRaise, tracker.ActionAllIn:
			apply(action.PlayerName, func(c *Counters) { c.PostflopRaises++ })
		case tracker.ActionCall:
			apply(action.PlayerName, func(c *Counters) { c.PostflopCalls++ })
		}
	}

	applyFoldToCBet(counters, actions, apply)

	return counters
}

// applyFoldToCBet finds the continuation bet (the last preflop raiser
// betting first on the flop) and scores each other player's first
// response to it.
func applyFoldToCBet(counters map[string]Counters, actions []*tracker.PlayerAction, apply func(string, func(*Counters))) {
	aggressor := ""
	for _, action := range actions {
		if action.Street == tracker.StreetPreflop && isRaise(action.ActionType) {
			aggressor = action.PlayerName
		}
	}
	if aggressor == "" {
		return
	}

	cbetSeen := false
	responded := make(map[string]bool)
	for _, action := range actions {
		if action.Street != tracker.StreetFlop {
			continue
		}
		if !cbetSeen {
			if action.PlayerName == aggressor && action.ActionType == tracker.ActionBet {
				cbetSeen = true
			} else if action.ActionType == tracker.ActionBet {
				// Someone else bet into the aggressor first; no c-bet
				// this hand.
				return
			}
			continue
		}
		if action.PlayerName == aggressor || responded[action.PlayerName] {
			continue
		}
		responded[action.PlayerName] = true
		folded := action.ActionType == tracker.ActionFold
		apply(action.PlayerName, func(c *Counters) {
			c.FoldToCBetChances++
			if folded {
				c.FoldToCBetsMade++
			}
		})
	}
}
