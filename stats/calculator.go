package stats

// PlayerStats are the derived percentages shown on the HUD.
//
// VPIP: percent of hands where the player voluntarily put money in
// preflop. PFR: percent of hands with a preflop raise. AF: postflop
// (bets + raises) / calls. Reliable flips on once the sample size is
// large enough for the percentages to mean anything.
type PlayerStats struct {
	PlayerName        string  `json:"playerName"`
	HandsSeen         int64   `json:"handsSeen"`
	VPIPPercent       float64 `json:"vpipPercent"`
	PFRPercent        float64 `json:"pfrPercent"`
	AggressionFactor  float64 `json:"aggressionFactor"`
	ThreeBetPercent   float64 `json:"threeBetPercent"`
	FoldToCBetPercent float64 `json:"foldToCBetPercent"`
	Reliable          bool    `json:"reliable"`
}

// Compute derives the display stats from raw counters. Every ratio
// with a zero denominator comes out 0 rather than NaN.
func Compute(playerName string, c Counters, minSampleSize int) PlayerStats {
	stats := PlayerStats{
		PlayerName: playerName,
		HandsSeen:  c.TotalHands,
		Reliable:   c.TotalHands >= int64(minSampleSize),
	}

	if c.TotalHands > 0 {
		stats.VPIPPercent = percent(c.VPIPHands, c.TotalHands)
		stats.PFRPercent = percent(c.PFRHands, c.TotalHands)
	}

	aggressive := c.PostflopBets + c.PostflopRaises
	if c.PostflopCalls > 0 {
		stats.AggressionFactor = float64(aggressive) / float64(c.PostflopCalls)
	} else {
		// No calls at all; report the raw aggressive action count so a
		// pure aggressor doesn't show as 0.
		stats.AggressionFactor = float64(aggressive)
	}

	if c.ThreeBetChances > 0 {
		stats.ThreeBetPercent = percent(c.ThreeBetsMade, c.ThreeBetChances)
	}
	if c.FoldToCBetChances > 0 {
		stats.FoldToCBetPercent = percent(c.FoldToCBetsMade, c.FoldToCBetChances)
	}

	return stats
}

func percent(numerator int64, denominator int64) float64 {
	return float64(numerator) / float64(denominator) * 100.0
}
