package store

import (
	jsoniter "github.com/json-iterator/go"

	"pokerlens.com/tracker/tracker"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func playersJSON(playerNames []string) string {
	if playerNames == nil {
		playerNames = []string{}
	}
	data, err := json.Marshal(playerNames)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func parsePlayersJSON(data string) []string {
	var players []string
	err := json.UnmarshalFromString(data, &players)
	if err != nil {
		return nil
	}
	return players
}

func streetFromString(s string) tracker.Street {
	switch s {
	case "flop":
		return tracker.StreetFlop
	case "turn":
		return tracker.StreetTurn
	case "river":
		return tracker.StreetRiver
	default:
		return tracker.StreetPreflop
	}
}
