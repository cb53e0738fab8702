package screen

import "fmt"

// Region coordinates are percentages of the table window so the same
// map works at any window size. They are hand-tuned for the standard
// table theme and are configuration data, not logic.

type TableSize int

const (
	TableSizeSixMax  TableSize = 6
	TableSizeNineMax TableSize = 9
)

func (t TableSize) NumSeats() uint32 {
	return uint32(t)
}

func (t TableSize) String() string {
	switch t {
	case TableSizeSixMax:
		return "6-max"
	case TableSizeNineMax:
		return "9-max"
	default:
		return fmt.Sprintf("%d-max", int(t))
	}
}

type RegionCoords struct {
	XPct      float64
	YPct      float64
	WidthPct  float64
	HeightPct float64
}

// ToAbsolute converts percentage coords to a pixel rectangle.
// Truncation, not rounding, keeps golden outputs bit-stable.
func (r RegionCoords) ToAbsolute(tableWidth int, tableHeight int) (int, int, int, int) {
	x := int(r.XPct * float64(tableWidth))
	y := int(r.YPct * float64(tableHeight))
	width := int(r.WidthPct * float64(tableWidth))
	height := int(r.HeightPct * float64(tableHeight))
	return x, y, width, height
}

// SeatRegions bundles the five readable regions of one seat.
type SeatRegions struct {
	PlayerName RegionCoords
	StackSize  RegionCoords
	BetAmount  RegionCoords
	ActionText RegionCoords
	Cards      RegionCoords
}

// TableRegions are the table-level regions shared by all seats: the pot
// text, the five board card slots, and one dealer-button marker zone
// per seat.
type TableRegions struct {
	Pot           RegionCoords
	Board         [5]RegionCoords
	DealerMarkers []RegionCoords
}

var seatRegionMaps = map[TableSize]map[uint32]SeatRegions{
	TableSizeSixMax: {
		0: {
			PlayerName: RegionCoords{0.35, 0.75, 0.30, 0.05},
			StackSize:  RegionCoords{0.35, 0.80, 0.30, 0.05},
			BetAmount:  RegionCoords{0.40, 0.65, 0.20, 0.05},
			ActionText: RegionCoords{0.35, 0.70, 0.30, 0.05},
			Cards:      RegionCoords{0.40, 0.60, 0.20, 0.10},
		},
		1: {
			PlayerName: RegionCoords{0.68, 0.60, 0.28, 0.05},
			StackSize:  RegionCoords{0.68, 0.65, 0.28, 0.05},
			BetAmount:  RegionCoords{0.55, 0.50, 0.20, 0.05},
			ActionText: RegionCoords{0.68, 0.55, 0.28, 0.05},
			Cards:      RegionCoords{0.65, 0.45, 0.20, 0.10},
		},
		2: {
			PlayerName: RegionCoords{0.68, 0.25, 0.28, 0.05},
			StackSize:  RegionCoords{0.68, 0.30, 0.28, 0.05},
			BetAmount:  RegionCoords{0.55, 0.35, 0.20, 0.05},
			ActionText: RegionCoords{0.68, 0.20, 0.28, 0.05},
			Cards:      RegionCoords{0.65, 0.38, 0.20, 0.10},
		},
		3: {
			PlayerName: RegionCoords{0.35, 0.08, 0.30, 0.05},
			StackSize:  RegionCoords{0.35, 0.13, 0.30, 0.05},
			BetAmount:  RegionCoords{0.40, 0.25, 0.20, 0.05},
			ActionText: RegionCoords{0.35, 0.18, 0.30, 0.05},
			Cards:      RegionCoords{0.40, 0.28, 0.20, 0.10},
		},
		4: {
			PlayerName: RegionCoords{0.04, 0.25, 0.28, 0.05},
			StackSize:  RegionCoords{0.04, 0.30, 0.28, 0.05},
			BetAmount:  RegionCoords{0.25, 0.35, 0.20, 0.05},
			ActionText: RegionCoords{0.04, 0.20, 0.28, 0.05},
			Cards:      RegionCoords{0.15, 0.38, 0.20, 0.10},
		},
		5: {
			PlayerName: RegionCoords{0.04, 0.60, 0.28, 0.05},
			StackSize:  RegionCoords{0.04, 0.65, 0.28, 0.05},
			BetAmount:  RegionCoords{0.25, 0.50, 0.20, 0.05},
			ActionText: RegionCoords{0.04, 0.55, 0.28, 0.05},
			Cards:      RegionCoords{0.15, 0.45, 0.20, 0.10},
		},
	},
	TableSizeNineMax: {
		0: {
			PlayerName: RegionCoords{0.36, 0.78, 0.28, 0.04},
			StackSize:  RegionCoords{0.36, 0.82, 0.28, 0.04},
			BetAmount:  RegionCoords{0.40, 0.68, 0.20, 0.04},
			ActionText: RegionCoords{0.36, 0.73, 0.28, 0.04},
			Cards:      RegionCoords{0.40, 0.63, 0.20, 0.09},
		},
		1: {
			PlayerName: RegionCoords{0.58, 0.68, 0.26, 0.04},
			StackSize:  RegionCoords{0.58, 0.72, 0.26, 0.04},
			BetAmount:  RegionCoords{0.50, 0.58, 0.18, 0.04},
			ActionText: RegionCoords{0.58, 0.63, 0.26, 0.04},
			Cards:      RegionCoords{0.55, 0.53, 0.18, 0.09},
		},
		2: {
			PlayerName: RegionCoords{0.72, 0.52, 0.24, 0.04},
			StackSize:  RegionCoords{0.72, 0.56, 0.24, 0.04},
			BetAmount:  RegionCoords{0.58, 0.48, 0.18, 0.04},
			ActionText: RegionCoords{0.72, 0.47, 0.24, 0.04},
			Cards:      RegionCoords{0.65, 0.43, 0.18, 0.09},
		},
		3: {
			PlayerName: RegionCoords{0.72, 0.32, 0.24, 0.04},
			StackSize:  RegionCoords{0.72, 0.36, 0.24, 0.04},
			BetAmount:  RegionCoords{0.58, 0.40, 0.18, 0.04},
			ActionText: RegionCoords{0.72, 0.27, 0.24, 0.04},
			Cards:      RegionCoords{0.65, 0.42, 0.18, 0.09},
		},
		4: {
			PlayerName: RegionCoords{0.58, 0.16, 0.26, 0.04},
			StackSize:  RegionCoords{0.58, 0.20, 0.26, 0.04},
			BetAmount:  RegionCoords{0.50, 0.30, 0.18, 0.04},
			ActionText: RegionCoords{0.58, 0.11, 0.26, 0.04},
			Cards:      RegionCoords{0.55, 0.33, 0.18, 0.09},
		},
		5: {
			PlayerName: RegionCoords{0.36, 0.08, 0.28, 0.04},
			StackSize:  RegionCoords{0.36, 0.12, 0.28, 0.04},
			BetAmount:  RegionCoords{0.40, 0.22, 0.20, 0.04},
			ActionText: RegionCoords{0.36, 0.04, 0.28, 0.04},
			Cards:      RegionCoords{0.40, 0.25, 0.20, 0.09},
		},
		6: {
			PlayerName: RegionCoords{0.16, 0.16, 0.26, 0.04},
			StackSize:  RegionCoords{0.16, 0.20, 0.26, 0.04},
			BetAmount:  RegionCoords{0.32, 0.30, 0.18, 0.04},
			ActionText: RegionCoords{0.16, 0.11, 0.26, 0.04},
			Cards:      RegionCoords{0.27, 0.33, 0.18, 0.09},
		},
		7: {
			PlayerName: RegionCoords{0.04, 0.32, 0.24, 0.04},
			StackSize:  RegionCoords{0.04, 0.36, 0.24, 0.04},
			BetAmount:  RegionCoords{0.24, 0.40, 0.18, 0.04},
			ActionText: RegionCoords{0.04, 0.27, 0.24, 0.04},
			Cards:      RegionCoords{0.17, 0.42, 0.18, 0.09},
		},
		8: {
			PlayerName: RegionCoords{0.16, 0.68, 0.26, 0.04},
			StackSize:  RegionCoords{0.16, 0.72, 0.26, 0.04},
			BetAmount:  RegionCoords{0.32, 0.58, 0.18, 0.04},
			ActionText: RegionCoords{0.16, 0.63, 0.26, 0.04},
			Cards:      RegionCoords{0.27, 0.53, 0.18, 0.09},
		},
	},
}

var tableRegionMaps = map[TableSize]TableRegions{
	TableSizeSixMax: {
		Pot: RegionCoords{0.40, 0.40, 0.20, 0.05},
		Board: [5]RegionCoords{
			{0.31, 0.45, 0.07, 0.10},
			{0.385, 0.45, 0.07, 0.10},
			{0.46, 0.45, 0.07, 0.10},
			{0.535, 0.45, 0.07, 0.10},
			{0.61, 0.45, 0.07, 0.10},
		},
		DealerMarkers: []RegionCoords{
			{0.37, 0.66, 0.04, 0.05},
			{0.62, 0.54, 0.04, 0.05},
			{0.62, 0.32, 0.04, 0.05},
			{0.37, 0.22, 0.04, 0.05},
			{0.22, 0.32, 0.04, 0.05},
			{0.22, 0.54, 0.04, 0.05},
		},
	},
	TableSizeNineMax: {
		Pot: RegionCoords{0.41, 0.42, 0.18, 0.04},
		Board: [5]RegionCoords{
			{0.32, 0.47, 0.065, 0.09},
			{0.39, 0.47, 0.065, 0.09},
			{0.46, 0.47, 0.065, 0.09},
			{0.53, 0.47, 0.065, 0.09},
			{0.60, 0.47, 0.065, 0.09},
		},
		DealerMarkers: []RegionCoords{
			{0.38, 0.70, 0.035, 0.04},
			{0.50, 0.62, 0.035, 0.04},
			{0.60, 0.50, 0.035, 0.04},
			{0.60, 0.38, 0.035, 0.04},
			{0.50, 0.27, 0.035, 0.04},
			{0.38, 0.20, 0.035, 0.04},
			{0.30, 0.27, 0.035, 0.04},
			{0.22, 0.38, 0.035, 0.04},
			{0.30, 0.62, 0.035, 0.04},
		},
	},
}

func GetSeatRegions(tableSize TableSize, seatNo uint32) (SeatRegions, error) {
	seatMap, exists := seatRegionMaps[tableSize]
	if !exists {
		return SeatRegions{}, UnsupportedTableSizeError{TableSize: tableSize}
	}
	regions, exists := seatMap[seatNo]
	if !exists {
		return SeatRegions{}, InvalidSeatError{TableSize: tableSize, SeatNo: seatNo}
	}
	return regions, nil
}

func GetTableRegions(tableSize TableSize) (TableRegions, error) {
	regions, exists := tableRegionMaps[tableSize]
	if !exists {
		return TableRegions{}, UnsupportedTableSizeError{TableSize: tableSize}
	}
	return regions, nil
}

func validRect(r RegionCoords) bool {
	if r.XPct < 0 || r.YPct < 0 || r.WidthPct <= 0 || r.HeightPct <= 0 {
		return false
	}
	return r.XPct+r.WidthPct <= 1.0 && r.YPct+r.HeightPct <= 1.0
}

// ValidateRegionMaps verifies that every supported table size carries a
// complete region table. An incomplete table is a configuration error
// caught at startup, not at runtime.
func ValidateRegionMaps() error {
	for _, tableSize := range []TableSize{TableSizeSixMax, TableSizeNineMax} {
		seatMap, exists := seatRegionMaps[tableSize]
		if !exists {
			return RegionConfigError{Msg: fmt.Sprintf("No seat region map for %s", tableSize)}
		}
		for seatNo := uint32(0); seatNo < tableSize.NumSeats(); seatNo++ {
			regions, exists := seatMap[seatNo]
			if !exists {
				return RegionConfigError{Msg: fmt.Sprintf("Missing seat %d in %s region map", seatNo, tableSize)}
			}
			for _, r := range []RegionCoords{regions.PlayerName, regions.StackSize, regions.BetAmount, regions.ActionText, regions.Cards} {
				if !validRect(r) {
					return RegionConfigError{Msg: fmt.Sprintf("Region out of bounds for seat %d in %s map", seatNo, tableSize)}
				}
			}
		}

		tableRegions, exists := tableRegionMaps[tableSize]
		if !exists {
			return RegionConfigError{Msg: fmt.Sprintf("No table region map for %s", tableSize)}
		}
		if !validRect(tableRegions.Pot) {
			return RegionConfigError{Msg: fmt.Sprintf("Pot region out of bounds in %s map", tableSize)}
		}
		for i, r := range tableRegions.Board {
			if !validRect(r) {
				return RegionConfigError{Msg: fmt.Sprintf("Board slot %d out of bounds in %s map", i, tableSize)}
			}
		}
		if len(tableRegions.DealerMarkers) != int(tableSize.NumSeats()) {
			return RegionConfigError{Msg: fmt.Sprintf("Expected %d dealer markers in %s map, found %d", tableSize.NumSeats(), tableSize, len(tableRegions.DealerMarkers))}
		}
		for i, r := range tableRegions.DealerMarkers {
			if !validRect(r) {
				return RegionConfigError{Msg: fmt.Sprintf("Dealer marker %d out of bounds in %s map", i, tableSize)}
			}
		}
	}
	return nil
}
