package screen

import (
	"testing"
)

func TestValidateRegionMaps(t *testing.T) {
	if err := ValidateRegionMaps(); err != nil {
		t.Fatalf("Region maps failed validation: %v", err)
	}
}

func TestGetSeatRegionsCompleteness(t *testing.T) {
	for _, tableSize := range []TableSize{TableSizeSixMax, TableSizeNineMax} {
		for seatNo := uint32(0); seatNo < tableSize.NumSeats(); seatNo++ {
			regions, err := GetSeatRegions(tableSize, seatNo)
			if err != nil {
				t.Fatalf("%s seat %d: %v", tableSize, seatNo, err)
			}
			for _, r := range []RegionCoords{regions.PlayerName, regions.StackSize, regions.BetAmount, regions.ActionText, regions.Cards} {
				if r.WidthPct <= 0 || r.HeightPct <= 0 {
					t.Errorf("%s seat %d has an empty region", tableSize, seatNo)
				}
				if r.XPct+r.WidthPct > 1.0 || r.YPct+r.HeightPct > 1.0 {
					t.Errorf("%s seat %d region exceeds table bounds", tableSize, seatNo)
				}
			}
		}
	}
}

func TestGetSeatRegionsInvalidSeat(t *testing.T) {
	_, err := GetSeatRegions(TableSizeSixMax, 6)
	if err == nil {
		t.Fatal("Expected error for seat 6 on a 6-max table")
	}
	if _, ok := err.(InvalidSeatError); !ok {
		t.Fatalf("Expected InvalidSeatError, got %T", err)
	}
}

func TestGetSeatRegionsUnsupportedSize(t *testing.T) {
	_, err := GetSeatRegions(TableSize(2), 0)
	if err == nil {
		t.Fatal("Expected error for 2-max table")
	}
	if _, ok := err.(UnsupportedTableSizeError); !ok {
		t.Fatalf("Expected UnsupportedTableSizeError, got %T", err)
	}
}

func TestToAbsoluteTruncates(t *testing.T) {
	testCases := []struct {
		region  RegionCoords
		tableW  int
		tableH  int
		expectX int
		expectY int
		expectW int
		expectH int
	}{
		{RegionCoords{0.35, 0.75, 0.30, 0.05}, 800, 600, 280, 450, 240, 30},
		{RegionCoords{0.35, 0.75, 0.30, 0.05}, 801, 601, 280, 450, 240, 30},
		{RegionCoords{0.33, 0.33, 0.33, 0.33}, 100, 100, 33, 33, 33, 33},
		{RegionCoords{0.999, 0.0, 0.001, 1.0}, 1000, 1000, 999, 0, 1, 1000},
	}

	for i, tc := range testCases {
		x, y, w, h := tc.region.ToAbsolute(tc.tableW, tc.tableH)
		if x != tc.expectX || y != tc.expectY || w != tc.expectW || h != tc.expectH {
			t.Errorf("Test case %d expected (%d,%d,%d,%d), got (%d,%d,%d,%d)",
				i, tc.expectX, tc.expectY, tc.expectW, tc.expectH, x, y, w, h)
		}
	}
}

func TestToAbsoluteScalesLinearly(t *testing.T) {
	r := RegionCoords{0.25, 0.5, 0.125, 0.25}
	x1, y1, w1, h1 := r.ToAbsolute(800, 600)
	x2, y2, w2, h2 := r.ToAbsolute(1600, 1200)
	if x2 != 2*x1 || y2 != 2*y1 || w2 != 2*w1 || h2 != 2*h1 {
		t.Errorf("Doubling dimensions did not double coordinates: (%d,%d,%d,%d) vs (%d,%d,%d,%d)",
			x1, y1, w1, h1, x2, y2, w2, h2)
	}
}
