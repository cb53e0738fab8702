package ocr

import (
	"testing"
)

func TestIsValidPlayerName(t *testing.T) {
	testCases := []struct {
		name     string
		expected bool
	}{
		{"Alice", true},
		{"bob_99", true},
		{"  Carol  ", true},
		{"xX_hero_Xx", true},
		{"", false},
		{"a", false},
		{"   ", false},
		{"12345", false},
		{"....", false},
		{"$,.", false},
		{"--..$$..--a", false},
	}

	for i, tc := range testCases {
		if got := IsValidPlayerName(tc.name); got != tc.expected {
			t.Errorf("Test case %d name [%s]: expected %v, got %v", i, tc.name, tc.expected, got)
		}
	}
}
