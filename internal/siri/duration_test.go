package siri

import "testing"

func TestParseDelayMinutes(t *testing.T) {
	tests := []struct {
		token    string
		expected float64
	}{
		// Minutes and seconds
		{"PT1M30S", 1.5},
		{"PT3M30S", 3.5},
		{"PT10M0S", 10},
		{"PT0M45S", 0.75},

		// Minutes only
		{"PT2M", 2},
		{"PT15M", 15},

		// Seconds only
		{"PT30S", 0.5},
		{"PT90S", 1.5},
		{"PT0S", 0},

		// Early departures are never counted as delay
		{"PT-1M30S", 0},
		{"PT-30S", 0},

		// Malformed tokens degrade to 0, never error
		{"PT", 0},
		{"PTM", 0},
		{"PTMS", 0},
		{"PTxMyS", 0},
		{"", 0},
		{"garbage", 0},

		// Partial garbage: the bad part degrades, the rest still parses
		{"PTxM30S", 0.5},
		{"PT2MxS", 2},
	}

	for _, tc := range tests {
		t.Run(tc.token, func(t *testing.T) {
			result := ParseDelayMinutes(tc.token)
			if result != tc.expected {
				t.Errorf("ParseDelayMinutes(%q) = %v, expected %v", tc.token, result, tc.expected)
			}
		})
	}
}
