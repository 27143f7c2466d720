package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	parsed, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	require.Equal(t, TimeOfDay(570), parsed)

	parsed, err = ParseTimeOfDay("00:00")
	require.NoError(t, err)
	require.Equal(t, TimeOfDay(0), parsed)

	_, err = ParseTimeOfDay("25:00")
	require.Error(t, err)

	_, err = ParseTimeOfDay("9am")
	require.Error(t, err)
}

func TestTimeOfDayString(t *testing.T) {
	require.Equal(t, "09:05", TimeOfDay(545).String())
	require.Equal(t, "23:59", TimeOfDay(23*60+59).String())
}

func TestTimeOfDayJSON(t *testing.T) {
	data, err := json.Marshal(TimeOfDay(600))
	require.NoError(t, err)
	require.Equal(t, `"10:00"`, string(data))

	var parsed TimeOfDay
	require.NoError(t, json.Unmarshal([]byte(`"18:45"`), &parsed))
	require.Equal(t, TimeOfDay(18*60+45), parsed)

	require.Error(t, json.Unmarshal([]byte(`"late"`), &parsed))
}

func TestSlotOverlaps(t *testing.T) {
	slot := &Slot{StartTime: 540, EndTime: 600} // 09:00-10:00

	tests := []struct {
		name    string
		start   TimeOfDay
		end     TimeOfDay
		overlap bool
	}{
		{"identical", 540, 600, true},
		{"starts inside", 570, 630, true},
		{"ends inside", 510, 570, true},
		{"contains", 500, 660, true},
		{"contained", 550, 590, true},
		{"adjacent after", 600, 660, false},
		{"adjacent before", 480, 540, false},
		{"disjoint", 700, 760, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.overlap, slot.Overlaps(tc.start, tc.end))
		})
	}
}
