package servicedate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateUsesFixedZone(t *testing.T) {
	// 06:30 UTC is still the previous evening on the west coast
	instant := time.Date(2026, 8, 28, 6, 30, 0, 0, time.UTC)

	assert.Equal(t, "20260827", Date(instant))
}

func TestDateStableAcrossHostZones(t *testing.T) {
	instant := time.Date(2026, 8, 28, 6, 30, 0, 0, time.UTC)

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	assert.Equal(t, Date(instant), Date(instant.In(tokyo)))
}

func TestParseRoundTrip(t *testing.T) {
	date, err := Parse("20260828")
	require.NoError(t, err)

	assert.Equal(t, "20260828", Date(date))
	assert.Equal(t, "friday", Weekday(date))
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, value := range []string{"2026-08-28", "garbage", "202608", ""} {
		_, err := Parse(value)
		assert.Error(t, err, value)
	}
}

func TestTimeToMinutes(t *testing.T) {
	testCases := []struct {
		clock    string
		expected int
	}{
		{"08:00", 480},
		{"08:00:30", 480},
		{"00:05", 5},
		{"23:50:00", 1430},
		// post-midnight service keeps hours above 24
		{"25:15:00", 1515},
		{"", -1},
		{"8", -1},
		{"ab:cd", -1},
	}

	for _, testCase := range testCases {
		assert.Equal(t, testCase.expected, TimeToMinutes(testCase.clock), testCase.clock)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "08:00", FormatClock("08:00:00"))
	assert.Equal(t, "25:15", FormatClock("25:15:00"))
	assert.Equal(t, "08:00", FormatClock("08:00"))
	assert.Equal(t, "", FormatClock(""))
}

func TestShiftClock(t *testing.T) {
	// 15 minutes past 23:50 rolls over midnight
	assert.Equal(t, "00:05", ShiftClock("23:50:00", 900))
	assert.Equal(t, "08:05", ShiftClock("08:00:00", 300))
	assert.Equal(t, "07:58", ShiftClock("08:00:00", -120))
	// a post-midnight scheduled time wraps onto the civil day
	assert.Equal(t, "01:20", ShiftClock("25:10:00", 600))
	assert.Equal(t, "", ShiftClock("nonsense", 300))
}

func TestClockTime(t *testing.T) {
	instant := time.Date(2026, 8, 28, 7, 5, 0, 0, time.UTC)

	assert.Equal(t, "00:05", ClockTime(instant))
}
