package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToMinutesAndBack(t *testing.T) {
	cases := []struct {
		clock   string
		minutes int
	}{
		{"00:00", 0},
		{"09:00", 540},
		{"09:05", 545},
		{"13:30", 810},
		{"21:00", 1260},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.minutes, ToMinutes(tc.clock), tc.clock)
		assert.Equal(t, tc.clock, ToClock(tc.minutes), tc.clock)
	}
}

func TestToClockZeroPads(t *testing.T) {
	assert.Equal(t, "09:05", ToClock(545))
	assert.Equal(t, "00:07", ToClock(7))
}

func TestAddMinutes(t *testing.T) {
	assert.Equal(t, "10:00", AddMinutes("09:00", 60))
	assert.Equal(t, "09:45", AddMinutes("09:15", 30))
	assert.Equal(t, "14:00", AddMinutes("13:30", 30))
}

func TestIsBetweenHalfOpen(t *testing.T) {
	assert.True(t, IsBetween("13:00", "13:00", "14:00"), "start boundary is inside")
	assert.True(t, IsBetween("13:59", "13:00", "14:00"))
	assert.False(t, IsBetween("14:00", "13:00", "14:00"), "end boundary is outside")
	assert.False(t, IsBetween("12:59", "13:00", "14:00"))
}

func TestRangeValid(t *testing.T) {
	assert.True(t, RangeValid("09:00", "21:00"))
	assert.False(t, RangeValid("21:00", "09:00"))
	assert.False(t, RangeValid("09:00", "09:00"))
}

func TestDateKeys(t *testing.T) {
	now := time.Date(2025, 3, 7, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-07", DateKey(now))
	assert.Equal(t, "2025-03-07T10:30", DateTimeKey("2025-03-07", "10:30"))
	assert.True(t, IsToday("2025-03-07", now))
	assert.False(t, IsToday("2025-03-08", now))
}

func TestIsPast(t *testing.T) {
	now := time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC)

	assert.True(t, IsPast("2025-03-07", "11:00", now))
	assert.False(t, IsPast("2025-03-07", "12:00", now), "exact now is not past")
	assert.False(t, IsPast("2025-03-07", "13:00", now))
	assert.True(t, IsPast("2025-03-06", "23:59", now))
	assert.True(t, IsPast("not-a-date", "11:00", now), "malformed rows age out")
}
