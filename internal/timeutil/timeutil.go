package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock math over "HH:MM" strings. Inputs are assumed well-formed; callers
// validate upstream.

func ToMinutes(clock string) int {
	parts := strings.SplitN(clock, ":", 2)
	hours, _ := strconv.Atoi(parts[0])
	minutes := 0
	if len(parts) == 2 {
		minutes, _ = strconv.Atoi(parts[1])
	}
	return hours*60 + minutes
}

func ToClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func AddMinutes(clock string, minutes int) string {
	return ToClock(ToMinutes(clock) + minutes)
}

// IsBetween reports start <= t < end (half-open).
func IsBetween(t, start, end string) bool {
	m := ToMinutes(t)
	return m >= ToMinutes(start) && m < ToMinutes(end)
}

func RangeValid(start, end string) bool {
	return ToMinutes(start) < ToMinutes(end)
}

// DateKey formats a date as YYYY-MM-DD, the key bookings are grouped by.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// DateTimeKey joins a date key and a clock time.
func DateTimeKey(dateKey, clock string) string {
	return dateKey + "T" + clock
}

func IsToday(dateKey string, now time.Time) bool {
	return dateKey == DateKey(now)
}

// IsPast reports whether the date+time moment is strictly before now.
// Malformed input counts as past so broken rows age out of the active set.
func IsPast(dateKey, clock string, now time.Time) bool {
	t, err := time.ParseInLocation("2006-01-02T15:04", DateTimeKey(dateKey, clock), now.Location())
	if err != nil {
		return true
	}
	return t.Before(now)
}
