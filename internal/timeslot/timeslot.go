// Package timeslot is the pure wall-clock interval arithmetic shared by
// every conflict check. A slot is a calendar date plus an "HH:mm" start
// and a duration in minutes, treated as the half-open minute interval
// [start, start+duration).
package timeslot

import (
	"errors"
	"regexp"
	"time"
)

var ErrInvalidTime = errors.New("invalid time format, expected HH:mm")

var timePattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// ToMinutes parses an "HH:mm" wall-clock string into minutes since
// midnight. "9:05" and "09:05" are both accepted.
func ToMinutes(hhmm string) (int, error) {
	if !timePattern.MatchString(hhmm) {
		return 0, ErrInvalidTime
	}
	var h, m int
	for i := 0; i < len(hhmm); i++ {
		if hhmm[i] == ':' {
			h = atoi(hhmm[:i])
			m = atoi(hhmm[i+1:])
			break
		}
	}
	return h*60 + m, nil
}

func atoi(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}

// Overlaps reports whether [startA, startA+durA) and [startB, startB+durB)
// intersect. Half-open: a meeting ending exactly when another begins does
// not conflict.
func Overlaps(startA, durA, startB, durB int) bool {
	return startA < startB+durB && startB < startA+durA
}

// DayBounds returns the inclusive bounds of d's calendar day,
// 00:00:00.000 through 23:59:59.999 in d's location. Stored dates may
// carry non-zero time components from client input, so day membership is
// decided by range, not equality.
func DayBounds(d time.Time) (time.Time, time.Time) {
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	end := start.Add(24*time.Hour - time.Millisecond)
	return start, end
}

// StartAt anchors an "HH:mm" start onto date's calendar day. The time
// string must already be validated.
func StartAt(date time.Time, hhmm string) time.Time {
	mins, err := ToMinutes(hhmm)
	if err != nil {
		mins = 0
	}
	day, _ := DayBounds(date)
	return day.Add(time.Duration(mins) * time.Minute)
}
