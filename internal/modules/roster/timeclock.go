package roster

import (
	"math"
	"time"

	"github.com/georgemunganga/tablepos/internal/platform/storeopt"
)

// elapsedMinutes counts whole minutes in [from, to), never negative.
func elapsedMinutes(from, to time.Time) int {
	d := to.Sub(from)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// clockTransition moves st to next at now and settles the timeclock.
// Leaving active banks the running session. Entering active from any other status starts a new one at now.
// On a day rollover the bank is emptied first, and only the part of a running session
// that falls on the new day is kept.
func clockTransition(st Staff, next Status, now time.Time, loc *time.Location) Staff {
	today := now.In(loc).Format(storeopt.DateLayout)
	rolled := st.LastWorkDate != today
	wasActive := st.Status == StatusActive

	if rolled {
		st.AccumulatedMinutes = 0
	}

	switch {
	case wasActive && next != StatusActive:
		if st.WorkStartedAt != nil {
			from := *st.WorkStartedAt
			if rolled {
				if midnight := startOfDay(now, loc); from.Before(midnight) {
					from = midnight
				}
			}
			st.AccumulatedMinutes += elapsedMinutes(from, now)
		}
		st.WorkStartedAt = nil
	case !wasActive && next == StatusActive:
		started := now
		st.WorkStartedAt = &started
	case wasActive && next == StatusActive && rolled && st.WorkStartedAt != nil:
		// Still on shift across midnight: restart the session at today's boundary.
		midnight := startOfDay(now, loc)
		if st.WorkStartedAt.Before(midnight) {
			st.WorkStartedAt = &midnight
		}
	}

	st.Status = next
	st.LastWorkDate = today
	return st
}

// workedMinutes is today's total for st. A record last touched on another day reports 0.
func workedMinutes(st Staff, now time.Time, loc *time.Location) int {
	if st.LastWorkDate != now.In(loc).Format(storeopt.DateLayout) {
		return 0
	}
	total := st.AccumulatedMinutes
	if st.Status == StatusActive && st.WorkStartedAt != nil {
		total += elapsedMinutes(*st.WorkStartedAt, now)
	}
	return total
}

// hoursFromMinutes rounds to one decimal place.
func hoursFromMinutes(minutes int) float64 {
	return math.Round(float64(minutes)/60*10) / 10
}
