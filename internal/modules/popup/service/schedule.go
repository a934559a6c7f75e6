package service

import (
	"time"

	"gorm.io/datatypes"

	"miuhub.app/communityserver/internal/entity"
)

// ReconcileSchedule decides what a popup's enabled flag should be at the given
// time. It returns the desired value and whether it differs from the stored
// one. The caller persists the flip and stamps updated_at.
//
// Popups under manual override, and popups missing either date, are exempt
// from automatic control.
func ReconcileSchedule(popup *entity.Popup, now time.Time) (enabled bool, changed bool) {
	if popup.ManualOverride {
		return popup.Enabled, false
	}
	if popup.StartDate == nil || popup.EndDate == nil {
		return popup.Enabled, false
	}

	desired := inWindow(*popup.StartDate, *popup.EndDate, now)
	return desired, desired != popup.Enabled
}

// ResolveOverride decides the manual_override flag for an explicit admin
// toggle. Turning OFF always suspends automatic control. Turning ON hands
// control back to the scheduler only when now falls inside the date window;
// outside the window (or without dates) the popup stays manually forced on.
func ResolveOverride(popup *entity.Popup, requestedEnabled bool, now time.Time) bool {
	if !requestedEnabled {
		return true
	}
	if popup.StartDate == nil || popup.EndDate == nil {
		return true
	}
	return !inWindow(*popup.StartDate, *popup.EndDate, now)
}

// inWindow reports whether now falls inside the inclusive day-granularity
// window. The lower bound compares against now truncated to day start, the
// upper bound against the full timestamp versus end of day.
func inWindow(startDate, endDate datatypes.Date, now time.Time) bool {
	start := dayStart(time.Time(startDate), now.Location())
	end := dayEnd(time.Time(endDate), now.Location())

	if dayStart(now, now.Location()).Before(start) {
		return false
	}
	if now.After(end) {
		return false
	}
	return true
}

func dayStart(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func dayEnd(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
}
