// internal/dates.go
// -----------------
// Calendar-day helpers for the reporting path. The provider's report service
// only accepts whole calendar days in the network's configured timezone, so
// adapters align incoming instants to days before building a request.
package internal

import "time"

// AlignToDay returns midnight of t's calendar day in loc.
func AlignToDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// FormatDate renders t's calendar day in loc as YYYY-MM-DD.
func FormatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// SameCalendarDay reports whether a and b fall on the same calendar day in
// loc. A report with start == end covers that whole day.
func SameCalendarDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
