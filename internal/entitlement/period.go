package entitlement

import "time"

// PeriodFor returns the UTC calendar month containing t. end is exclusive.
func PeriodFor(t time.Time) (start, end time.Time) {
	t = t.UTC()
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// renewal returns the end of a billing period that starts at start.
func renewal(start time.Time, yearly bool) time.Time {
	if yearly {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}
