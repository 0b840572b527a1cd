package timeutil

import "time"

// MonthsFor maps a customer billing schedule to the number of months
// between bills. Unknown or empty schedules bill monthly.
func MonthsFor(billingSchedule string) int {
	switch billingSchedule {
	case "monthly":
		return 1
	case "quarterly":
		return 3
	case "half yearly":
		return 6
	case "annually":
		return 12
	default:
		return 1
	}
}

// OlderThanMonths reports whether t is strictly earlier than n months
// before now. A zero t is never considered older.
func OlderThanMonths(t time.Time, n int, now time.Time) bool {
	if t.IsZero() {
		return false
	}
	return t.Before(now.AddDate(0, -n, 0))
}
