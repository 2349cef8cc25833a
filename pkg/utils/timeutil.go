package utils

import "time"

// IsTradingDay checks if the given date is a weekday.
func IsTradingDay(t time.Time) bool {
	return t.Weekday() != time.Saturday && t.Weekday() != time.Sunday
}

// NextTradingDay returns the next weekday after the given date.
func NextTradingDay(from time.Time) time.Time {
	next := from.AddDate(0, 0, 1)
	for !IsTradingDay(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// NextDays returns the n calendar days following the given date, for
// instruments that trade every day.
func NextDays(from time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	days := make([]time.Time, n)
	for i := range days {
		days[i] = from.AddDate(0, 0, i+1)
	}
	return days
}

// NextTradingDays returns the n weekdays following the given date, in order.
func NextTradingDays(from time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	days := make([]time.Time, 0, n)
	cur := from
	for len(days) < n {
		cur = NextTradingDay(cur)
		days = append(days, cur)
	}
	return days
}
