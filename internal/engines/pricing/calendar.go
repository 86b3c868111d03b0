package pricing

import (
	"time"

	"optionsimulator/internal/models"
)

// TradingDaysPerYear converts business-day counts into year fractions
const TradingDaysPerYear = 252

// BusinessDays counts Monday-Friday dates in [from, to). The count is negative
// when to is before from, and no holiday calendar is applied.
func BusinessDays(from, to models.Date) int {
	if to.Before(from) {
		return -countWeekdays(to, from)
	}
	return countWeekdays(from, to)
}

// YearFraction returns the business-day time between two dates in years
func YearFraction(from, to models.Date) float64 {
	return float64(BusinessDays(from, to)) / TradingDaysPerYear
}

func countWeekdays(from, to models.Date) int {
	days := to.DaysSince(from)
	count := (days / 7) * 5

	start := from.Weekday()
	for i := 0; i < days%7; i++ {
		switch (start + time.Weekday(i)) % 7 {
		case time.Saturday, time.Sunday:
		default:
			count++
		}
	}
	return count
}
