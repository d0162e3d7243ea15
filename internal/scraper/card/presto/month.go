package presto

import (
	"strconv"
	"time"
)

// selectedMonthOffset is added by the portal to the month distance of the
// requested month. Observed empirically.
const selectedMonthOffset = 2

const rangeDateLayout = "01/02/2006"

// SelectedMonthValue returns the selectedMonth parameter for (year, month)
// seen from ref: the whole calendar months between ref and the first day of
// the month, truncated toward zero, plus selectedMonthOffset.
func SelectedMonthValue(year int, month time.Month, ref time.Time) string {
	return strconv.Itoa(monthsSince(ref, year, month) + selectedMonthOffset)
}

func monthsSince(ref time.Time, year int, month time.Month) int {
	start := time.Date(year, month, 1, 0, 0, 0, 0, ref.Location())
	months := (ref.Year()-year)*12 + int(ref.Month()) - int(month)

	// ref never precedes the first day of its own month, so only future
	// months carry a fractional part that truncation must drop.
	if months < 0 && ref.After(start.AddDate(0, months, 0)) {
		months++
	}
	return months
}

// DateRangeValue returns the selectedMonth parameter for an explicit range.
func DateRangeValue(from, to time.Time) string {
	return from.Format(rangeDateLayout) + " - " + to.Format(rangeDateLayout)
}
