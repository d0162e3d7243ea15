package card

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var amountCleaner = strings.NewReplacer("$", "", ",", "", " ", "", "\u00a0", "")

// ParseAmount transforms a currency string such as "$1,234.50", "-$3.00" or
// "($3.00)" into an int64 with two decimals of precision.
func ParseAmount(s string) (int64, error) {
	clean := strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		negative = true
		clean = clean[1 : len(clean)-1]
	}
	clean = amountCleaner.Replace(clean)
	if strings.HasPrefix(clean, "-") {
		negative = !negative
		clean = clean[1:]
	}

	floatVal, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q: %v", ErrParsingFailed, s, err)
	}

	cents := int64(math.Round(floatVal * 100))
	if negative {
		cents = -cents
	}
	return cents, nil
}

// ParseActivityDate parses an activity timestamp in loc. A nil loc means UTC.
func ParseActivityDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(ActivityDateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: activity date %q: %v", ErrParsingFailed, s, err)
	}
	return t, nil
}
