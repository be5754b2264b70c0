package valuation

import (
	"math"
	"strconv"
	"strings"
	"time"

	"compstone/server/internal/models"
)

// DefaultAppreciationRate is the process-wide annual appreciation rate used
// when no rate has been configured.
const DefaultAppreciationRate = 0.05

// daysPerYear converts a day count to fractional years with calendar
// precision.
const daysPerYear = 365.25

// Adjustment is the present-value view of a historical sale.
type Adjustment struct {
	AdjustedPrice      float64 `json:"adjusted_price"`
	YearsAgo           float64 `json:"years_ago"`
	AppreciationAmount float64 `json:"appreciation_amount"`
}

// Appreciate compounds a historical sale price forward to present value at
// the given annual rate, using fractional years rather than an annual step
// function.
//
// Malformed or missing sale dates and non-positive prices fall back to the
// unchanged-price policy: the input price is returned with zero years and
// zero appreciation. The fallback keeps a bad record from aborting the
// recompute of the rest of the comp set.
func Appreciate(price float64, saleDate string, rate float64, now time.Time) Adjustment {
	unchanged := Adjustment{AdjustedPrice: price}
	if price <= 0 {
		return unchanged
	}

	sold, ok := ParseSaleDate(saleDate)
	if !ok {
		return unchanged
	}

	years := now.Sub(sold).Hours() / 24 / daysPerYear
	adjusted := price * math.Pow(1+rate, years)

	return Adjustment{
		AdjustedPrice:      adjusted,
		YearsAgo:           years,
		AppreciationAmount: adjusted - price,
	}
}

// ParseSaleDate parses a month/day/year sale date. Two-digit years map
// 00-49 to 2000-2049 and 50-99 to 1950-1999. The second return value is
// false for the "unknown" sentinel or anything that is not exactly three
// numeric date components.
func ParseSaleDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, models.UnknownSaleDate) {
		return time.Time{}, false
	}

	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	month, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return time.Time{}, false
	}

	if year >= 0 && year < 100 {
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// DaysSinceSale returns the number of days between the sale date and now.
// The second return value is false when the date cannot be parsed.
func DaysSinceSale(saleDate string, now time.Time) (float64, bool) {
	sold, ok := ParseSaleDate(saleDate)
	if !ok {
		return 0, false
	}
	return now.Sub(sold).Hours() / 24, true
}
