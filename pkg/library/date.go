package library

import (
	"fmt"
	"time"

	"github.com/questlog/questlog/pkg/errors"
)

// DatePrecision expresses how much of a release date is actually known.
// Catalogs disagree here: HowLongToBeat only knows the release year while
// IGDB usually carries a full date.
type DatePrecision int

// Precision levels, ordered from least to most complete.
const (
	PrecisionNone DatePrecision = iota
	PrecisionYear
	PrecisionMonth
	PrecisionDay
)

// Date is a calendar date with explicit precision. The zero value means
// "unknown". Month and Day are zero when not covered by the precision.
type Date struct {
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"`
	Day   int `json:"day,omitempty"`
}

// NewDate returns a full-precision date.
func NewDate(year, month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// YearOnly returns a date known only to the year.
func YearOnly(year int) Date {
	return Date{Year: year}
}

// DateFromUnix converts a Unix timestamp (as returned by IGDB) to a
// full-precision UTC date.
func DateFromUnix(ts int64) Date {
	if ts == 0 {
		return Date{}
	}
	t := time.Unix(ts, 0).UTC()
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// ParseDate parses "2006-01-02", "2006-01", or "2006".
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			d := Date{Year: t.Year()}
			if len(layout) >= len("2006-01") {
				d.Month = int(t.Month())
			}
			if layout == "2006-01-02" {
				d.Day = t.Day()
			}
			return d, nil
		}
	}
	return Date{}, errors.WrapParse("date", s, fmt.Errorf("unrecognized date %q", s))
}

// IsZero reports whether the date is unknown.
func (d Date) IsZero() bool {
	return d.Year == 0
}

// Precision returns how complete the date is.
func (d Date) Precision() DatePrecision {
	switch {
	case d.Year == 0:
		return PrecisionNone
	case d.Month == 0:
		return PrecisionYear
	case d.Day == 0:
		return PrecisionMonth
	default:
		return PrecisionDay
	}
}

// MoreCompleteThan reports whether d carries strictly more information
// than other while agreeing on the parts they share. A full date is more
// complete than a year-only date of the same year; a different year is a
// disagreement, not a refinement.
func (d Date) MoreCompleteThan(other Date) bool {
	if other.IsZero() {
		return !d.IsZero()
	}
	if d.Precision() <= other.Precision() {
		return false
	}
	if d.Year != other.Year {
		return false
	}
	if other.Precision() >= PrecisionMonth && d.Month != other.Month {
		return false
	}
	return true
}

// String formats the date at its precision: "2011-04-12", "2011-04", or "2011".
func (d Date) String() string {
	switch d.Precision() {
	case PrecisionDay:
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	case PrecisionMonth:
		return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	case PrecisionYear:
		return fmt.Sprintf("%04d", d.Year)
	default:
		return ""
	}
}
