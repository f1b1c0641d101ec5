// Package keys derives the string keys that address plans. A key identifies
// one period instance (a day, an ISO week, a month or a year) and is a pure
// function of the calendar date and the period type.
//
// Two strategies exist and they are not interchangeable. Plain keys
// ("2025-07-01", "2025-W27", "2025-07", "2025") are what the plan store
// indexes. Namespaced keys ("notes:day:2025-07-01") tag the period type into
// the key itself and can be parsed back.
package keys

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/planbook/pkg/types"
)

// Layouts for the plain key of each period type. Week keys are built by
// weekKey because time.Format has no ISO week verb.
const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
	YearLayout  = "2006"
)

// Keys bundles the key of every period type for one date.
type Keys struct {
	Day   string `json:"day"`
	Week  string `json:"week"`
	Month string `json:"month"`
	Year  string `json:"year"`
}

// Get returns the key for t, or "" for an unknown type.
func (k Keys) Get(t types.PeriodType) string {
	switch t {
	case types.PeriodDay:
		return k.Day
	case types.PeriodWeek:
		return k.Week
	case types.PeriodMonth:
		return k.Month
	case types.PeriodYear:
		return k.Year
	}
	return ""
}

// Strategy produces keys for a date and period type.
type Strategy interface {
	Key(date time.Time, t types.PeriodType) string
	Keys(date time.Time) Keys
}

// KeyFor returns the plain key of date for period type t:
//
//	day   YYYY-MM-DD
//	week  YYYY-Www  (ISO 8601 week-numbering year and week)
//	month YYYY-MM
//	year  YYYY
//
// An unknown type yields the day key.
func KeyFor(date time.Time, t types.PeriodType) string {
	switch t {
	case types.PeriodWeek:
		return weekKey(date)
	case types.PeriodMonth:
		return date.Format(MonthLayout)
	case types.PeriodYear:
		return date.Format(YearLayout)
	default:
		return date.Format(DayLayout)
	}
}

// KeysForDate returns the plain key of every period type for date.
func KeysForDate(date time.Time) Keys {
	return Keys{
		Day:   KeyFor(date, types.PeriodDay),
		Week:  KeyFor(date, types.PeriodWeek),
		Month: KeyFor(date, types.PeriodMonth),
		Year:  KeyFor(date, types.PeriodYear),
	}
}

// Now is the clock used by KeyForNow and KeysForNow.
var Now = time.Now

// KeyForNow returns the plain key of the current date for t.
func KeyForNow(t types.PeriodType) string {
	return KeyFor(Now(), t)
}

// KeysForNow returns the plain keys of the current date.
func KeysForNow() Keys {
	return KeysForDate(Now())
}

func weekKey(date time.Time) string {
	year, week := date.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// plain is the Strategy used by the plan store.
type plain struct{}

func (plain) Key(date time.Time, t types.PeriodType) string { return KeyFor(date, t) }
func (plain) Keys(date time.Time) Keys                       { return KeysForDate(date) }

// Plain returns the strategy producing bare calendar keys.
func Plain() Strategy { return plain{} }
