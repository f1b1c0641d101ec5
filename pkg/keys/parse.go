package keys

import (
	"regexp"
	"strconv"
	"time"

	"github.com/mesh-intelligence/planbook/pkg/types"
)

var weekPattern = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)

// ParsePlain recovers the period type of a plain key and the first day of the
// period it names, in UTC. ok is false for anything KeyFor cannot produce.
func ParsePlain(key string) (t types.PeriodType, start time.Time, ok bool) {
	if m := weekPattern.FindStringSubmatch(key); m != nil {
		year, _ := strconv.Atoi(m[1])
		week, _ := strconv.Atoi(m[2])
		start, ok = WeekStart(year, week)
		return types.PeriodWeek, start, ok
	}

	var layout string
	switch len(key) {
	case len(DayLayout):
		layout, t = DayLayout, types.PeriodDay
	case len(MonthLayout):
		layout, t = MonthLayout, types.PeriodMonth
	case len(YearLayout):
		layout, t = YearLayout, types.PeriodYear
	default:
		return "", time.Time{}, false
	}
	start, err := time.Parse(layout, key)
	if err != nil {
		return "", time.Time{}, false
	}
	return t, start, true
}

// WeekStart returns the Monday that opens ISO week `week` of ISO year `year`.
// ok is false if the year has no such week.
func WeekStart(year, week int) (time.Time, bool) {
	if week < 1 || week > 53 {
		return time.Time{}, false
	}
	// January 4th always falls in week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	start := jan4.AddDate(0, 0, -offset+(week-1)*7)
	if y, w := start.ISOWeek(); y != year || w != week {
		return time.Time{}, false
	}
	return start, true
}
