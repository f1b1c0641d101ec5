package keys

import (
	"regexp"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/planbook/pkg/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 15, 4, 5, 0, time.UTC)
}

func TestKeyFor(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		typ  types.PeriodType
		want string
	}{
		{"day", date(2025, time.July, 1), types.PeriodDay, "2025-07-01"},
		{"week", date(2025, time.July, 1), types.PeriodWeek, "2025-W27"},
		{"month", date(2025, time.July, 1), types.PeriodMonth, "2025-07"},
		{"year", date(2025, time.January, 1), types.PeriodYear, "2025"},
		{"week zero padded", date(2025, time.January, 8), types.PeriodWeek, "2025-W02"},
		{"late december belongs to next ISO year", date(2024, time.December, 30), types.PeriodWeek, "2025-W01"},
		{"early january belongs to previous ISO year", date(2021, time.January, 1), types.PeriodWeek, "2020-W53"},
		{"unknown type falls back to day", date(2025, time.March, 9), types.PeriodType("decade"), "2025-03-09"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeyFor(tt.date, tt.typ))
		})
	}
}

func TestKeyForUsesDateLocation(t *testing.T) {
	tz := time.FixedZone("UTC+3", 3*60*60)
	d := time.Date(2025, time.July, 1, 1, 0, 0, 0, tz)
	assert.Equal(t, "2025-07-01", KeyFor(d, types.PeriodDay))
	assert.Equal(t, "2025-06-30", KeyFor(d.UTC(), types.PeriodDay))
}

func TestKeysForDate(t *testing.T) {
	got := KeysForDate(date(2025, time.July, 1))
	assert.Equal(t, Keys{Day: "2025-07-01", Week: "2025-W27", Month: "2025-07", Year: "2025"}, got)
	for _, pt := range types.PeriodTypes {
		assert.Equal(t, KeyFor(date(2025, time.July, 1), pt), got.Get(pt))
	}
	assert.Empty(t, got.Get("decade"))
}

func TestKeyForNow(t *testing.T) {
	orig := Now
	t.Cleanup(func() { Now = orig })
	Now = func() time.Time { return date(2026, time.October, 17) }

	assert.Equal(t, "2026-10-17", KeyForNow(types.PeriodDay))
	assert.Equal(t, "2026-W42", KeysForNow().Week)
}

func TestPlainStrategy(t *testing.T) {
	s := Plain()
	d := date(2025, time.July, 1)
	assert.Equal(t, KeyFor(d, types.PeriodMonth), s.Key(d, types.PeriodMonth))
	assert.Equal(t, KeysForDate(d), s.Keys(d))
}

func TestParsePlain(t *testing.T) {
	tests := []struct {
		key       string
		wantType  types.PeriodType
		wantStart time.Time
		wantOK    bool
	}{
		{"2025-07-01", types.PeriodDay, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), true},
		{"2025-W27", types.PeriodWeek, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), true},
		{"2020-W53", types.PeriodWeek, time.Date(2020, 12, 28, 0, 0, 0, 0, time.UTC), true},
		{"2025-07", types.PeriodMonth, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), true},
		{"2025", types.PeriodYear, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"2021-W53", "", time.Time{}, false},
		{"2025-W00", "", time.Time{}, false},
		{"2025-13", "", time.Time{}, false},
		{"2025-02-30", "", time.Time{}, false},
		{"notes:day:2025-07-01", "", time.Time{}, false},
		{"", "", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			typ, start, ok := ParsePlain(tt.key)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantType, typ)
			assert.True(t, tt.wantStart.Equal(start), "start = %s, want %s", start, tt.wantStart)
		})
	}
}

func TestWeekStart(t *testing.T) {
	start, ok := WeekStart(2025, 1)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Monday, start.Weekday())

	_, ok = WeekStart(2025, 54)
	assert.False(t, ok)
}

var keyFormats = map[types.PeriodType]*regexp.Regexp{
	types.PeriodDay:   regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
	types.PeriodWeek:  regexp.MustCompile(`^\d{4}-W\d{2}$`),
	types.PeriodMonth: regexp.MustCompile(`^\d{4}-\d{2}$`),
	types.PeriodYear:  regexp.MustCompile(`^\d{4}$`),
}

func TestKeyProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	// 1970-01-01 .. 9999-12-31 keeps every year at four digits.
	dates := gen.Int64Range(0, 253402214400).Map(func(sec int64) time.Time {
		return time.Unix(sec, 0).UTC()
	})
	periods := gen.OneConstOf(types.PeriodDay, types.PeriodWeek, types.PeriodMonth, types.PeriodYear)

	properties.Property("KeyFor is deterministic", prop.ForAll(
		func(d time.Time, pt types.PeriodType) bool {
			return KeyFor(d, pt) == KeyFor(d, pt)
		},
		dates, periods,
	))

	properties.Property("KeyFor matches the format of its type", prop.ForAll(
		func(d time.Time, pt types.PeriodType) bool {
			return keyFormats[pt].MatchString(KeyFor(d, pt))
		},
		dates, periods,
	))

	properties.Property("ParsePlain recovers the type and a start inside the same period", prop.ForAll(
		func(d time.Time, pt types.PeriodType) bool {
			key := KeyFor(d, pt)
			got, start, ok := ParsePlain(key)
			return ok && got == pt && KeyFor(start, pt) == key && !start.After(d)
		},
		dates, periods,
	))

	properties.Property("namespaced keys parse back to their plain fragment", prop.ForAll(
		func(d time.Time, pt types.PeriodType) bool {
			parsed, ok := ParseNamespaced(Namespaced().Key(d, pt))
			return ok && parsed.Type == pt && parsed.Fragment == KeyFor(d, pt)
		},
		dates, periods,
	))

	properties.TestingRun(t)
}
