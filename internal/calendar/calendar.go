// Package calendar lays out months as Monday-first week grids for display.
package calendar

import (
	"sync"
	"time"
)

// Day is one cell of a month grid.
type Day struct {
	Date           time.Time
	InCurrentMonth bool
}

// Week is one row of a month grid, Monday through Sunday.
type Week struct {
	Number int // ISO 8601 week number
	Start  time.Time
	End    time.Time
	Days   [7]Day
}

// MonthGrid covers every week that overlaps the month, so leading and
// trailing days may belong to the neighbouring months.
type MonthGrid struct {
	Year  int
	Month time.Month
	Weeks []Week
}

// Month builds the grid for year and month. Dates are midnight UTC.
func Month(year int, month time.Month) MonthGrid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	// Normalise overflowed input such as month 13.
	year, month = first.Year(), first.Month()
	last := first.AddDate(0, 1, -1)

	grid := MonthGrid{Year: year, Month: month}
	for start := mondayOf(first); !start.After(last); start = start.AddDate(0, 0, 7) {
		_, isoWeek := start.ISOWeek()
		w := Week{
			Number: isoWeek,
			Start:  start,
			End:    start.AddDate(0, 0, 6),
		}
		for i := range w.Days {
			d := start.AddDate(0, 0, i)
			w.Days[i] = Day{Date: d, InCurrentMonth: d.Month() == month && d.Year() == year}
		}
		grid.Weeks = append(grid.Weeks, w)
	}
	return grid
}

func mondayOf(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

type monthKey struct {
	year  int
	month time.Month
}

// Cache memoizes month grids. The zero value is ready to use and safe for
// concurrent use.
type Cache struct {
	mu     sync.RWMutex
	months map[monthKey]MonthGrid
}

// Month returns the grid for year and month, building it on first use.
func (c *Cache) Month(year int, month time.Month) MonthGrid {
	key := monthKey{year, month}

	c.mu.RLock()
	grid, ok := c.months[key]
	c.mu.RUnlock()
	if ok {
		return grid
	}

	grid = Month(year, month)

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.months[key]; ok {
		return cached
	}
	if c.months == nil {
		c.months = make(map[monthKey]MonthGrid)
	}
	c.months[key] = grid
	return grid
}

// Len returns the number of cached months.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.months)
}
