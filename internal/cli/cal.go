package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/planbook/internal/calendar"
	"github.com/mesh-intelligence/planbook/pkg/keys"
	"github.com/mesh-intelligence/planbook/pkg/notebook"
)

var months calendar.Cache

// calDay and calWeek are the JSON shape of the cal command.
type calDay struct {
	Date    string `json:"date"`
	InMonth bool   `json:"inMonth"`
	Marked  bool   `json:"marked"`
}

type calWeek struct {
	Number int      `json:"number"`
	Days   []calDay `json:"days"`
}

func (a *app) calCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cal [year month]",
		Short: "Show a month with its ISO weeks and the days that have notes",
		Long: `Show a month as Monday-first weeks. Days with a day note are marked
with '*'. Defaults to the current month.

Example:
  planbook cal
  planbook cal 2025 7`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("accepts 0 or 2 args, received %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			now := a.now()
			year, month := now.Year(), now.Month()
			if len(args) == 2 {
				y, err := strconv.Atoi(args[0])
				if err != nil {
					return userError(fmt.Errorf("invalid year %q", args[0]))
				}
				m, err := strconv.Atoi(args[1])
				if err != nil || m < 1 || m > 12 {
					return userError(fmt.Errorf("invalid month %q (want 1-12)", args[1]))
				}
				year, month = y, time.Month(m)
			}
			grid := months.Month(year, month)

			return a.withNotebook(func(nb *notebook.Service) error {
				marked, err := nb.MarkedDays(cmd.Context(), year, month)
				if err != nil {
					return storeError(err)
				}
				return a.emit(cmd, calJSON(grid, marked), func(w io.Writer) {
					printMonth(w, grid, marked)
				})
			})
		},
	}
}

func calJSON(grid calendar.MonthGrid, marked map[int]bool) []calWeek {
	weeks := make([]calWeek, 0, len(grid.Weeks))
	for _, w := range grid.Weeks {
		cw := calWeek{Number: w.Number, Days: make([]calDay, 0, len(w.Days))}
		for _, d := range w.Days {
			cw.Days = append(cw.Days, calDay{
				Date:    d.Date.Format(keys.DayLayout),
				InMonth: d.InCurrentMonth,
				Marked:  d.InCurrentMonth && marked[d.Date.Day()],
			})
		}
		weeks = append(weeks, cw)
	}
	return weeks
}

func printMonth(w io.Writer, grid calendar.MonthGrid, marked map[int]bool) {
	fmt.Fprintf(w, "%s %d\n", grid.Month, grid.Year)
	fmt.Fprintln(w, "Wk   Mo  Tu  We  Th  Fr  Sa  Su")
	for _, week := range grid.Weeks {
		fmt.Fprintf(w, "%2d  ", week.Number)
		for _, d := range week.Days {
			switch {
			case !d.InCurrentMonth:
				fmt.Fprint(w, "    ")
			case marked[d.Date.Day()]:
				fmt.Fprintf(w, "%3d*", d.Date.Day())
			default:
				fmt.Fprintf(w, "%3d ", d.Date.Day())
			}
		}
		fmt.Fprintln(w)
	}
}
