// Package calendar implements the scheduling core: date-grid generation,
// per-day bucketing of appointments, the rendered view model with overflow
// truncation, and the dashboard stat aggregates. Everything here is pure;
// callers supply the clock.
package calendar

import (
	"time"
)

type ViewMode string

const (
	ModeMonth ViewMode = "month"
	ModeWeek  ViewMode = "week"
)

// Cell is one slot in the calendar grid. Padding cells before the 1st of the
// month carry a zero Date and InRange=false.
type Cell struct {
	Date    time.Time
	InRange bool
	Today   bool
}

// Grid is an ordered sequence of cells covering one month or one week.
type Grid struct {
	Mode  ViewMode
	Cells []Cell
}

// BuildGrid converts a reference date and view mode into the cell sequence.
//
// Month mode emits weekday(1st) leading padding cells followed by one cell
// per day of the month; it never spills into the following month. Week mode
// emits exactly 7 cells starting from the Sunday on or before ref. Month and
// year rollover is left entirely to the time package.
func BuildGrid(ref time.Time, mode ViewMode, now time.Time) Grid {
	today := midnight(now)

	if mode == ModeWeek {
		start := midnight(ref).AddDate(0, 0, -int(ref.Weekday()))
		cells := make([]Cell, 0, 7)
		for i := 0; i < 7; i++ {
			d := start.AddDate(0, 0, i)
			cells = append(cells, Cell{Date: d, InRange: true, Today: d.Equal(today)})
		}
		return Grid{Mode: ModeWeek, Cells: cells}
	}

	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	days := daysInMonth(ref)

	cells := make([]Cell, 0, int(first.Weekday())+days)
	for i := 0; i < int(first.Weekday()); i++ {
		cells = append(cells, Cell{})
	}
	for day := 1; day <= days; day++ {
		d := first.AddDate(0, 0, day-1)
		cells = append(cells, Cell{Date: d, InRange: true, Today: d.Equal(today)})
	}
	return Grid{Mode: ModeMonth, Cells: cells}
}

// Range returns the first and last in-range days of the grid.
func (g Grid) Range() (start, end time.Time) {
	for _, c := range g.Cells {
		if !c.InRange {
			continue
		}
		if start.IsZero() {
			start = c.Date
		}
		end = c.Date
	}
	return start, end
}

// Covers reports whether the given day falls inside the grid's range.
func (g Grid) Covers(day time.Time) bool {
	start, end := g.Range()
	if start.IsZero() {
		return false
	}
	d := midnight(day)
	return !d.Before(start) && !d.After(end)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func daysInMonth(t time.Time) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
