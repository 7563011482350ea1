package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestBuildGridMonthShape(t *testing.T) {
	cases := []struct {
		name    string
		ref     time.Time
		days    int
		leading int
	}{
		{"march 2024", date(2024, time.March, 10), 31, 5},           // Mar 1 2024 is a Friday
		{"leap february", date(2024, time.February, 1), 29, 4},      // Feb 1 2024 is a Thursday
		{"non-leap february", date(2023, time.February, 15), 28, 3}, // Feb 1 2023 is a Wednesday
		{"december", date(2024, time.December, 31), 31, 0},          // Dec 1 2024 is a Sunday
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			grid := BuildGrid(tc.ref, ModeMonth, tc.ref)
			require.Len(t, grid.Cells, tc.leading+tc.days)

			for i := 0; i < tc.leading; i++ {
				assert.False(t, grid.Cells[i].InRange)
				assert.True(t, grid.Cells[i].Date.IsZero())
			}
			for day := 1; day <= tc.days; day++ {
				cell := grid.Cells[tc.leading+day-1]
				assert.True(t, cell.InRange)
				assert.Equal(t, day, cell.Date.Day())
				assert.Equal(t, tc.ref.Month(), cell.Date.Month(), "month grid must not spill into the next month")
				assert.Equal(t, tc.ref.Year(), cell.Date.Year())
			}
		})
	}
}

func TestBuildGridMonthMarksToday(t *testing.T) {
	now := date(2024, time.March, 15)
	grid := BuildGrid(now, ModeMonth, now)

	var todays []time.Time
	for _, c := range grid.Cells {
		if c.Today {
			todays = append(todays, c.Date)
		}
	}
	require.Len(t, todays, 1)
	assert.Equal(t, date(2024, time.March, 15), todays[0])
}

func TestBuildGridMonthTodayOutsideMonth(t *testing.T) {
	grid := BuildGrid(date(2024, time.April, 1), ModeMonth, date(2024, time.March, 15))
	for _, c := range grid.Cells {
		assert.False(t, c.Today)
	}
}

func TestBuildGridWeekShape(t *testing.T) {
	cases := []struct {
		name  string
		ref   time.Time
		start time.Time
	}{
		{"midweek", date(2024, time.March, 13), date(2024, time.March, 10)},
		{"on a sunday", date(2024, time.March, 10), date(2024, time.March, 10)},
		{"year rollover", date(2025, time.January, 1), date(2024, time.December, 29)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			grid := BuildGrid(tc.ref, ModeWeek, tc.ref)
			require.Len(t, grid.Cells, 7)

			for i, cell := range grid.Cells {
				assert.True(t, cell.InRange)
				assert.Equal(t, tc.start.AddDate(0, 0, i), cell.Date)
			}
			assert.Equal(t, time.Sunday, grid.Cells[0].Date.Weekday())
		})
	}
}

func TestGridRange(t *testing.T) {
	grid := BuildGrid(date(2024, time.February, 10), ModeMonth, date(2024, time.February, 10))
	start, end := grid.Range()
	assert.Equal(t, date(2024, time.February, 1), start)
	assert.Equal(t, date(2024, time.February, 29), end)

	assert.True(t, grid.Covers(date(2024, time.February, 29)))
	assert.False(t, grid.Covers(date(2024, time.March, 1)))
	assert.False(t, grid.Covers(date(2024, time.January, 31)))
}
