package calendar

import (
	"sort"
	"time"

	"github.com/testra/backoffice-api/internal/model"
)

// DayKey identifies a calendar day as "YYYY-MM-DD".
type DayKey string

// Key returns the day key for a point in time.
func Key(t time.Time) DayKey {
	return DayKey(t.Format("2006-01-02"))
}

// Bucketize groups appointments by calendar day for O(n) placement into grid
// cells. Within a day, appointments are ordered by start time; ties keep
// their original fetch order. No status filtering happens here, so cancelled
// appointments stay visible on the grid, and no truncation either; the
// renderer owns the overflow policy.
func Bucketize(appts []*model.Appointment, grid Grid) map[DayKey][]*model.Appointment {
	buckets := make(map[DayKey][]*model.Appointment)
	for _, apt := range appts {
		if !grid.Covers(apt.Date) {
			continue
		}
		k := Key(apt.Date)
		buckets[k] = append(buckets[k], apt)
	}
	for _, day := range buckets {
		sort.SliceStable(day, func(i, j int) bool {
			return day[i].StartTime < day[j].StartTime
		})
	}
	return buckets
}
