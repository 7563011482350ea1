package calendar

import (
	"sort"
	"time"

	"github.com/testra/backoffice-api/internal/model"
)

// Stats are the dashboard tile counts. All four exclude cancelled
// appointments and use inclusive comparisons anchored to local midnight.
type Stats struct {
	Today           int `json:"today"`
	Week            int `json:"week"`
	Month           int `json:"month"`
	TestingUpcoming int `json:"testing_upcoming"`
}

// ComputeStats aggregates counts over the full appointment set.
func ComputeStats(appts []*model.Appointment, now time.Time) Stats {
	today := midnight(now)
	weekEnd := today.AddDate(0, 0, 7)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, -1)

	var s Stats
	for _, apt := range appts {
		if apt.Status == model.AppointmentStatusCancelled {
			continue
		}
		day := apt.Day()
		if day.Equal(today) {
			s.Today++
		}
		if !day.Before(today) && !day.After(weekEnd) {
			s.Week++
		}
		if !day.Before(monthStart) && !day.After(monthEnd) {
			s.Month++
		}
		if apt.ServiceType == model.ServiceTypeTesting && !day.Before(today) {
			s.TestingUpcoming++
		}
	}
	return s
}

// Upcoming returns the next appointments on or after today, cancelled ones
// excluded, ordered by day then start time, capped at limit.
func Upcoming(appts []*model.Appointment, now time.Time, limit int) []*model.Appointment {
	today := midnight(now)

	upcoming := make([]*model.Appointment, 0, limit)
	for _, apt := range appts {
		if apt.Status == model.AppointmentStatusCancelled {
			continue
		}
		if apt.Day().Before(today) {
			continue
		}
		upcoming = append(upcoming, apt)
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		di, dj := upcoming[i].Day(), upcoming[j].Day()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return upcoming[i].StartTime < upcoming[j].StartTime
	})
	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming
}
