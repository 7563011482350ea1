package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testra/backoffice-api/internal/model"
)

func TestComputeStats(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.Local)

	appts := []*model.Appointment{
		apt(date(2024, time.March, 15), "09:00"),            // today
		apt(date(2024, time.March, 15), "11:00", cancelled), // excluded everywhere
		apt(date(2024, time.March, 20), "09:00"),            // this week + month
		apt(date(2024, time.March, 22), "09:00", testing_),  // week boundary, +7d inclusive
		apt(date(2024, time.March, 31), "09:00"),            // month only
		apt(date(2024, time.March, 1), "09:00"),             // month only, already past
		apt(date(2024, time.April, 2), "09:00", testing_),   // testing upcoming only
	}

	s := ComputeStats(appts, now)

	assert.Equal(t, 1, s.Today)
	assert.Equal(t, 3, s.Week)
	assert.Equal(t, 5, s.Month)
	assert.Equal(t, 2, s.TestingUpcoming)
}

func TestComputeStatsPastTestingExcluded(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.Local)
	s := ComputeStats([]*model.Appointment{
		apt(date(2024, time.March, 10), "09:00", testing_),
	}, now)
	assert.Zero(t, s.TestingUpcoming)
}

func TestUpcoming(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.Local)

	yesterday := apt(date(2024, time.March, 14), "09:00")
	todayLate := apt(date(2024, time.March, 15), "16:00")
	todayEarly := apt(date(2024, time.March, 15), "08:00")
	nextWeek := apt(date(2024, time.March, 21), "09:00")
	gone := apt(date(2024, time.March, 16), "09:00", cancelled)

	got := Upcoming([]*model.Appointment{yesterday, todayLate, todayEarly, nextWeek, gone}, now, 10)
	require.Len(t, got, 3)

	// Today counts as upcoming even though its start time already passed.
	assert.Equal(t, todayEarly.ID, got[0].ID)
	assert.Equal(t, todayLate.ID, got[1].ID)
	assert.Equal(t, nextWeek.ID, got[2].ID)
}

func TestUpcomingLimit(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.Local)
	var appts []*model.Appointment
	for i := 0; i < 15; i++ {
		appts = append(appts, apt(date(2024, time.March, 16+i%5), "09:00"))
	}
	assert.Len(t, Upcoming(appts, now, 10), 10)
}
