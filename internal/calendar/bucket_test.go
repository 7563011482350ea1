package calendar

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testra/backoffice-api/internal/model"
)

func apt(day time.Time, start string, opts ...func(*model.Appointment)) *model.Appointment {
	a := &model.Appointment{
		Title:       "Visit",
		Date:        day,
		StartTime:   start,
		Duration:    30,
		ServiceType: model.ServiceTypeOther,
		Status:      model.AppointmentStatusScheduled,
	}
	a.ID = uuid.New()
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func cancelled(a *model.Appointment) { a.Status = model.AppointmentStatusCancelled }
func testing_(a *model.Appointment)  { a.ServiceType = model.ServiceTypeTesting }

func TestBucketizePartition(t *testing.T) {
	grid := BuildGrid(date(2024, time.March, 1), ModeMonth, date(2024, time.March, 1))

	appts := []*model.Appointment{
		apt(date(2024, time.March, 5), "09:00"),
		apt(date(2024, time.March, 5), "08:00"),
		apt(date(2024, time.March, 31), "12:00"),
		apt(date(2024, time.March, 1), "10:30"),
		apt(date(2024, time.March, 5), "14:00", cancelled),
	}

	buckets := Bucketize(appts, grid)

	seen := make(map[uuid.UUID]int)
	total := 0
	for _, day := range buckets {
		for _, a := range day {
			seen[a.ID]++
			total++
		}
	}
	assert.Equal(t, len(appts), total, "every in-range appointment placed exactly once")
	for id, n := range seen {
		assert.Equal(t, 1, n, "appointment %s duplicated", id)
	}

	// Cancelled appointments stay in their bucket.
	assert.Len(t, buckets[Key(date(2024, time.March, 5))], 3)
}

func TestBucketizeOrdersByStartTime(t *testing.T) {
	day := date(2024, time.March, 5)
	grid := BuildGrid(day, ModeWeek, day)

	first := apt(day, "09:00")
	second := apt(day, "09:00")
	early := apt(day, "07:15")

	buckets := Bucketize([]*model.Appointment{first, second, early}, grid)
	bucket := buckets[Key(day)]
	require.Len(t, bucket, 3)

	assert.Equal(t, early.ID, bucket[0].ID)
	// Equal start times keep fetch order.
	assert.Equal(t, first.ID, bucket[1].ID)
	assert.Equal(t, second.ID, bucket[2].ID)
}

func TestBucketizeSkipsOutOfRange(t *testing.T) {
	grid := BuildGrid(date(2024, time.March, 1), ModeMonth, date(2024, time.March, 1))
	buckets := Bucketize([]*model.Appointment{
		apt(date(2024, time.February, 29), "09:00"),
		apt(date(2024, time.April, 1), "09:00"),
	}, grid)
	assert.Empty(t, buckets)
}

func TestBucketizeNoonAnchoredDates(t *testing.T) {
	// Dates persisted at local noon land on the same calendar day.
	day := date(2024, time.March, 15)
	noon := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.Local)
	grid := BuildGrid(day, ModeMonth, day)

	buckets := Bucketize([]*model.Appointment{apt(noon, "10:00")}, grid)
	assert.Len(t, buckets[Key(day)], 1)
}
