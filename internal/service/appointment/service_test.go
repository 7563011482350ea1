package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testra/backoffice-api/internal/model"
	apperrors "github.com/testra/backoffice-api/pkg/errors"
)

type fakeRepo struct {
	byID        map[uuid.UUID]*model.Appointment
	updateDateN int
	failDates   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[uuid.UUID]*model.Appointment)}
}

func (r *fakeRepo) Create(_ context.Context, a *model.Appointment) error {
	a.ID = uuid.New()
	a.Version = 1
	cp := *a
	r.byID[a.ID] = &cp
	return nil
}

func (r *fakeRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) Update(_ context.Context, a *model.Appointment) error {
	if _, ok := r.byID[a.ID]; !ok {
		return apperrors.NotFound("appointment", nil)
	}
	a.Version++
	r.byID[a.ID] = a
	return nil
}

func (r *fakeRepo) UpdateDate(_ context.Context, id uuid.UUID, date time.Time) (*model.Appointment, error) {
	r.updateDateN++
	if r.failDates > 0 {
		r.failDates--
		return nil, assert.AnError
	}
	a, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	a.Date = date
	a.Version++
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

func (r *fakeRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	out := make([]*model.Appointment, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	return out, nil
}

type staticNames map[uuid.UUID]string

func (n staticNames) NameMap(context.Context) (map[uuid.UUID]string, error) { return n, nil }

func newTestService(repo *fakeRepo) *Service {
	svc := NewService(repo, staticNames{})
	svc.retryCfg.Delay = time.Millisecond
	return svc
}

func createReq(mutate ...func(*model.CreateAppointmentRequest)) *model.CreateAppointmentRequest {
	req := &model.CreateAppointmentRequest{
		Title:       "Quarterly screening",
		Date:        "2024-03-15",
		StartTime:   "09:30",
		Duration:    60,
		ServiceType: model.ServiceTypeWeb,
	}
	for _, m := range mutate {
		m(req)
	}
	return req
}

func TestCreateAppointmentAnchorsDateAtNoon(t *testing.T) {
	svc := newTestService(newFakeRepo())

	got, err := svc.CreateAppointment(context.Background(), createReq())
	require.NoError(t, err)

	assert.Equal(t, 2024, got.Date.Year())
	assert.Equal(t, time.March, got.Date.Month())
	assert.Equal(t, 15, got.Date.Day())
	assert.Equal(t, 12, got.Date.Hour())
	assert.Equal(t, model.AppointmentStatusScheduled, got.Status)
	assert.Equal(t, "10:30", got.EndTime)
	assert.Equal(t, int64(1), got.Version)
}

func TestCreateAppointmentStripsDrugTestingForNonTesting(t *testing.T) {
	svc := newTestService(newFakeRepo())

	got, err := svc.CreateAppointment(context.Background(), createReq(func(r *model.CreateAppointmentRequest) {
		r.ServiceType = model.ServiceTypeIT
		r.DrugTesting = &model.DrugTesting{
			TestType:   model.TestTypeLab,
			Substances: []string{model.SubstanceCannabis},
		}
	}))
	require.NoError(t, err)
	assert.Nil(t, got.DrugTesting)
}

func TestCreateAppointmentTestingValidation(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	// Testing without the substructure at all.
	_, err := svc.CreateAppointment(ctx, createReq(func(r *model.CreateAppointmentRequest) {
		r.ServiceType = model.ServiceTypeTesting
	}))
	assert.Error(t, err)

	// POCT without a kit.
	_, err = svc.CreateAppointment(ctx, createReq(func(r *model.CreateAppointmentRequest) {
		r.ServiceType = model.ServiceTypeTesting
		r.DrugTesting = &model.DrugTesting{
			TestType:   model.TestTypePOCT,
			Substances: []string{model.SubstanceOpiates},
		}
	}))
	assert.Error(t, err)

	// No substances.
	_, err = svc.CreateAppointment(ctx, createReq(func(r *model.CreateAppointmentRequest) {
		r.ServiceType = model.ServiceTypeTesting
		r.DrugTesting = &model.DrugTesting{TestType: model.TestTypeLab}
	}))
	assert.Error(t, err)

	// Lab test needs no kit.
	got, err := svc.CreateAppointment(ctx, createReq(func(r *model.CreateAppointmentRequest) {
		r.Title = "Lab screen"
		r.ServiceType = model.ServiceTypeTesting
		r.DrugTesting = &model.DrugTesting{
			TestType:   model.TestTypeLab,
			Substances: []string{model.SubstanceAlcohol, model.SubstanceCocaine},
		}
	}))
	require.NoError(t, err)
	require.NotNil(t, got.DrugTesting)
	assert.Equal(t, model.TestTypeLab, got.DrugTesting.TestType)
}

func TestCreateAppointmentBlocksDoubleSubmit(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.CreateAppointment(ctx, createReq())
	require.NoError(t, err)

	_, err = svc.CreateAppointment(ctx, createReq())
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)

	// A different slot is not a duplicate.
	_, err = svc.CreateAppointment(ctx, createReq(func(r *model.CreateAppointmentRequest) {
		r.StartTime = "11:00"
	}))
	assert.NoError(t, err)
}

func TestUpdateAppointmentRecomputesDerivedState(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.CreateAppointment(ctx, createReq(func(r *model.CreateAppointmentRequest) {
		r.ServiceType = model.ServiceTypeTesting
		r.DrugTesting = &model.DrugTesting{
			TestType:   model.TestTypeLab,
			Substances: []string{model.SubstanceCannabis},
		}
	}))
	require.NoError(t, err)

	// Switching away from testing drops the substructure even though the
	// request never mentioned it.
	web := model.ServiceTypeWeb
	start := "23:45"
	duration := 30
	updated, err := svc.UpdateAppointment(ctx, created.ID, &model.UpdateAppointmentRequest{
		ServiceType: &web,
		StartTime:   &start,
		Duration:    &duration,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.DrugTesting)
	assert.Equal(t, "00:15", updated.EndTime)
}

func TestRescheduleMovesToNoonOnTargetDay(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.CreateAppointment(ctx, createReq())
	require.NoError(t, err)

	moved, err := svc.Reschedule(ctx, created.ID, &model.RescheduleAppointmentRequest{
		Date:    "2024-03-22",
		Version: created.Version,
	})
	require.NoError(t, err)

	assert.Equal(t, 22, moved.Date.Day())
	assert.Equal(t, 12, moved.Date.Hour())
	assert.Equal(t, "09:30", moved.StartTime, "time of day is untouched")
	assert.Greater(t, moved.Version, created.Version)
}

func TestRescheduleRetriesTransientFailures(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.CreateAppointment(ctx, createReq())
	require.NoError(t, err)

	repo.failDates = 2
	moved, err := svc.Reschedule(ctx, created.ID, &model.RescheduleAppointmentRequest{Date: "2024-03-23"})
	require.NoError(t, err)
	assert.Equal(t, 23, moved.Date.Day())
	assert.Equal(t, 3, repo.updateDateN)
}

func TestRescheduleDoesNotRetryNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	_, err := svc.Reschedule(context.Background(), uuid.New(), &model.RescheduleAppointmentRequest{Date: "2024-03-23"})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
	assert.Equal(t, 1, repo.updateDateN)
}

func TestComputeEndTime(t *testing.T) {
	cases := []struct {
		start    string
		minutes  int
		expected string
	}{
		{"09:00", 60, "10:00"},
		{"09:30", 45, "10:15"},
		{"23:45", 30, "00:15"},
		{"00:00", 1440, "00:00"},
		{"13:10", 0, "13:10"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, ComputeEndTime(tc.start, tc.minutes), "%s + %dm", tc.start, tc.minutes)
	}
}
