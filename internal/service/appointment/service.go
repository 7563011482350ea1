package appointment

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/testra/backoffice-api/internal/calendar"
	"github.com/testra/backoffice-api/internal/model"
	"github.com/testra/backoffice-api/internal/repository"
	apperrors "github.com/testra/backoffice-api/pkg/errors"
	"github.com/testra/backoffice-api/pkg/retry"
)

// dedupeWindow is how long a just-submitted create blocks an identical
// resubmission. Double-clicked save buttons land well inside it.
const dedupeWindow = 10 * time.Second

// CompanyNames resolves company ids to display names for calendar rendering.
type CompanyNames interface {
	NameMap(ctx context.Context) (map[uuid.UUID]string, error)
}

type Service struct {
	repo      repository.AppointmentRepository
	companies CompanyNames
	retryCfg  retry.Config
	recent    *gocache.Cache
}

func NewService(repo repository.AppointmentRepository, companies CompanyNames) *Service {
	return &Service{
		repo:      repo,
		companies: companies,
		retryCfg:  retry.DefaultConfig(),
		recent:    gocache.New(dedupeWindow, time.Minute),
	}
}

func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.BadRequest("title is required", nil)
	}

	day, err := parseDay(req.Date)
	if err != nil {
		return nil, err
	}

	testing, err := sanitizeDrugTesting(req.ServiceType, req.DrugTesting)
	if err != nil {
		return nil, err
	}

	status := model.AppointmentStatusScheduled
	if req.Status != "" {
		status = model.AppointmentStatus(req.Status)
	}

	appointment := &model.Appointment{
		Title:       title,
		CompanyID:   req.CompanyID,
		Date:        day,
		StartTime:   req.StartTime,
		Duration:    req.Duration,
		EndTime:     ComputeEndTime(req.StartTime, req.Duration),
		ServiceType: req.ServiceType,
		Status:      status,
		Location:    strings.TrimSpace(req.Location),
		Notes:       req.Notes,
		DrugTesting: testing,
	}

	key := dedupeKey(appointment)
	if _, seen := s.recent.Get(key); seen {
		return nil, apperrors.Conflict("an identical appointment was just submitted", nil)
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, err
	}
	s.recent.Set(key, struct{}{}, dedupeWindow)
	return appointment, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperrors.BadRequest("title is required", nil)
		}
		appointment.Title = title
	}
	if req.CompanyID != nil {
		appointment.CompanyID = req.CompanyID
	}
	if req.Date != nil {
		day, err := parseDay(*req.Date)
		if err != nil {
			return nil, err
		}
		appointment.Date = day
	}
	if req.StartTime != nil {
		appointment.StartTime = *req.StartTime
	}
	if req.Duration != nil {
		appointment.Duration = *req.Duration
	}
	if req.ServiceType != nil {
		appointment.ServiceType = *req.ServiceType
	}
	if req.Status != nil {
		appointment.Status = model.AppointmentStatus(*req.Status)
	}
	if req.Location != nil {
		appointment.Location = strings.TrimSpace(*req.Location)
	}
	if req.Notes != nil {
		appointment.Notes = *req.Notes
	}
	if req.DrugTesting != nil {
		appointment.DrugTesting = req.DrugTesting
	}

	// End time and the testing substructure are derived state, recomputed on
	// every save from whatever the record now says.
	appointment.EndTime = ComputeEndTime(appointment.StartTime, appointment.Duration)
	appointment.DrugTesting, err = sanitizeDrugTesting(appointment.ServiceType, appointment.DrugTesting)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

// Reschedule moves an appointment to another calendar day, the persistence
// half of drag and drop. The write is retried with backoff; last write wins,
// the caller's version is informational only.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, req *model.RescheduleAppointmentRequest) (*model.Appointment, error) {
	day, err := parseDay(req.Date)
	if err != nil {
		return nil, err
	}

	var updated *model.Appointment
	err = retry.Do(ctx, s.retryCfg, func(ctx context.Context) error {
		var rerr error
		updated, rerr = s.repo.UpdateDate(ctx, id, day)
		if _, ok := apperrors.AsAppError(rerr); ok {
			// Not found etc. will not heal on retry.
			return retry.Permanent(rerr)
		}
		return rerr
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.repo.List(ctx, filters)
}

// CalendarView assembles the full month or week payload around ref.
func (s *Service) CalendarView(ctx context.Context, ref time.Time, mode calendar.ViewMode) (*calendar.View, error) {
	grid := calendar.BuildGrid(ref, mode, time.Now())
	start, end := grid.Range()

	// Stored dates are noon-anchored, so the range must reach past the last
	// day's midnight.
	appts, err := s.repo.List(ctx, &model.AppointmentFilters{StartDate: start, EndDate: end.AddDate(0, 0, 1)})
	if err != nil {
		return nil, err
	}
	names, err := s.companies.NameMap(ctx)
	if err != nil {
		return nil, err
	}

	view := calendar.BuildView(grid, calendar.Bucketize(appts, grid), names)
	return &view, nil
}

// CalendarStats computes the dashboard tiles. The month window bounds the
// query start; the end stays open because the upcoming-testing tile counts
// arbitrarily far ahead.
func (s *Service) CalendarStats(ctx context.Context) (*calendar.Stats, error) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	appts, err := s.repo.List(ctx, &model.AppointmentFilters{StartDate: monthStart})
	if err != nil {
		return nil, err
	}
	stats := calendar.ComputeStats(appts, now)
	return &stats, nil
}

// UpcomingAppointments returns the next scheduled appointments from today on.
func (s *Service) UpcomingAppointments(ctx context.Context, limit int) ([]*model.Appointment, error) {
	now := time.Now()
	appts, err := s.repo.List(ctx, &model.AppointmentFilters{StartDate: now.AddDate(0, 0, -1)})
	if err != nil {
		return nil, err
	}
	return calendar.Upcoming(appts, now, limit), nil
}

// ComputeEndTime adds minutes to an "HH:MM" start, wrapping past midnight.
// "23:45" plus 30 yields "00:15".
func ComputeEndTime(start string, minutes int) string {
	parts := strings.SplitN(start, ":", 2)
	if len(parts) != 2 {
		return start
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return start
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return start
	}
	total := (h*60 + m + minutes) % (24 * 60)
	if total < 0 {
		total += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// sanitizeDrugTesting enforces the service-type coupling: the testing
// substructure exists iff the service type is "testing", and when it does,
// its own required fields hold.
func sanitizeDrugTesting(serviceType model.ServiceType, dt *model.DrugTesting) (*model.DrugTesting, error) {
	if serviceType != model.ServiceTypeTesting {
		return nil, nil
	}
	if dt == nil {
		return nil, apperrors.BadRequest("drug testing details are required for testing appointments", nil)
	}
	switch dt.TestType {
	case model.TestTypePOCT, model.TestTypePOCTToLab:
		if strings.TrimSpace(dt.TestingKit) == "" {
			return nil, apperrors.BadRequest("testing kit is required for on-site test types", nil)
		}
	case model.TestTypeLab:
	default:
		return nil, apperrors.BadRequest("test type is required", nil)
	}
	if len(dt.Substances) == 0 {
		return nil, apperrors.BadRequest("at least one substance is required", nil)
	}
	return dt, nil
}

// parseDay interprets a "YYYY-MM-DD" form value as that local day anchored at
// noon. Noon keeps DST transitions and timezone offsets from nudging the
// stored instant across a day boundary.
func parseDay(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, apperrors.BadRequest("invalid date, expected YYYY-MM-DD", err)
	}
	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 12, 0, 0, 0, time.Local), nil
}

func dedupeKey(a *model.Appointment) string {
	company := ""
	if a.CompanyID != nil {
		company = a.CompanyID.String()
	}
	return strings.Join([]string{a.Title, a.Date.Format("2006-01-02"), a.StartTime, company}, "|")
}
