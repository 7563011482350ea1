package calendar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/testra/backoffice-api/internal/model"
)

// MonthVisibleCap is how many indicators a month-view day cell shows before
// collapsing the rest into a "+N more" affordance. Week view shows all.
const MonthVisibleCap = 3

// Indicator is one appointment entry inside a day cell.
type Indicator struct {
	ID          uuid.UUID               `json:"id"`
	Title       string                  `json:"title"`
	StartTime   string                  `json:"start_time"`
	TimeLabel   string                  `json:"time_label"`
	ServiceType model.ServiceType       `json:"service_type"`
	Status      model.AppointmentStatus `json:"status"`
	CompanyName string                  `json:"company_name,omitempty"`
	Location    string                  `json:"location,omitempty"`
	TestBadge   string                  `json:"test_badge,omitempty"`
}

// CellView is the rendered form of one grid cell. Indicators holds at most
// the visible cap; Overflow counts what the "+N more" affordance hides.
// Detail carries the full day's entries for the hover popover.
type CellView struct {
	Date       string      `json:"date,omitempty"`
	InRange    bool        `json:"in_range"`
	Today      bool        `json:"today"`
	Indicators []Indicator `json:"indicators,omitempty"`
	Overflow   int         `json:"overflow"`
	Total      int         `json:"total"`
	Detail     []Indicator `json:"detail,omitempty"`
}

// View is the complete calendar payload for one month or week.
type View struct {
	Mode  ViewMode   `json:"mode"`
	Label string     `json:"label"`
	Cells []CellView `json:"cells"`
}

// BuildView renders grid cells from the buckets. companyNames resolves
// linked company ids to display names; unlinked appointments render without
// one. Month mode truncates to MonthVisibleCap per cell, week mode shows
// everything.
func BuildView(grid Grid, buckets map[DayKey][]*model.Appointment, companyNames map[uuid.UUID]string) View {
	cap := MonthVisibleCap
	if grid.Mode == ModeWeek {
		cap = 0
	}

	cells := make([]CellView, 0, len(grid.Cells))
	for _, cell := range grid.Cells {
		cv := CellView{InRange: cell.InRange, Today: cell.Today}
		if !cell.InRange {
			cells = append(cells, cv)
			continue
		}
		cv.Date = string(Key(cell.Date))

		day := buckets[Key(cell.Date)]
		cv.Total = len(day)
		cv.Detail = make([]Indicator, 0, len(day))
		for _, apt := range day {
			cv.Detail = append(cv.Detail, newIndicator(apt, companyNames))
		}

		if cap > 0 && len(cv.Detail) > cap {
			cv.Indicators = cv.Detail[:cap]
			cv.Overflow = len(cv.Detail) - cap
		} else {
			cv.Indicators = cv.Detail
		}
		cells = append(cells, cv)
	}

	start, _ := grid.Range()
	label := start.Format("January 2006")
	if grid.Mode == ModeWeek {
		_, end := grid.Range()
		label = fmt.Sprintf("%s – %s", start.Format("Jan 2"), end.Format("Jan 2, 2006"))
	}

	return View{Mode: grid.Mode, Label: label, Cells: cells}
}

func newIndicator(apt *model.Appointment, companyNames map[uuid.UUID]string) Indicator {
	ind := Indicator{
		ID:          apt.ID,
		Title:       apt.Title,
		StartTime:   apt.StartTime,
		TimeLabel:   FormatTime(apt.StartTime),
		ServiceType: apt.ServiceType,
		Status:      apt.Status,
		Location:    apt.Location,
	}
	if apt.CompanyID != nil {
		ind.CompanyName = companyNames[*apt.CompanyID]
	}
	if apt.DrugTesting != nil && apt.DrugTesting.TestType != "" {
		ind.TestBadge = apt.DrugTesting.TestType
	}
	return ind
}

// FormatTime renders "HH:MM" in 12-hour clock form, e.g. "14:05" → "2:05 PM".
func FormatTime(hhmm string) string {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return hhmm
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return hhmm
	}
	ampm := "AM"
	if hour >= 12 {
		ampm = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%s %s", display, parts[1], ampm)
}
