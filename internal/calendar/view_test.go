package calendar

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testra/backoffice-api/internal/model"
)

func TestBuildViewMonthOverflow(t *testing.T) {
	day := date(2024, time.March, 5)
	grid := BuildGrid(day, ModeMonth, day)

	appts := []*model.Appointment{
		apt(day, "08:00"),
		apt(day, "09:00"),
		apt(day, "10:00"),
		apt(day, "11:00"),
		apt(day, "12:00"),
	}
	view := BuildView(grid, Bucketize(appts, grid), nil)

	var cell *CellView
	for i := range view.Cells {
		if view.Cells[i].Date == "2024-03-05" {
			cell = &view.Cells[i]
			break
		}
	}
	require.NotNil(t, cell)

	assert.Len(t, cell.Indicators, MonthVisibleCap)
	assert.Equal(t, 2, cell.Overflow)
	assert.Equal(t, 5, cell.Total)
	assert.Len(t, cell.Detail, 5, "popover detail carries the full day")
	assert.Equal(t, "March 2024", view.Label)
}

func TestBuildViewWeekShowsAll(t *testing.T) {
	day := date(2024, time.March, 5)
	grid := BuildGrid(day, ModeWeek, day)

	appts := []*model.Appointment{
		apt(day, "08:00"), apt(day, "09:00"), apt(day, "10:00"),
		apt(day, "11:00"), apt(day, "12:00"),
	}
	view := BuildView(grid, Bucketize(appts, grid), nil)

	var cell *CellView
	for i := range view.Cells {
		if view.Cells[i].Date == "2024-03-05" {
			cell = &view.Cells[i]
			break
		}
	}
	require.NotNil(t, cell)
	assert.Len(t, cell.Indicators, 5)
	assert.Zero(t, cell.Overflow)
}

func TestBuildViewIndicatorFields(t *testing.T) {
	day := date(2024, time.March, 5)
	grid := BuildGrid(day, ModeWeek, day)

	companyID := uuid.New()
	a := apt(day, "14:05", testing_)
	a.CompanyID = &companyID
	a.DrugTesting = &model.DrugTesting{TestType: model.TestTypePOCT, Substances: []string{model.SubstanceCannabis}}

	names := map[uuid.UUID]string{companyID: "Acme Logistics"}
	view := BuildView(grid, Bucketize([]*model.Appointment{a}, grid), names)

	var ind *Indicator
	for i := range view.Cells {
		if len(view.Cells[i].Indicators) > 0 {
			ind = &view.Cells[i].Indicators[0]
			break
		}
	}
	require.NotNil(t, ind)
	assert.Equal(t, "Acme Logistics", ind.CompanyName)
	assert.Equal(t, model.TestTypePOCT, ind.TestBadge)
	assert.Equal(t, "2:05 PM", ind.TimeLabel)
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "12:00 AM", FormatTime("00:00"))
	assert.Equal(t, "12:15 PM", FormatTime("12:15"))
	assert.Equal(t, "11:59 PM", FormatTime("23:59"))
	assert.Equal(t, "9:30 AM", FormatTime("09:30"))
	assert.Equal(t, "garbage", FormatTime("garbage"))
}
