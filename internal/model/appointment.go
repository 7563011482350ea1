package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

type ServiceType string

const (
	ServiceTypeTesting ServiceType = "testing"
	ServiceTypeWeb     ServiceType = "web"
	ServiceTypeIT      ServiceType = "it"
	ServiceTypeOther   ServiceType = "other"
)

// Drug test administration types. POCT variants are administered on-site
// and require a physical testing kit.
const (
	TestTypePOCT      = "poct"
	TestTypePOCTToLab = "poct-to-lab"
	TestTypeLab       = "lab"
)

// Substances screened by a drug test panel.
const (
	SubstanceAmphetamines    = "amphetamines"
	SubstanceBenzodiazepines = "benzodiazepines"
	SubstanceCannabis        = "cannabis"
	SubstanceCocaine         = "cocaine"
	SubstanceOpiates         = "opiates"
	SubstanceAlcohol         = "alcohol"
)

// DrugTesting holds the testing metadata attached to an appointment.
// It is present iff the appointment's service type is "testing".
type DrugTesting struct {
	TestType          string   `json:"test_type"`
	TestingKit        string   `json:"testing_kit,omitempty"`
	Substances        []string `json:"substances"`
	CleanCardRequired bool     `json:"clean_card_required"`
}

// Value implements driver.Valuer so the substructure persists as JSONB.
func (d DrugTesting) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner.
func (d *DrugTesting) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported drug testing column type %T", src)
	}
}

// Appointment is a single scheduled engagement on the calendar. Date carries
// day granularity only; the stored instant is anchored at local noon so that
// timezone and DST arithmetic cannot shift the calendar day. StartTime and
// EndTime are wall-clock "HH:MM" strings; EndTime is derived from StartTime
// plus Duration and recomputed on every save, never trusted from input.
type Appointment struct {
	Base
	Title       string            `json:"title" db:"title"`
	CompanyID   *uuid.UUID        `json:"company_id,omitempty" db:"company_id"`
	Date        time.Time         `json:"date" db:"date"`
	StartTime   string            `json:"start_time" db:"start_time"`
	Duration    int               `json:"duration" db:"duration"`
	EndTime     string            `json:"end_time" db:"end_time"`
	ServiceType ServiceType       `json:"service_type" db:"service_type"`
	Status      AppointmentStatus `json:"status" db:"status"`
	Location    string            `json:"location,omitempty" db:"location"`
	Notes       string            `json:"notes,omitempty" db:"notes"`
	DrugTesting *DrugTesting      `json:"drug_testing,omitempty" db:"drug_testing"`
	Version     int64             `json:"version" db:"version"`
}

// Day returns the appointment's calendar day at local midnight.
func (a *Appointment) Day() time.Time {
	y, m, d := a.Date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, a.Date.Location())
}

type CreateAppointmentRequest struct {
	Title       string       `json:"title" binding:"required"`
	CompanyID   *uuid.UUID   `json:"company_id"`
	Date        string       `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime   string       `json:"start_time" binding:"required,datetime=15:04"`
	Duration    int          `json:"duration" binding:"required,gt=0"`
	ServiceType ServiceType  `json:"service_type" binding:"required,oneof=testing web it other"`
	Status      string       `json:"status" binding:"omitempty,oneof=scheduled confirmed completed cancelled"`
	Location    string       `json:"location"`
	Notes       string       `json:"notes"`
	DrugTesting *DrugTesting `json:"drug_testing"`
}

type UpdateAppointmentRequest struct {
	Title       *string      `json:"title"`
	CompanyID   *uuid.UUID   `json:"company_id"`
	Date        *string      `json:"date" binding:"omitempty,datetime=2006-01-02"`
	StartTime   *string      `json:"start_time" binding:"omitempty,datetime=15:04"`
	Duration    *int         `json:"duration" binding:"omitempty,gt=0"`
	ServiceType *ServiceType `json:"service_type" binding:"omitempty,oneof=testing web it other"`
	Status      *string      `json:"status" binding:"omitempty,oneof=scheduled confirmed completed cancelled"`
	Location    *string      `json:"location"`
	Notes       *string      `json:"notes"`
	DrugTesting *DrugTesting `json:"drug_testing"`
}

// RescheduleAppointmentRequest moves an appointment to a new calendar day.
// Only the date changes; time-of-day fields are untouched. Version is the
// version the caller last saw, for last-write-wins detection.
type RescheduleAppointmentRequest struct {
	Date    string `json:"date" binding:"required,datetime=2006-01-02"`
	Version int64  `json:"version"`
}

type AppointmentFilters struct {
	CompanyID   *uuid.UUID
	Status      AppointmentStatus
	ServiceType ServiceType
	StartDate   time.Time
	EndDate     time.Time
}
