package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/testra/backoffice-api/internal/model"
	apperrors "github.com/testra/backoffice-api/pkg/errors"
)

const collectionAppointments = "appointments"

const appointmentColumns = `
	id, title, company_id, date, start_time, duration, end_time,
	service_type, status, location, notes, drug_testing, version,
	created_at, updated_at
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, title, company_id, date, start_time, duration, end_time,
			service_type, status, location, notes, drug_testing, version,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	appointment.ID = uuid.New()
	appointment.Version = 1
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			appointment.ID,
			appointment.Title,
			appointment.CompanyID,
			appointment.Date,
			appointment.StartTime,
			appointment.Duration,
			appointment.EndTime,
			appointment.ServiceType,
			appointment.Status,
			appointment.Location,
			appointment.Notes,
			appointment.DrugTesting,
			appointment.Version,
			appointment.CreatedAt,
			appointment.UpdatedAt,
		)
		if err != nil {
			return err
		}
		return r.CreateChangeEventTx(ctx, tx, collectionAppointments, "created", appointment.ID, appointment)
	})
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	err := r.GetDB().GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET title = $1, company_id = $2, date = $3, start_time = $4,
			duration = $5, end_time = $6, service_type = $7, status = $8,
			location = $9, notes = $10, drug_testing = $11,
			version = version + 1, updated_at = $12
		WHERE id = $13
	`
	appointment.UpdatedAt = time.Now()

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			appointment.Title,
			appointment.CompanyID,
			appointment.Date,
			appointment.StartTime,
			appointment.Duration,
			appointment.EndTime,
			appointment.ServiceType,
			appointment.Status,
			appointment.Location,
			appointment.Notes,
			appointment.DrugTesting,
			appointment.UpdatedAt,
			appointment.ID,
		)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperrors.NotFound("appointment", nil)
		}
		appointment.Version++
		return r.CreateChangeEventTx(ctx, tx, collectionAppointments, "updated", appointment.ID, appointment)
	})
	if err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			return err
		}
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) UpdateDate(ctx context.Context, id uuid.UUID, date time.Time) (*model.Appointment, error) {
	query := `
		UPDATE appointments
		SET date = $1, version = version + 1, updated_at = $2
		WHERE id = $3
		RETURNING ` + appointmentColumns

	var appointment model.Appointment
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &appointment, query, date, time.Now(), id)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("appointment", err)
		}
		if err != nil {
			return err
		}
		return r.CreateChangeEventTx(ctx, tx, collectionAppointments, "rescheduled", appointment.ID, &appointment)
	})
	if err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to reschedule appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperrors.NotFound("appointment", nil)
		}
		return r.CreateChangeEventTx(ctx, tx, collectionAppointments, "deleted", id, nil)
	})
	if err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			return err
		}
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.CompanyID != nil {
			query += fmt.Sprintf(" AND company_id = $%d", argCount)
			args = append(args, *filters.CompanyID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if filters.ServiceType != "" {
			query += fmt.Sprintf(" AND service_type = $%d", argCount)
			args = append(args, filters.ServiceType)
			argCount++
		}
		if !filters.StartDate.IsZero() {
			query += fmt.Sprintf(" AND date >= $%d", argCount)
			args = append(args, filters.StartDate)
			argCount++
		}
		if !filters.EndDate.IsZero() {
			query += fmt.Sprintf(" AND date <= $%d", argCount)
			args = append(args, filters.EndDate)
			argCount++
		}
	}

	query += " ORDER BY date ASC, start_time ASC, created_at ASC"

	appointments := []*model.Appointment{}
	if err := r.GetDB().SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}
