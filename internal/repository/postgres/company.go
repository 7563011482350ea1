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

const collectionCompanies = "companies"

// legacy_* columns survive from records imported before contact fields went
// multi-valued. Reads fold them into canonical shape via Normalize; writes
// never touch them.
const companyColumns = `
	id, company_name, contact_person, client_type, emails, phones, services,
	status, legacy_service_type, legacy_email, legacy_phone,
	created_at, updated_at
`

func (r *companyRepository) Create(ctx context.Context, company *model.Company) error {
	query := `
		INSERT INTO companies (
			id, company_name, contact_person, client_type, emails, phones,
			services, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	company.ID = uuid.New()
	company.CreatedAt = time.Now()
	company.UpdatedAt = time.Now()

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			company.ID,
			company.CompanyName,
			company.ContactPerson,
			company.ClientType,
			company.Emails,
			company.Phones,
			company.Services,
			company.Status,
			company.CreatedAt,
			company.UpdatedAt,
		)
		if err != nil {
			return err
		}
		return r.CreateChangeEventTx(ctx, tx, collectionCompanies, "created", company.ID, company)
	})
	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

func (r *companyRepository) Get(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`

	var company model.Company
	err := r.GetDB().GetContext(ctx, &company, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("company", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	company.Normalize()
	return &company, nil
}

func (r *companyRepository) Update(ctx context.Context, company *model.Company) error {
	// Writing canonical fields clears any legacy shape for good.
	query := `
		UPDATE companies
		SET company_name = $1, contact_person = $2, client_type = $3,
			emails = $4, phones = $5, services = $6, status = $7,
			legacy_service_type = NULL, legacy_email = NULL, legacy_phone = NULL,
			updated_at = $8
		WHERE id = $9
	`
	company.UpdatedAt = time.Now()

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			company.CompanyName,
			company.ContactPerson,
			company.ClientType,
			company.Emails,
			company.Phones,
			company.Services,
			company.Status,
			company.UpdatedAt,
			company.ID,
		)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperrors.NotFound("company", nil)
		}
		return r.CreateChangeEventTx(ctx, tx, collectionCompanies, "updated", company.ID, company)
	})
	if err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			return err
		}
		return fmt.Errorf("failed to update company: %w", err)
	}
	return nil
}

func (r *companyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperrors.NotFound("company", nil)
		}
		return r.CreateChangeEventTx(ctx, tx, collectionCompanies, "deleted", id, nil)
	})
	if err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			return err
		}
		return fmt.Errorf("failed to delete company: %w", err)
	}
	return nil
}

func (r *companyRepository) List(ctx context.Context) ([]*model.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY company_name ASC`

	companies := []*model.Company{}
	if err := r.GetDB().SelectContext(ctx, &companies, query); err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	for _, c := range companies {
		c.Normalize()
	}
	return companies, nil
}
