package postgres

import (
	"context"
	"database/sql"

	"sharebite/internal/domain"
	"sharebite/internal/repository"
)

const orgColumns = `id, name, organization_type, role, email, password_hash, registration_number, contact_person,
	phone_number, address, verification_status, verification_notes, suspended, suspension_reason, created_at, verified_at`

type organizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) repository.OrganizationRepository {
	return &organizationRepository{db: db}
}

func scanOrganization(s scanner) (*domain.Organization, error) {
	o := &domain.Organization{}
	err := s.Scan(&o.ID, &o.Name, &o.OrganizationType, &o.Role, &o.Email, &o.PasswordHash, &o.RegistrationNumber,
		&o.ContactPerson, &o.PhoneNumber, &o.Address, &o.VerificationStatus, &o.VerificationNotes, &o.Suspended,
		&o.SuspensionReason, &o.CreatedAt, &o.VerifiedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return o, nil
}

func (r *organizationRepository) Create(ctx context.Context, o *domain.Organization) error {
	query := `INSERT INTO organizations (name, organization_type, role, email, password_hash, registration_number,
	          contact_person, phone_number, address, verification_status, verified_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, o.Name, o.OrganizationType, o.Role, o.Email, o.PasswordHash,
		o.RegistrationNumber, o.ContactPerson, o.PhoneNumber, o.Address, o.VerificationStatus, o.VerifiedAt).
		Scan(&o.ID, &o.CreatedAt)
	return mapError(err)
}

func (r *organizationRepository) GetByID(ctx context.Context, id int32) (*domain.Organization, error) {
	query := `SELECT ` + orgColumns + ` FROM organizations WHERE id = $1`
	return scanOrganization(r.db.QueryRowContext(ctx, query, id))
}

func (r *organizationRepository) GetByEmail(ctx context.Context, email string) (*domain.Organization, error) {
	query := `SELECT ` + orgColumns + ` FROM organizations WHERE LOWER(email) = LOWER($1)`
	return scanOrganization(r.db.QueryRowContext(ctx, query, email))
}

func (r *organizationRepository) Update(ctx context.Context, o *domain.Organization) error {
	query := `UPDATE organizations SET name=$1, contact_person=$2, phone_number=$3, address=$4,
	          verification_status=$5, verification_notes=$6, suspended=$7, suspension_reason=$8, verified_at=$9
	          WHERE id=$10`
	res, err := r.db.ExecContext(ctx, query, o.Name, o.ContactPerson, o.PhoneNumber, o.Address,
		o.VerificationStatus, o.VerificationNotes, o.Suspended, o.SuspensionReason, o.VerifiedAt, o.ID)
	if err != nil {
		return mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *organizationRepository) ListByStatus(ctx context.Context, status domain.VerificationStatus) ([]domain.Organization, error) {
	query := `SELECT ` + orgColumns + ` FROM organizations
	          WHERE verification_status = $1 AND role <> 'admin' ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []domain.Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, *o)
	}
	return orgs, rows.Err()
}
