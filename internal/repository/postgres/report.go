package postgres

import (
	"context"
	"database/sql"

	"sharebite/internal/domain"
	"sharebite/internal/repository"
)

const reportColumns = `id, type, reported_entity_type, reported_entity_id, reported_entity_name, reported_by_id,
	reported_by_name, description, priority, status, created_at, resolved_at`

type reportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

func scanReport(s scanner) (*domain.Report, error) {
	rp := &domain.Report{}
	err := s.Scan(&rp.ID, &rp.Type, &rp.ReportedEntity.Type, &rp.ReportedEntity.ID, &rp.ReportedEntity.Name,
		&rp.ReportedBy.ID, &rp.ReportedBy.Name, &rp.Description, &rp.Priority, &rp.Status, &rp.CreatedAt, &rp.ResolvedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return rp, nil
}

func (r *reportRepository) Create(ctx context.Context, rp *domain.Report) error {
	query := `INSERT INTO reports (` + reportColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.ExecContext(ctx, query, rp.ID, rp.Type, rp.ReportedEntity.Type, rp.ReportedEntity.ID,
		rp.ReportedEntity.Name, rp.ReportedBy.ID, rp.ReportedBy.Name, rp.Description, rp.Priority, rp.Status,
		rp.CreatedAt, rp.ResolvedAt)
	return mapError(err)
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	return scanReport(r.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id))
}

func (r *reportRepository) List(ctx context.Context) ([]domain.Report, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+reportColumns+` FROM reports ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		rp, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *rp)
	}
	return reports, rows.Err()
}

func (r *reportRepository) Update(ctx context.Context, rp *domain.Report) error {
	res, err := r.db.ExecContext(ctx, `UPDATE reports SET status=$1, priority=$2, resolved_at=$3 WHERE id=$4`,
		rp.Status, rp.Priority, rp.ResolvedAt, rp.ID)
	if err != nil {
		return mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
