package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sharebite/internal/domain"
	"sharebite/internal/logger"
	"sharebite/internal/repository"
)

const postSelect = `SELECT p.id, p.title, p.description, p.category, p.quantity, p.pickup_location,
	p.pickup_time_start, p.pickup_time_end, p.expiry_date, p.special_instructions, p.status,
	p.posted_by, o.name, p.claimant_id, c.name, p.created_at, p.claimed_at, p.completed_at
	FROM food_posts p
	JOIN organizations o ON o.id = p.posted_by
	LEFT JOIN organizations c ON c.id = p.claimant_id`

type foodPostRepository struct {
	db *sql.DB
}

func NewFoodPostRepository(db *sql.DB) repository.FoodPostRepository {
	return &foodPostRepository{db: db}
}

func scanFoodPost(s scanner) (*domain.FoodPost, error) {
	p := &domain.FoodPost{}
	var claimantID sql.NullInt32
	var claimantName sql.NullString
	err := s.Scan(&p.ID, &p.Title, &p.Description, &p.Category, &p.Quantity, &p.PickupLocation,
		&p.PickupTimeStart, &p.PickupTimeEnd, &p.ExpiryDate, &p.SpecialInstructions, &p.Status,
		&p.PostedBy.ID, &p.PostedBy.Name, &claimantID, &claimantName, &p.CreatedAt, &p.ClaimedAt, &p.CompletedAt)
	if err != nil {
		return nil, mapError(err)
	}
	if claimantID.Valid {
		p.Claimant = &domain.OrgRef{ID: claimantID.Int32, Name: claimantName.String}
	}
	return p, nil
}

func (r *foodPostRepository) query(ctx context.Context, query string, args ...any) ([]domain.FoodPost, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.FoodPost
	for rows.Next() {
		p, err := scanFoodPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func (r *foodPostRepository) Create(ctx context.Context, p *domain.FoodPost) error {
	query := `INSERT INTO food_posts (title, description, category, quantity, pickup_location, pickup_time_start,
	          pickup_time_end, expiry_date, special_instructions, status, posted_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, p.Title, p.Description, p.Category, p.Quantity, p.PickupLocation,
		p.PickupTimeStart, p.PickupTimeEnd, p.ExpiryDate, p.SpecialInstructions, p.Status, p.PostedBy.ID).
		Scan(&p.ID, &p.CreatedAt)
	return mapError(err)
}

func (r *foodPostRepository) GetByID(ctx context.Context, id int32) (*domain.FoodPost, error) {
	return scanFoodPost(r.db.QueryRowContext(ctx, postSelect+` WHERE p.id = $1`, id))
}

func (r *foodPostRepository) List(ctx context.Context, status domain.FoodStatus) ([]domain.FoodPost, error) {
	if status == "" {
		return r.query(ctx, postSelect+` ORDER BY p.created_at DESC, p.id DESC`)
	}
	return r.query(ctx, postSelect+` WHERE p.status = $1 ORDER BY p.created_at DESC, p.id DESC`, status)
}

func (r *foodPostRepository) ListByOwner(ctx context.Context, ownerID int32) ([]domain.FoodPost, error) {
	return r.query(ctx, postSelect+` WHERE p.posted_by = $1 ORDER BY p.created_at DESC, p.id DESC`, ownerID)
}

func (r *foodPostRepository) ListByClaimant(ctx context.Context, claimantID int32) ([]domain.FoodPost, error) {
	return r.query(ctx, postSelect+` WHERE p.claimant_id = $1 ORDER BY p.claimed_at DESC, p.id DESC`, claimantID)
}

// UpdateLifecycle is a compare-and-set on status; the database serializes
// concurrent claims of the same post.
func (r *foodPostRepository) UpdateLifecycle(ctx context.Context, p *domain.FoodPost, from domain.FoodStatus) error {
	var claimantID *int32
	if p.Claimant != nil {
		claimantID = &p.Claimant.ID
	}
	query := `UPDATE food_posts SET status=$1, claimant_id=$2, claimed_at=$3, completed_at=$4
	          WHERE id=$5 AND status=$6`
	logger.DatabaseCall("update_lifecycle", "food_posts", "post_id", p.ID, "from", from, "to", p.Status)
	res, err := r.db.ExecContext(ctx, query, p.Status, nullInt32(claimantID), p.ClaimedAt, p.CompletedAt, p.ID, from)
	if err != nil {
		logger.DatabaseResult("update_lifecycle", 0, err)
		return mapError(err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("update_lifecycle", n, err)
	if err != nil {
		return err
	}
	if n == 0 {
		return r.missOrStale(ctx, p.ID)
	}
	return nil
}

func (r *foodPostRepository) Delete(ctx context.Context, id int32, from domain.FoodStatus) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM food_posts WHERE id=$1 AND status=$2`, id, from)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return r.missOrStale(ctx, id)
	}
	return nil
}

// missOrStale explains why a conditional write touched no rows.
func (r *foodPostRepository) missOrStale(ctx context.Context, id int32) error {
	var status string
	err := r.db.QueryRowContext(ctx, `SELECT status FROM food_posts WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	if err != nil {
		return err
	}
	return repository.ErrStaleState
}

func (r *foodPostRepository) ListExpirable(ctx context.Context, cutoff time.Time) ([]domain.FoodPost, error) {
	return r.query(ctx, postSelect+` WHERE p.status = 'available' AND p.expiry_date < $1 ORDER BY p.expiry_date`, cutoff)
}

func (r *foodPostRepository) CountActivity(ctx context.Context, orgID int32) (domain.ActivityCounts, error) {
	query := `SELECT
	            COUNT(*) FILTER (WHERE posted_by = $1),
	            COUNT(*) FILTER (WHERE posted_by = $1 AND status IN ('available', 'claimed')),
	            COUNT(*) FILTER (WHERE posted_by = $1 AND status = 'completed'),
	            COUNT(*) FILTER (WHERE claimant_id = $1),
	            COUNT(*) FILTER (WHERE claimant_id = $1 AND status = 'claimed'),
	            COUNT(*) FILTER (WHERE claimant_id = $1 AND status = 'completed')
	          FROM food_posts WHERE posted_by = $1 OR claimant_id = $1`
	var c domain.ActivityCounts
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(&c.TotalPosts, &c.ActiveDonations, &c.CompletedDonations,
		&c.TotalClaims, &c.ActiveClaims, &c.CompletedClaims)
	return c, mapError(err)
}
