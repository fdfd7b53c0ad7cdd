package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"teamperf/internal/domain"
	"teamperf/pkg/database"
)

const reviewColumns = `rv.id, rv.organization_id, rv.member_id, rv.period_start, rv.period_end, rv.version, rv.status,
	rv.document, rv.created_by, rv.created_at, rv.updated_at, rv.published_at, rv.acknowledged_at, rv.deleted_at`

type reviewRepository struct {
	db        *database.PostgresDB
	txTimeout time.Duration
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *database.PostgresDB, txTimeout time.Duration) ReviewRepository {
	return &reviewRepository{db: db, txTimeout: txTimeout}
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	var rv domain.Review
	var document []byte
	if err := row.Scan(&rv.ID, &rv.OrganizationID, &rv.MemberID, &rv.PeriodStart, &rv.PeriodEnd, &rv.Version, &rv.Status,
		&document, &rv.CreatedBy, &rv.CreatedAt, &rv.UpdatedAt, &rv.PublishedAt, &rv.AcknowledgedAt, &rv.DeletedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(document, &rv.Document); err != nil {
		return nil, fmt.Errorf("failed to decode review document: %w", err)
	}
	return &rv, nil
}

// CreateVersion serializes writers for the same member and period with an
// advisory lock, then takes the next version number. Soft-deleted drafts
// still hold their version.
func (r *reviewRepository) CreateVersion(ctx context.Context, review *domain.Review) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if review.Status == "" {
		review.Status = domain.ReviewDraft
	}
	document, err := json.Marshal(review.Document)
	if err != nil {
		return fmt.Errorf("failed to encode review document: %w", err)
	}

	return r.db.WithTx(ctx, r.txTimeout, func(tx pgx.Tx) error {
		lockKey := fmt.Sprintf("review:%s:%d:%d", review.MemberID, review.PeriodStart.Unix(), review.PeriodEnd.Unix())
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
			return fmt.Errorf("failed to lock review series: %w", err)
		}

		err := tx.QueryRow(ctx, `
			SELECT COALESCE(MAX(version), 0) + 1 FROM reviews
			WHERE member_id = $1 AND period_start = $2 AND period_end = $3
		`, review.MemberID, review.PeriodStart, review.PeriodEnd).Scan(&review.Version)
		if err != nil {
			return fmt.Errorf("failed to compute review version: %w", err)
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO reviews (id, organization_id, member_id, period_start, period_end, version, status, document, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING created_at, updated_at
		`, review.ID, review.OrganizationID, review.MemberID, review.PeriodStart, review.PeriodEnd,
			review.Version, review.Status, document, review.CreatedBy,
		).Scan(&review.CreatedAt, &review.UpdatedAt)
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("review version %d: %w", review.Version, domain.ErrDuplicate)
		}
		if err != nil {
			return fmt.Errorf("failed to insert review: %w", err)
		}
		return nil
	})
}

func (r *reviewRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews rv WHERE rv.organization_id = $1 AND rv.id = $2 AND %s`,
		reviewColumns, live("rv", ExcludeDeleted))

	rv, err := scanReview(r.db.Pool.QueryRow(ctx, query, orgID, id))
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return rv, nil
}

func (r *reviewRepository) ListByMember(ctx context.Context, orgID, memberID string) ([]domain.Review, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM reviews rv
		WHERE rv.organization_id = $1 AND rv.member_id = $2 AND %s
		ORDER BY rv.period_end DESC, rv.version DESC
	`, reviewColumns, live("rv", ExcludeDeleted))

	rows, err := r.db.Pool.Query(ctx, query, orgID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	return reviews, rows.Err()
}

// Transition is a compare-and-set on status so concurrent callers cannot both win
func (r *reviewRepository) Transition(ctx context.Context, orgID, id string, from, to domain.ReviewStatus) (*domain.Review, error) {
	if !from.CanTransitionTo(to) {
		return nil, domain.ErrInvalidTransition
	}

	query := fmt.Sprintf(`
		UPDATE reviews rv SET
			status = $4,
			updated_at = NOW(),
			published_at = CASE WHEN $4 = 'PUBLISHED' THEN NOW() ELSE rv.published_at END,
			acknowledged_at = CASE WHEN $4 = 'ACKNOWLEDGED' THEN NOW() ELSE rv.acknowledged_at END
		WHERE rv.organization_id = $1 AND rv.id = $2 AND rv.status = $3 AND %s
		RETURNING %s
	`, live("rv", ExcludeDeleted), reviewColumns)

	rv, err := scanReview(r.db.Pool.QueryRow(ctx, query, orgID, id, string(from), string(to)))
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to transition review: %w", err)
	}
	return rv, nil
}

func (r *reviewRepository) SoftDeleteDraft(ctx context.Context, orgID, id string) (bool, error) {
	return softDelete(ctx, r.db.Pool, "reviews", "organization_id = $1 AND id = $2 AND status = 'DRAFT'", orgID, id)
}
