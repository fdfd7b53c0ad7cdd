package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"teamperf/internal/domain"
	"teamperf/pkg/database"
)

type ratingRepository struct {
	db *database.PostgresDB
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *database.PostgresDB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	if rating.ID == "" {
		rating.ID = uuid.NewString()
	}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO ratings (id, member_id, activity_id, rater_id, value)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, rating.ID, rating.MemberID, rating.ActivityID, rating.RaterID, rating.Value).Scan(&rating.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create rating: %w", err)
	}
	return nil
}

// periodBounds turns an optional period into nullable query arguments
func periodBounds(period *domain.Period) (start, end any) {
	if period == nil {
		return nil, nil
	}
	return period.Start, period.End
}

func (r *ratingRepository) ListByMember(ctx context.Context, memberID string, period *domain.Period) ([]domain.RatingDetail, error) {
	start, end := periodBounds(period)
	rows, err := r.db.Pool.Query(ctx, `
		SELECT r.id, r.member_id, r.activity_id, r.rater_id, r.value, r.created_at,
			a.name, c.id, c.name
		FROM ratings r
		JOIN activities a ON a.id = r.activity_id
		JOIN categories c ON c.id = a.category_id
		WHERE r.member_id = $1
			AND ($2::timestamptz IS NULL OR r.created_at >= $2)
			AND ($3::timestamptz IS NULL OR r.created_at < $3)
		ORDER BY r.created_at DESC, r.id
	`, memberID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	defer rows.Close()

	ratings := []domain.RatingDetail{}
	for rows.Next() {
		var d domain.RatingDetail
		if err := rows.Scan(&d.ID, &d.MemberID, &d.ActivityID, &d.RaterID, &d.Value, &d.CreatedAt,
			&d.ActivityName, &d.CategoryID, &d.CategoryName); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, d)
	}
	return ratings, rows.Err()
}

func (r *ratingRepository) ValuesByOrganization(ctx context.Context, orgID string) (map[string][]int, error) {
	return r.values(ctx, "m.organization_id = $1", orgID)
}

func (r *ratingRepository) ValuesByTeam(ctx context.Context, orgID, teamID string) (map[string][]int, error) {
	return r.values(ctx, "m.organization_id = $1 AND m.team_id = $2", orgID, teamID)
}

// values reads from the replica; dashboards tolerate replication lag
func (r *ratingRepository) values(ctx context.Context, where string, args ...any) (map[string][]int, error) {
	query := fmt.Sprintf(`
		SELECT r.member_id, r.value
		FROM ratings r
		JOIN members m ON m.id = r.member_id
		WHERE %s AND %s
	`, where, live("m", ExcludeDeleted))

	rows, err := r.db.GetReadPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read rating values: %w", err)
	}
	defer rows.Close()

	values := make(map[string][]int)
	for rows.Next() {
		var memberID string
		var value int
		if err := rows.Scan(&memberID, &value); err != nil {
			return nil, fmt.Errorf("failed to scan rating value: %w", err)
		}
		values[memberID] = append(values[memberID], value)
	}
	return values, rows.Err()
}
