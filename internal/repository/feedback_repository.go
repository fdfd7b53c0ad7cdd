package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"teamperf/internal/domain"
	"teamperf/pkg/database"
)

type feedbackRepository struct {
	db *database.PostgresDB
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *database.PostgresDB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO feedback (id, member_id, author_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, feedback.ID, feedback.MemberID, feedback.AuthorID, feedback.Body).Scan(&feedback.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

func (r *feedbackRepository) ListByMember(ctx context.Context, memberID string, period *domain.Period) ([]domain.Feedback, error) {
	start, end := periodBounds(period)
	rows, err := r.db.Pool.Query(ctx, `
		SELECT f.id, f.member_id, f.author_id, f.body, f.created_at
		FROM feedback f
		WHERE f.member_id = $1
			AND ($2::timestamptz IS NULL OR f.created_at >= $2)
			AND ($3::timestamptz IS NULL OR f.created_at < $3)
		ORDER BY f.created_at DESC, f.id
	`, memberID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	items := []domain.Feedback{}
	for rows.Next() {
		var f domain.Feedback
		if err := rows.Scan(&f.ID, &f.MemberID, &f.AuthorID, &f.Body, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		items = append(items, f)
	}
	return items, rows.Err()
}
