package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"teamperf/internal/domain"
	"teamperf/pkg/database"
)

type activityRepository struct {
	db *database.PostgresDB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *database.PostgresDB) ActivityRepository {
	return &activityRepository{db: db}
}

// activitySelect joins the category name; built-in activities have no organization
func activitySelect(where string) string {
	return fmt.Sprintf(`
		SELECT a.id, a.category_id, c.name, a.organization_id, a.team_id, a.name, a.description, a.created_at, a.deleted_at
		FROM activities a
		JOIN categories c ON c.id = a.category_id
		WHERE (a.organization_id IS NULL OR a.organization_id = $1) AND %s AND %s AND %s
	`, live("a", ExcludeDeleted), live("c", ExcludeDeleted), where)
}

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var a domain.Activity
	if err := row.Scan(&a.ID, &a.CategoryID, &a.CategoryName, &a.OrganizationID, &a.TeamID, &a.Name, &a.Description, &a.CreatedAt, &a.DeletedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *activityRepository) List(ctx context.Context, orgID string, filter domain.ActivityFilter) ([]domain.Activity, error) {
	conds := []string{"TRUE"}
	args := []any{orgID}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		conds = append(conds, fmt.Sprintf("a.category_id = $%d", len(args)))
	}
	if filter.TeamID != "" {
		// Team filter keeps activities shared across the organization
		args = append(args, filter.TeamID)
		conds = append(conds, fmt.Sprintf("(a.team_id IS NULL OR a.team_id = $%d)", len(args)))
	}

	rows, err := r.db.Pool.Query(ctx, activitySelect(strings.Join(conds, " AND "))+" ORDER BY c.name, a.name", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	activities := []domain.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

func (r *activityRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Activity, error) {
	a, err := scanActivity(r.db.Pool.QueryRow(ctx, activitySelect("a.id = $2"), orgID, id))
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return a, nil
}

func (r *activityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO activities (id, category_id, organization_id, team_id, name, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, activity.ID, activity.CategoryID, activity.OrganizationID, activity.TeamID, activity.Name, activity.Description,
	).Scan(&activity.CreatedAt)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("activity %q: %w", activity.Name, domain.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

func (r *activityRepository) SoftDelete(ctx context.Context, orgID, id string) (bool, error) {
	return softDelete(ctx, r.db.Pool, "activities", "organization_id = $1 AND id = $2", orgID, id)
}
