package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"teamperf/internal/domain"
	"teamperf/pkg/database"
)

type categoryRepository struct {
	db *database.PostgresDB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *database.PostgresDB) CategoryRepository {
	return &categoryRepository{db: db}
}

// visibleTo matches built-in categories and those owned by the organization in $1
const categoryVisibleTo = `(c.organization_id IS NULL OR c.organization_id = $1)`

func (r *categoryRepository) List(ctx context.Context, orgID, userID string, includeHidden bool) ([]domain.Category, error) {
	query := fmt.Sprintf(`
		SELECT c.id, c.organization_id, c.name, c.description, c.created_at, c.deleted_at,
			COALESCE(p.favorite, FALSE), COALESCE(p.hidden, FALSE)
		FROM categories c
		LEFT JOIN category_preferences p ON p.category_id = c.id AND p.user_id = $2
		WHERE %s AND %s AND ($3 OR NOT COALESCE(p.hidden, FALSE))
		ORDER BY COALESCE(p.favorite, FALSE) DESC, c.name
	`, categoryVisibleTo, live("c", ExcludeDeleted))

	rows, err := r.db.Pool.Query(ctx, query, orgID, userID, includeHidden)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Description, &c.CreatedAt, &c.DeletedAt, &c.IsFavorite, &c.IsHidden); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *categoryRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Category, error) {
	query := fmt.Sprintf(`
		SELECT c.id, c.organization_id, c.name, c.description, c.created_at, c.deleted_at
		FROM categories c
		WHERE c.id = $2 AND %s AND %s
	`, categoryVisibleTo, live("c", ExcludeDeleted))

	var c domain.Category
	err := r.db.Pool.QueryRow(ctx, query, orgID, id).Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Description, &c.CreatedAt, &c.DeletedAt)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO categories (id, organization_id, name, description)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, category.ID, category.OrganizationID, category.Name, category.Description).Scan(&category.CreatedAt)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("category %q: %w", category.Name, domain.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *categoryRepository) GetPreference(ctx context.Context, userID, categoryID string) (*domain.CategoryPreference, error) {
	pref := &domain.CategoryPreference{UserID: userID, CategoryID: categoryID}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT favorite, hidden FROM category_preferences WHERE user_id = $1 AND category_id = $2
	`, userID, categoryID).Scan(&pref.Favorite, &pref.Hidden)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category preference: %w", err)
	}
	return pref, nil
}

func (r *categoryRepository) SavePreference(ctx context.Context, pref *domain.CategoryPreference) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO category_preferences (user_id, category_id, favorite, hidden)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, category_id) DO UPDATE SET
			favorite = EXCLUDED.favorite,
			hidden = EXCLUDED.hidden,
			updated_at = NOW()
	`, pref.UserID, pref.CategoryID, pref.Favorite, pref.Hidden)
	if err != nil {
		return fmt.Errorf("failed to save category preference: %w", err)
	}
	return nil
}
