package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"teamperf/internal/domain"
	"teamperf/pkg/database"
)

type organizationRepository struct {
	db        *database.PostgresDB
	txTimeout time.Duration
}

// NewOrganizationRepository creates a new organization repository.
// txTimeout bounds the bootstrap transaction.
func NewOrganizationRepository(db *database.PostgresDB, txTimeout time.Duration) OrganizationRepository {
	return &organizationRepository{db: db, txTimeout: txTimeout}
}

func (r *organizationRepository) Bootstrap(ctx context.Context, owner *domain.User, params BootstrapParams) (*domain.OrganizationBootstrap, error) {
	result := &domain.OrganizationBootstrap{}

	err := r.db.WithTx(ctx, r.txTimeout, func(tx pgx.Tx) error {
		var current *string
		lock := fmt.Sprintf(`SELECT u.organization_id FROM users u WHERE u.id = $1 AND %s FOR UPDATE`, live("u", ExcludeDeleted))
		if err := tx.QueryRow(ctx, lock, owner.ID).Scan(&current); err != nil {
			if database.IsNoRows(err) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to lock owner: %w", err)
		}
		if current != nil {
			return domain.ErrAlreadyInOrg
		}

		org := &domain.Organization{ID: uuid.NewString(), Name: params.Name, Slug: params.Slug}
		err := tx.QueryRow(ctx, `
			INSERT INTO organizations (id, name, slug)
			VALUES ($1, $2, $3)
			RETURNING created_at, updated_at
		`, org.ID, org.Name, org.Slug).Scan(&org.CreatedAt, &org.UpdatedAt)
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("organization slug %q: %w", org.Slug, domain.ErrDuplicate)
		}
		if err != nil {
			return fmt.Errorf("failed to insert organization: %w", err)
		}

		team := &domain.Team{ID: uuid.NewString(), OrganizationID: org.ID, Name: params.TeamName}
		if err := insertTeam(ctx, tx, team); err != nil {
			return err
		}

		updated, err := scanUser(tx.QueryRow(ctx, fmt.Sprintf(`
			UPDATE users u SET organization_id = $2, role = $3, updated_at = NOW()
			WHERE u.id = $1
			RETURNING %s
		`, userColumns), owner.ID, org.ID, domain.RoleOwner))
		if err != nil {
			return fmt.Errorf("failed to assign owner: %w", err)
		}

		result.Organization = org
		result.Team = team
		result.Owner = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *organizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	query := fmt.Sprintf(`
		SELECT o.id, o.name, o.slug, o.created_at, o.updated_at, o.deleted_at
		FROM organizations o
		WHERE o.id = $1 AND %s
	`, live("o", ExcludeDeleted))

	var org domain.Organization
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(&org.ID, &org.Name, &org.Slug, &org.CreatedAt, &org.UpdatedAt, &org.DeletedAt)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &org, nil
}
