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

type teamRepository struct {
	db        *database.PostgresDB
	txTimeout time.Duration
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *database.PostgresDB, txTimeout time.Duration) TeamRepository {
	return &teamRepository{db: db, txTimeout: txTimeout}
}

// teamSelect counts live members alongside each team
func teamSelect(where string) string {
	return fmt.Sprintf(`
		SELECT t.id, t.organization_id, t.name, t.description, t.created_at, t.updated_at, t.deleted_at,
			(SELECT COUNT(*) FROM members m WHERE m.team_id = t.id AND %s) AS member_count
		FROM teams t
		WHERE %s AND %s
	`, live("m", ExcludeDeleted), where, live("t", ExcludeDeleted))
}

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var t domain.Team
	if err := row.Scan(&t.ID, &t.OrganizationID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt, &t.MemberCount); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *teamRepository) List(ctx context.Context, orgID string) ([]domain.Team, error) {
	rows, err := r.db.Pool.Query(ctx, teamSelect("t.organization_id = $1")+" ORDER BY t.name", orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := []domain.Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, *t)
	}
	return teams, rows.Err()
}

func (r *teamRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Team, error) {
	t, err := scanTeam(r.db.Pool.QueryRow(ctx, teamSelect("t.organization_id = $1 AND t.id = $2"), orgID, id))
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return t, nil
}

func (r *teamRepository) CreateWithMembers(ctx context.Context, team *domain.Team, members []domain.Member) error {
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	return r.db.WithTx(ctx, r.txTimeout, func(tx pgx.Tx) error {
		if err := insertTeam(ctx, tx, team); err != nil {
			return err
		}
		for i := range members {
			members[i].TeamID = team.ID
			members[i].OrganizationID = team.OrganizationID
			if err := insertMember(ctx, tx, &members[i]); err != nil {
				return err
			}
		}
		team.MemberCount = len(members)
		return nil
	})
}

func (r *teamRepository) Update(ctx context.Context, team *domain.Team) error {
	query := fmt.Sprintf(`
		UPDATE teams t SET name = $3, description = $4, updated_at = NOW()
		WHERE t.organization_id = $1 AND t.id = $2 AND %s
		RETURNING t.updated_at
	`, live("t", ExcludeDeleted))

	err := r.db.Pool.QueryRow(ctx, query, team.OrganizationID, team.ID, team.Name, team.Description).Scan(&team.UpdatedAt)
	if database.IsNoRows(err) {
		return domain.ErrNotFound
	}
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("team %q: %w", team.Name, domain.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to update team: %w", err)
	}
	return nil
}

func (r *teamRepository) SoftDelete(ctx context.Context, orgID, id string) (bool, error) {
	var deleted bool
	err := r.db.WithTx(ctx, r.txTimeout, func(tx pgx.Tx) error {
		var err error
		deleted, err = softDelete(ctx, tx, "teams", "organization_id = $1 AND id = $2", orgID, id)
		if err != nil || !deleted {
			return err
		}
		_, err = softDelete(ctx, tx, "members", "organization_id = $1 AND team_id = $2", orgID, id)
		return err
	})
	return deleted, err
}

func insertTeam(ctx context.Context, db database.DBTX, team *domain.Team) error {
	err := db.QueryRow(ctx, `
		INSERT INTO teams (id, organization_id, name, description)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, team.ID, team.OrganizationID, team.Name, team.Description).Scan(&team.CreatedAt, &team.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("team %q: %w", team.Name, domain.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert team: %w", err)
	}
	return nil
}
