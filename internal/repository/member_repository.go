package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"teamperf/internal/domain"
	"teamperf/pkg/database"
)

const memberColumns = `m.id, m.organization_id, m.team_id, m.name, m.title, m.email, m.created_at, m.updated_at, m.deleted_at`

type memberRepository struct {
	db *database.PostgresDB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *database.PostgresDB) MemberRepository {
	return &memberRepository{db: db}
}

func scanMember(row pgx.Row) (*domain.Member, error) {
	var m domain.Member
	if err := row.Scan(&m.ID, &m.OrganizationID, &m.TeamID, &m.Name, &m.Title, &m.Email, &m.CreatedAt, &m.UpdatedAt, &m.DeletedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *memberRepository) list(ctx context.Context, db database.DBTX, where string, args ...any) ([]domain.Member, error) {
	query := fmt.Sprintf(`SELECT %s FROM members m WHERE %s AND %s ORDER BY m.name, m.id`,
		memberColumns, where, live("m", ExcludeDeleted))

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []domain.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (r *memberRepository) ListByTeam(ctx context.Context, orgID, teamID string) ([]domain.Member, error) {
	return r.list(ctx, r.db.Pool, "m.organization_id = $1 AND m.team_id = $2", orgID, teamID)
}

// ListByOrganization feeds the dashboard and reads from the replica
func (r *memberRepository) ListByOrganization(ctx context.Context, orgID string) ([]domain.Member, error) {
	return r.list(ctx, r.db.GetReadPool(), "m.organization_id = $1", orgID)
}

func (r *memberRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Member, error) {
	query := fmt.Sprintf(`SELECT %s FROM members m WHERE m.organization_id = $1 AND m.id = $2 AND %s`,
		memberColumns, live("m", ExcludeDeleted))

	m, err := scanMember(r.db.Pool.QueryRow(ctx, query, orgID, id))
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return m, nil
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	return insertMember(ctx, r.db.Pool, member)
}

func (r *memberRepository) Update(ctx context.Context, member *domain.Member) error {
	query := fmt.Sprintf(`
		UPDATE members m SET name = $3, title = $4, email = $5, team_id = $6, updated_at = NOW()
		WHERE m.organization_id = $1 AND m.id = $2 AND %s
		RETURNING m.updated_at
	`, live("m", ExcludeDeleted))

	err := r.db.Pool.QueryRow(ctx, query,
		member.OrganizationID, member.ID, member.Name, member.Title, member.Email, member.TeamID,
	).Scan(&member.UpdatedAt)
	if database.IsNoRows(err) {
		return domain.ErrNotFound
	}
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("member email: %w", domain.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	return nil
}

func (r *memberRepository) SoftDelete(ctx context.Context, orgID, id string) (bool, error) {
	return softDelete(ctx, r.db.Pool, "members", "organization_id = $1 AND id = $2", orgID, id)
}

// HardDelete relies on ON DELETE CASCADE for ratings, feedback and reviews
func (r *memberRepository) HardDelete(ctx context.Context, orgID, id string) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM members WHERE organization_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return false, fmt.Errorf("failed to hard delete member: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func insertMember(ctx context.Context, db database.DBTX, member *domain.Member) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	err := db.QueryRow(ctx, `
		INSERT INTO members (id, organization_id, team_id, name, title, email)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, member.ID, member.OrganizationID, member.TeamID, member.Name, member.Title, member.Email,
	).Scan(&member.CreatedAt, &member.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("member email: %w", domain.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}
