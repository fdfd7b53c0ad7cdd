package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"teamperf/internal/domain"
	"teamperf/pkg/database"
)

const userColumns = `u.id, u.external_id, u.email, u.first_name, u.last_name, u.image_url,
	u.organization_id, u.role, u.created_at, u.updated_at, u.deleted_at`

type userRepository struct {
	db *database.PostgresDB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.PostgresDB) UserRepository {
	return &userRepository{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.ExternalID, &u.Email, &u.FirstName, &u.LastName, &u.ImageURL,
		&u.OrganizationID, &u.Role, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users u WHERE u.id = $1 AND %s`, userColumns, live("u", ExcludeDeleted))

	u, err := scanUser(r.db.Pool.QueryRow(ctx, query, id))
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users u WHERE u.external_id = $1 AND %s`, userColumns, live("u", ExcludeDeleted))

	u, err := scanUser(r.db.Pool.QueryRow(ctx, query, externalID))
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by external id: %w", err)
	}
	return u, nil
}

// Upsert returns domain.ErrNotFound when the identity belongs to a soft-deleted user
func (r *userRepository) Upsert(ctx context.Context, user *domain.User, audit *domain.AuditLog) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO users (id, external_id, email, first_name, last_name, image_url, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (external_id) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			image_url = EXCLUDED.image_url,
			updated_at = NOW()
		WHERE %s
		RETURNING id, organization_id, role, created_at, updated_at, (xmax = 0) AS inserted
	`, live("users", ExcludeDeleted))

	if user.Role == "" {
		user.Role = domain.RoleMember
	}

	var created bool
	err := r.db.WithTx(ctx, 0, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query,
			uuid.NewString(), user.ExternalID, user.Email, user.FirstName, user.LastName, user.ImageURL, user.Role,
		).Scan(&user.ID, &user.OrganizationID, &user.Role, &user.CreatedAt, &user.UpdatedAt, &created)
		if database.IsNoRows(err) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to upsert user: %w", err)
		}

		if audit != nil {
			audit.UserID = &user.ID
			return insertAuditLog(ctx, tx, audit)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *userRepository) SoftDeleteByExternalID(ctx context.Context, externalID string, audit *domain.AuditLog) (*domain.User, error) {
	stmt := userSoftDelete()

	var deleted *domain.User
	err := r.db.WithTx(ctx, 0, func(tx pgx.Tx) error {
		u, err := scanUser(softDeleteReturning(ctx, tx, stmt, externalID))
		if database.IsNoRows(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to soft delete user: %w", err)
		}
		deleted = u

		if audit != nil {
			audit.UserID = &u.ID
			return insertAuditLog(ctx, tx, audit)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func userSoftDelete() softDeleteStmt {
	return softDeleteStmt{
		Table:     "users",
		Alias:     "u",
		Where:     "u.external_id = $1",
		Set:       "updated_at = NOW()",
		Returning: userColumns,
	}
}

func (r *userRepository) ListAuditLogs(ctx context.Context, externalID string, limit int) ([]domain.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `
		SELECT id, user_id, external_id, action, details, ip_address, created_at
		FROM audit_logs
		WHERE external_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, externalID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.AuditLog
	for rows.Next() {
		var (
			entry   domain.AuditLog
			details []byte
		)
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.ExternalID, &entry.Action, &details, &entry.IPAddress, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.Details); err != nil {
				return nil, fmt.Errorf("failed to decode audit details: %w", err)
			}
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func insertAuditLog(ctx context.Context, db database.DBTX, entry *domain.AuditLog) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	query := `
		INSERT INTO audit_logs (id, user_id, external_id, action, details, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	if err := db.QueryRow(ctx, query,
		entry.ID, entry.UserID, entry.ExternalID, entry.Action, details, entry.IPAddress,
	).Scan(&entry.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}
