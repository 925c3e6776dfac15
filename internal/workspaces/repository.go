package workspaces

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/productcube/workspace-service/internal/models"
)

// uniqueViolation is the Postgres error code for unique index violations.
const uniqueViolation = "23505"

// Repository is the Postgres-backed workspace store. All set mutations are
// single conditional UPDATE statements so concurrent writers cannot lose each
// other's changes; name and id uniqueness ride on unique indexes rather than
// pre-checks.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a workspace repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByName returns the workspace with that name, compared case-insensitively.
func (r *Repository) GetByName(ctx context.Context, name string) (*models.Workspace, error) {
	const q = `SELECT id, name, members, invited, created_at
		FROM workspaces WHERE LOWER(name) = LOWER($1)`
	var ws models.Workspace
	err := r.pool.QueryRow(ctx, q, name).Scan(&ws.ID, &ws.Name, &ws.Members, &ws.Invited, &ws.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ws, nil
}

// ListByMember returns every workspace whose members contain userID.
func (r *Repository) ListByMember(ctx context.Context, userID string) ([]models.Workspace, error) {
	const q = `SELECT id, name, members, invited, created_at
		FROM workspaces WHERE $1 = ANY(members) ORDER BY name`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Workspace
	for rows.Next() {
		var ws models.Workspace
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.Members, &ws.Invited, &ws.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, ws)
	}
	return list, rows.Err()
}

// IDExists reports whether a workspace id is already taken.
func (r *Repository) IDExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM workspaces WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// Create inserts a new workspace row. A name collision (the unique index on
// LOWER(name)) maps to ErrAlreadyExists; the index has the final word even
// when a pre-check already passed.
func (r *Repository) Create(ctx context.Context, ws *models.Workspace) error {
	const q = `INSERT INTO workspaces (id, name, members, invited)
		VALUES ($1, $2, $3, '{}')
		RETURNING created_at`
	err := r.pool.QueryRow(ctx, q, ws.ID, ws.Name, ws.Members).Scan(&ws.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// AddInvited appends userID to the invited set, guarded against duplicates
// and existing members in the same statement. Returns false when the guard
// rejected the append (or the workspace is gone).
func (r *Repository) AddInvited(ctx context.Context, workspaceID, userID string) (bool, error) {
	const q = `UPDATE workspaces
		SET invited = array_append(invited, $2)
		WHERE id = $1 AND NOT ($2 = ANY(invited)) AND NOT ($2 = ANY(members))`
	tag, err := r.pool.Exec(ctx, q, workspaceID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// AcceptInvite atomically moves userID from invited to members. Returns false
// when userID was not invited (or the workspace is gone).
func (r *Repository) AcceptInvite(ctx context.Context, workspaceID, userID string) (bool, error) {
	const q = `UPDATE workspaces
		SET invited = array_remove(invited, $2),
		    members = array_append(members, $2)
		WHERE id = $1 AND $2 = ANY(invited) AND NOT ($2 = ANY(members))`
	tag, err := r.pool.Exec(ctx, q, workspaceID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// RemoveInvited drops userID from the invited set, leaving members untouched.
func (r *Repository) RemoveInvited(ctx context.Context, workspaceID, userID string) (bool, error) {
	const q = `UPDATE workspaces
		SET invited = array_remove(invited, $2)
		WHERE id = $1 AND $2 = ANY(invited)`
	tag, err := r.pool.Exec(ctx, q, workspaceID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteByMember hard-deletes the workspace if userID is a member. Returns
// false when the row was absent or the caller was not a member.
func (r *Repository) DeleteByMember(ctx context.Context, workspaceID, userID string) (bool, error) {
	const q = `DELETE FROM workspaces WHERE id = $1 AND $2 = ANY(members)`
	tag, err := r.pool.Exec(ctx, q, workspaceID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// NamesByInvited returns the names of workspaces holding a pending invitation
// for userID.
func (r *Repository) NamesByInvited(ctx context.Context, userID string) ([]string, error) {
	const q = `SELECT name FROM workspaces WHERE $1 = ANY(invited) ORDER BY name`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

var _ Store = (*Repository)(nil)
