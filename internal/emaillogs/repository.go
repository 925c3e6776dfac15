package emaillogs

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/productcube/workspace-service/internal/models"
)

// Repository handles email_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a pending ledger row for an email about to be sent.
func (r *Repository) Create(ctx context.Context, workspaceID, emailType, recipient, subject string) (uuid.UUID, error) {
	const q = `INSERT INTO email_logs (workspace_id, email_type, recipient_email, subject, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, q, workspaceID, emailType, recipient, subject, models.EmailLogStatusPending).Scan(&id)
	return id, err
}

// MarkSent records a successful delivery.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE email_logs SET status = $2, sent_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id, models.EmailLogStatusSent)
	return err
}

// MarkFailed records a failed delivery with the error message.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	const q = `UPDATE email_logs SET status = $2, error_message = $3 WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id, models.EmailLogStatusFailed, errMsg)
	return err
}

// ListByWorkspace returns email logs for a workspace, newest first.
func (r *Repository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*models.EmailLog, error) {
	const q = `SELECT id, COALESCE(workspace_id,''), email_type, recipient_email, COALESCE(subject,''), status, sent_at, COALESCE(error_message,''), created_at
		FROM email_logs
		WHERE workspace_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.EmailLog
	for rows.Next() {
		var el models.EmailLog
		if err := rows.Scan(&el.ID, &el.WorkspaceID, &el.EmailType, &el.RecipientEmail, &el.Subject, &el.Status, &el.SentAt, &el.ErrorMessage, &el.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &el)
	}
	return list, rows.Err()
}
