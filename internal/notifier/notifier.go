// Package notifier hands invitation emails to the background delivery
// pipeline. Fire-and-forget: enqueue failures are reported to the caller,
// which logs and moves on.
package notifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/productcube/workspace-service/internal/workspaces"
	"github.com/productcube/workspace-service/pkg/queue"
)

// QueueNotifier enqueues invitation emails onto the Redis job queue; the
// worker process owns actual delivery.
type QueueNotifier struct {
	queue  *queue.Queue
	logger *zap.Logger
}

// NewQueueNotifier creates a queue-backed notifier.
func NewQueueNotifier(q *queue.Queue, logger *zap.Logger) *QueueNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueNotifier{queue: q, logger: logger}
}

// SendInvitation enqueues one invitation email job.
func (n *QueueNotifier) SendInvitation(ctx context.Context, inv workspaces.Invitation) error {
	return n.queue.EnqueueInvitationEmail(ctx, queue.InvitationEmailPayload{
		WorkspaceID:    inv.WorkspaceID,
		WorkspaceName:  inv.WorkspaceName,
		RecipientEmail: inv.RecipientEmail,
		InviterName:    inv.InviterName,
		InviteeName:    inv.InviteeName,
		AcceptLink:     inv.AcceptLink,
	})
}

var _ workspaces.Notifier = (*QueueNotifier)(nil)
