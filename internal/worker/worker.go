// Package worker processes invitation email jobs: render the message, hand it
// to the mail service and record the outcome in the email ledger.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/productcube/workspace-service/internal/mail"
	"github.com/productcube/workspace-service/internal/models"
	"github.com/productcube/workspace-service/pkg/queue"
)

// Mailer sends a rendered email. Implemented by the mail-service client.
type Mailer interface {
	Send(ctx context.Context, receiver, subject, text, html string) error
}

// Ledger records delivery attempts. Implemented by the email logs repository.
type Ledger interface {
	Create(ctx context.Context, workspaceID, emailType, recipient, subject string) (uuid.UUID, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}

// EmailProcessor consumes invitation email jobs from the queue.
type EmailProcessor struct {
	mailer Mailer
	logs   Ledger
	queue  *queue.Queue
	logger *zap.Logger
}

// NewEmailProcessor creates an invitation email processor.
func NewEmailProcessor(mailer Mailer, logs Ledger, q *queue.Queue, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{mailer: mailer, logs: logs, queue: q, logger: logger}
}

// Process executes one invitation email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeInvitationEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.InvitationEmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	msg := mail.ComposeInvitation(payload.WorkspaceName, payload.InviterName, payload.AcceptLink)

	logID, err := p.logs.Create(ctx, payload.WorkspaceID, models.EmailTypeInvitation, payload.RecipientEmail, msg.Subject)
	if err != nil {
		// The ledger is best effort too; delivery still goes ahead.
		p.logger.Warn("email log create failed", zap.Error(err))
		logID = uuid.Nil
	}

	if err := p.mailer.Send(ctx, payload.RecipientEmail, msg.Subject, msg.Text, msg.HTML); err != nil {
		if logID != uuid.Nil {
			if logErr := p.logs.MarkFailed(ctx, logID, err.Error()); logErr != nil {
				p.logger.Warn("email log update failed", zap.Error(logErr))
			}
		}
		return fmt.Errorf("send invitation: %w", err)
	}

	if logID != uuid.Nil {
		if err := p.logs.MarkSent(ctx, logID); err != nil {
			p.logger.Warn("email log update failed", zap.Error(err))
		}
	}
	p.logger.Info("invitation email sent",
		zap.String("workspace", payload.WorkspaceName),
		zap.String("recipient", payload.RecipientEmail))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
