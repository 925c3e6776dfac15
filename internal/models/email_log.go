package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailType values recorded in the ledger.
const (
	EmailTypeInvitation = "invitation"
)

// EmailLogStatus for delivery.
const (
	EmailLogStatusPending = "pending"
	EmailLogStatusSent    = "sent"
	EmailLogStatusFailed  = "failed"
)

// EmailLog records invitation emails handed to the mail service.
type EmailLog struct {
	ID             uuid.UUID  `json:"id"`
	WorkspaceID    string     `json:"workspace_id,omitempty"`
	EmailType      string     `json:"email_type"`
	RecipientEmail string     `json:"recipient_email"`
	Subject        string     `json:"subject,omitempty"`
	Status         string     `json:"status"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
