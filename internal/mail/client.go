// Package mail talks to the mail service and renders the invitation email.
package mail

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/productcube/workspace-service/internal/interservice"
)

const sendEmailMutation = `mutation sendInvitation(
  $sender: String!
  $receiver: String!
  $subject: String!
  $text: String!
  $html: String
) {
  sendEmail(
    sender: $sender
    receiver: $receiver
    subject: $subject
    text: $text
    html: $html
  )
}`

// Client is the mail-service client.
type Client struct {
	rpc    *interservice.Client
	sender string
}

// NewClient creates a mail client; sender is the display name emails are sent as.
func NewClient(url, key, sender string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{rpc: interservice.New(url, key, timeout, logger), sender: sender}
}

// Send delivers one email through the mail service.
func (c *Client) Send(ctx context.Context, receiver, subject, text, html string) error {
	vars := map[string]interface{}{
		"sender":   c.sender,
		"receiver": receiver,
		"subject":  subject,
		"text":     text,
		"html":     html,
	}
	if err := c.rpc.Query(ctx, sendEmailMutation, vars, nil); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
