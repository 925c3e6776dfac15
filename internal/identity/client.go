// Package identity talks to the auth service: session resolution and
// account provisioning for invited email addresses.
package identity

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/productcube/workspace-service/internal/interservice"
)

const resolveQuery = `query serviceWorkspaceUser($sessionToken: ID!) {
  user(sessionToken: $sessionToken) {
    id
  }
}`

const inviteByEmailMutation = `mutation inviteByEmail($email: String!) {
  inviteUser(email: $email) {
    id
  }
}`

// Client is the auth-service client.
type Client struct {
	rpc *interservice.Client
}

// NewClient creates an identity client for the auth service at url.
func NewClient(url, key string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{rpc: interservice.New(url, key, timeout, logger)}
}

// Resolve turns a session token into a user id. An unknown or expired token
// resolves to the empty (anonymous) id rather than an error.
func (c *Client) Resolve(ctx context.Context, sessionToken string) (string, error) {
	var data struct {
		User *struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := c.rpc.Query(ctx, resolveQuery, map[string]interface{}{"sessionToken": sessionToken}, &data); err != nil {
		return "", fmt.Errorf("resolve session: %w", err)
	}
	if data.User == nil {
		return "", nil
	}
	return data.User.ID, nil
}

// InviteByEmail provisions an account for an address the directory does not
// know yet and returns the new user id.
func (c *Client) InviteByEmail(ctx context.Context, email string) (string, error) {
	var data struct {
		InviteUser struct {
			ID string `json:"id"`
		} `json:"inviteUser"`
	}
	if err := c.rpc.Query(ctx, inviteByEmailMutation, map[string]interface{}{"email": email}, &data); err != nil {
		return "", fmt.Errorf("invite by email: %w", err)
	}
	if data.InviteUser.ID == "" {
		return "", fmt.Errorf("invite by email: empty user id for %s", email)
	}
	return data.InviteUser.ID, nil
}
