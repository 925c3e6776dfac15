// Package directory talks to the user service: profile enrichment and
// email-to-id resolution.
package directory

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/productcube/workspace-service/internal/interservice"
	"github.com/productcube/workspace-service/internal/models"
	"github.com/productcube/workspace-service/pkg/utils"
)

const profilesQuery = `query members($uids: [ID!]!) {
  usersById(ids: $uids) {
    id
    name
    callname
    email
  }
}`

const idByEmailQuery = `query getAccount($email: String!) {
  getUser(email: $email)
}`

// Client is the user-service client.
type Client struct {
	rpc *interservice.Client
}

// NewClient creates a directory client for the user service at url.
func NewClient(url, key string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{rpc: interservice.New(url, key, timeout, logger)}
}

// ProfilesByID returns display profiles for a batch of raw user ids. Returned
// profile ids are already in their public digest form.
func (c *Client) ProfilesByID(ctx context.Context, ids []string) ([]models.Profile, error) {
	uids := make([]interface{}, len(ids))
	for i, id := range ids {
		uids[i] = id
	}
	var data struct {
		UsersByID []models.Profile `json:"usersById"`
	}
	if err := c.rpc.Query(ctx, profilesQuery, map[string]interface{}{"uids": uids}, &data); err != nil {
		return nil, fmt.Errorf("profiles by id: %w", err)
	}
	profiles := data.UsersByID
	for i := range profiles {
		profiles[i].ID = utils.PublicID(profiles[i].ID)
	}
	return profiles, nil
}

// IDByEmail resolves an email address to a raw user id. found is false when
// the directory knows no account for the address.
func (c *Client) IDByEmail(ctx context.Context, email string) (string, bool, error) {
	var data struct {
		GetUser *string `json:"getUser"`
	}
	if err := c.rpc.Query(ctx, idByEmailQuery, map[string]interface{}{"email": email}, &data); err != nil {
		return "", false, fmt.Errorf("id by email: %w", err)
	}
	if data.GetUser == nil || *data.GetUser == "" {
		return "", false, nil
	}
	return *data.GetUser, true, nil
}
