package models

import "time"

// Workspace is a named group of users. Members and invited hold raw user ids;
// the two sets are disjoint and members is never empty while the row exists.
type Workspace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Members   []string  `json:"-"`
	Invited   []string  `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is a user's display record as returned by the user service.
// ID carries the public digest form, never the raw identifier.
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	CallName string `json:"callname"`
	Email    string `json:"email"`
}

// WorkspaceView is a workspace with member/invited sets resolved to profiles.
type WorkspaceView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Members   []Profile `json:"members"`
	Invited   []Profile `json:"invited"`
	CreatedAt time.Time `json:"created_at"`
}

// Caller is the identity resolved for an inbound request. A zero UserID means
// the request is anonymous; IsService marks a service-to-service credential.
// Callers are never persisted.
type Caller struct {
	UserID    string
	IsService bool
}

// Anonymous reports whether no user identity was resolved.
func (c Caller) Anonymous() bool { return c.UserID == "" }
