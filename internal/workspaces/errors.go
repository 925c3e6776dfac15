package workspaces

import "errors"

// Business errors returned by the workspace service. Handlers branch on these
// with errors.Is to pick a status code; no other control flow is exception
// shaped.
var (
	// ErrNotAuthenticated means no user identity was resolved for the request.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrForbidden means the caller is authenticated but has no rights on the
	// target, or the target does not exist and we refuse to say which.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidRequest means the request references a nonexistent or
	// ineligible target (used by accept/decline).
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidName means the workspace name fails validation.
	ErrInvalidName = errors.New("invalid workspace name")
	// ErrInvalidEmail means the invitee address is malformed.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrAlreadyExists means a workspace with that name exists (case-insensitive).
	ErrAlreadyExists = errors.New("workspace already exists")
	// ErrAlreadyMember means the invitee already belongs to the workspace.
	ErrAlreadyMember = errors.New("already a member")
	// ErrAlreadyInvited means the invitee already has a pending invitation.
	ErrAlreadyInvited = errors.New("already invited")
	// ErrNotFound means the target workspace is absent.
	ErrNotFound = errors.New("workspace not found")
	// ErrUpstream means a collaborator call or store write failed or timed out.
	ErrUpstream = errors.New("upstream service error")
)
