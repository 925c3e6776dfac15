package workspaces

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/productcube/workspace-service/internal/models"
	"github.com/productcube/workspace-service/pkg/randid"
	"github.com/productcube/workspace-service/pkg/utils"
)

// workspaceIDLength is the length of minted workspace identifiers.
const workspaceIDLength = 8

// Store is the persistence boundary the service mutates. Implementations must
// provide atomic set semantics for the membership mutations: each returns
// whether the guarded update actually happened.
type Store interface {
	GetByName(ctx context.Context, name string) (*models.Workspace, error)
	ListByMember(ctx context.Context, userID string) ([]models.Workspace, error)
	IDExists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, ws *models.Workspace) error
	AddInvited(ctx context.Context, workspaceID, userID string) (bool, error)
	AcceptInvite(ctx context.Context, workspaceID, userID string) (bool, error)
	RemoveInvited(ctx context.Context, workspaceID, userID string) (bool, error)
	DeleteByMember(ctx context.Context, workspaceID, userID string) (bool, error)
	NamesByInvited(ctx context.Context, userID string) ([]string, error)
}

// Directory resolves user profiles and email addresses via the user service.
type Directory interface {
	ProfilesByID(ctx context.Context, ids []string) ([]models.Profile, error)
	// IDByEmail returns the user id for an address; found is false when the
	// directory knows no such user (which is not an error).
	IDByEmail(ctx context.Context, email string) (id string, found bool, err error)
}

// Provisioner invites an unknown email address at the identity layer and
// returns the newly provisioned user id.
type Provisioner interface {
	InviteByEmail(ctx context.Context, email string) (string, error)
}

// Invitation carries everything the notifier needs to send an invitation email.
type Invitation struct {
	WorkspaceID    string
	WorkspaceName  string
	RecipientEmail string
	InviterName    string
	InviteeName    string
	AcceptLink     string
}

// Notifier delivers invitation emails. Best effort: the invitation stands
// whatever the delivery outcome.
type Notifier interface {
	SendInvitation(ctx context.Context, inv Invitation) error
}

// Service is the workspace membership engine. Every operation takes the
// resolved caller identity explicitly and checks all preconditions before any
// mutation.
type Service interface {
	Create(ctx context.Context, caller models.Caller, name string) (*models.Workspace, error)
	Get(ctx context.Context, caller models.Caller, name string) (*models.WorkspaceView, error)
	List(ctx context.Context, caller models.Caller) ([]models.Workspace, error)
	Invite(ctx context.Context, caller models.Caller, workspaceName, email string) error
	Accept(ctx context.Context, caller models.Caller, workspaceName string) error
	Decline(ctx context.Context, caller models.Caller, workspaceName string) error
	Delete(ctx context.Context, caller models.Caller, name string) error
	PendingInvitations(ctx context.Context, caller models.Caller, userID string) ([]string, error)
	IsMember(ctx context.Context, caller models.Caller, name string) (workspaceID string, err error)
}

type service struct {
	store       Store
	directory   Directory
	provisioner Provisioner
	notifier    Notifier
	linkBase    string
	logger      *zap.Logger
}

// NewService creates the workspace membership service.
func NewService(store Store, directory Directory, provisioner Provisioner, notifier Notifier, linkBase string, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		store:       store,
		directory:   directory,
		provisioner: provisioner,
		notifier:    notifier,
		linkBase:    linkBase,
		logger:      logger,
	}
}

func upstream(err error) error {
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

// Create validates the name, mints a fresh id and inserts the workspace with
// the caller as sole member.
func (s *service) Create(ctx context.Context, caller models.Caller, name string) (*models.Workspace, error) {
	if caller.Anonymous() {
		return nil, ErrNotAuthenticated
	}
	if !ValidName(name) {
		return nil, ErrInvalidName
	}

	// Friendly pre-check; the unique index on LOWER(name) has the final word.
	if _, err := s.store.GetByName(ctx, name); err == nil {
		return nil, ErrAlreadyExists
	} else if err != ErrNotFound {
		return nil, upstream(err)
	}

	id, err := randid.Generate(ctx, workspaceIDLength, randid.Alphabet{Lower: true}, s.store.IDExists)
	if err != nil {
		return nil, fmt.Errorf("mint workspace id: %w", err)
	}

	ws := &models.Workspace{
		ID:      id,
		Name:    name,
		Members: []string{caller.UserID},
		Invited: []string{},
	}
	if err := s.store.Create(ctx, ws); err != nil {
		if err == ErrAlreadyExists {
			return nil, err
		}
		return nil, upstream(err)
	}
	s.logger.Info("workspace created", zap.String("workspace_id", ws.ID), zap.String("name", ws.Name))
	return ws, nil
}

// Get returns a workspace by name with members and invited resolved to
// profiles, one batched directory call per field.
func (s *service) Get(ctx context.Context, caller models.Caller, name string) (*models.WorkspaceView, error) {
	if caller.Anonymous() {
		return nil, ErrNotAuthenticated
	}
	ws, err := s.store.GetByName(ctx, name)
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, upstream(err)
	}
	if !contains(ws.Members, caller.UserID) {
		return nil, ErrForbidden
	}

	members, err := s.profiles(ctx, ws.Members)
	if err != nil {
		return nil, err
	}
	invited, err := s.profiles(ctx, ws.Invited)
	if err != nil {
		return nil, err
	}
	return &models.WorkspaceView{
		ID:        ws.ID,
		Name:      ws.Name,
		Members:   members,
		Invited:   invited,
		CreatedAt: ws.CreatedAt,
	}, nil
}

// List returns every workspace the caller is a member of.
func (s *service) List(ctx context.Context, caller models.Caller) ([]models.Workspace, error) {
	if caller.Anonymous() {
		return nil, ErrNotAuthenticated
	}
	list, err := s.store.ListByMember(ctx, caller.UserID)
	if err != nil {
		return nil, upstream(err)
	}
	return list, nil
}

// Invite resolves the invitee's email to a user id (provisioning an account
// for unknown addresses), appends it to the invited set atomically and hands
// the invitation email to the notifier. Email delivery is best effort.
func (s *service) Invite(ctx context.Context, caller models.Caller, workspaceName, email string) error {
	if caller.Anonymous() {
		return ErrNotAuthenticated
	}
	ws, err := s.store.GetByName(ctx, workspaceName)
	if err != nil {
		if err == ErrNotFound {
			return ErrForbidden
		}
		return upstream(err)
	}
	if !contains(ws.Members, caller.UserID) {
		return ErrForbidden
	}
	if !ValidEmail(email) {
		return ErrInvalidEmail
	}

	invitee, found, err := s.directory.IDByEmail(ctx, email)
	if err != nil {
		return upstream(err)
	}
	if !found {
		invitee, err = s.provisioner.InviteByEmail(ctx, email)
		if err != nil {
			return upstream(err)
		}
	}

	if contains(ws.Members, invitee) {
		return ErrAlreadyMember
	}
	if contains(ws.Invited, invitee) {
		return ErrAlreadyInvited
	}

	ok, err := s.store.AddInvited(ctx, ws.ID, invitee)
	if err != nil {
		return upstream(err)
	}
	if !ok {
		// The guard rejected the append; re-read to report why.
		return s.explainRejectedInvite(ctx, workspaceName, invitee)
	}

	s.notify(ctx, caller, ws, invitee, email)
	return nil
}

// explainRejectedInvite disambiguates a zero-row conditional append: the
// invitee raced into members or invited, or the workspace disappeared.
func (s *service) explainRejectedInvite(ctx context.Context, workspaceName, invitee string) error {
	ws, err := s.store.GetByName(ctx, workspaceName)
	if err != nil {
		if err == ErrNotFound {
			return ErrForbidden
		}
		return upstream(err)
	}
	if contains(ws.Members, invitee) {
		return ErrAlreadyMember
	}
	return ErrAlreadyInvited
}

// notify looks up display names and enqueues the invitation email. Failures
// here never surface: the invitation already stands.
func (s *service) notify(ctx context.Context, caller models.Caller, ws *models.Workspace, invitee, email string) {
	var inviterName, inviteeName string
	profiles, err := s.directory.ProfilesByID(ctx, []string{caller.UserID, invitee})
	if err != nil {
		s.logger.Warn("invitation name lookup failed", zap.String("workspace", ws.Name), zap.Error(err))
	} else {
		byID := make(map[string]models.Profile, len(profiles))
		for _, p := range profiles {
			byID[p.ID] = p
		}
		inviterName = byID[utils.PublicID(caller.UserID)].CallName
		inviteeName = byID[utils.PublicID(invitee)].CallName
	}

	inv := Invitation{
		WorkspaceID:    ws.ID,
		WorkspaceName:  ws.Name,
		RecipientEmail: email,
		InviterName:    inviterName,
		InviteeName:    inviteeName,
		AcceptLink:     s.linkBase + "/" + ws.Name,
	}
	if err := s.notifier.SendInvitation(ctx, inv); err != nil {
		s.logger.Warn("invitation email not queued",
			zap.String("workspace", ws.Name),
			zap.String("recipient", email),
			zap.Error(err))
	}
}

// Accept atomically moves the caller from invited to members.
func (s *service) Accept(ctx context.Context, caller models.Caller, workspaceName string) error {
	return s.resolveInvitation(ctx, caller, workspaceName, s.store.AcceptInvite)
}

// Decline removes the caller's pending invitation; members are untouched.
func (s *service) Decline(ctx context.Context, caller models.Caller, workspaceName string) error {
	return s.resolveInvitation(ctx, caller, workspaceName, s.store.RemoveInvited)
}

func (s *service) resolveInvitation(ctx context.Context, caller models.Caller, workspaceName string, op func(ctx context.Context, workspaceID, userID string) (bool, error)) error {
	if caller.Anonymous() {
		return ErrInvalidRequest
	}
	ws, err := s.store.GetByName(ctx, workspaceName)
	if err != nil {
		if err == ErrNotFound {
			return ErrInvalidRequest
		}
		return upstream(err)
	}
	ok, err := op(ctx, ws.ID, caller.UserID)
	if err != nil {
		return upstream(err)
	}
	if !ok {
		return ErrInvalidRequest
	}
	return nil
}

// Delete hard-deletes the workspace; membership is checked by the store in
// the same statement.
func (s *service) Delete(ctx context.Context, caller models.Caller, name string) error {
	if caller.Anonymous() {
		return ErrForbidden
	}
	ws, err := s.store.GetByName(ctx, name)
	if err != nil {
		if err == ErrNotFound {
			return ErrForbidden
		}
		return upstream(err)
	}
	ok, err := s.store.DeleteByMember(ctx, ws.ID, caller.UserID)
	if err != nil {
		return upstream(err)
	}
	if !ok {
		return ErrForbidden
	}
	s.logger.Info("workspace deleted", zap.String("workspace_id", ws.ID), zap.String("name", ws.Name))
	return nil
}

// PendingInvitations is the service-only lookup used by the identity layer to
// show a user their open invitations.
func (s *service) PendingInvitations(ctx context.Context, caller models.Caller, userID string) ([]string, error) {
	if !caller.IsService {
		return nil, ErrForbidden
	}
	names, err := s.store.NamesByInvited(ctx, userID)
	if err != nil {
		return nil, upstream(err)
	}
	return names, nil
}

// IsMember authorizes the caller against a workspace and returns its id.
// Reused by endpoints layered on top of workspace data (e.g. the email ledger).
func (s *service) IsMember(ctx context.Context, caller models.Caller, name string) (string, error) {
	if caller.Anonymous() {
		return "", ErrNotAuthenticated
	}
	ws, err := s.store.GetByName(ctx, name)
	if err != nil {
		if err == ErrNotFound {
			return "", ErrNotFound
		}
		return "", upstream(err)
	}
	if !contains(ws.Members, caller.UserID) {
		return "", ErrForbidden
	}
	return ws.ID, nil
}

// profiles resolves raw ids to display profiles in one directory call and
// swaps the raw ids for their public digest form.
func (s *service) profiles(ctx context.Context, ids []string) ([]models.Profile, error) {
	if len(ids) == 0 {
		return []models.Profile{}, nil
	}
	profiles, err := s.directory.ProfilesByID(ctx, ids)
	if err != nil {
		return nil, upstream(err)
	}
	return profiles, nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
