package workspaces

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/productcube/workspace-service/internal/models"
	"github.com/productcube/workspace-service/pkg/utils"
)

// fakeStore is an in-memory Store with the same atomic guard semantics the
// Postgres repository provides.
type fakeStore struct {
	mu   sync.Mutex
	byID map[string]*models.Workspace
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: make(map[string]*models.Workspace)}
}

func (f *fakeStore) findByName(name string) *models.Workspace {
	for _, ws := range f.byID {
		if strings.EqualFold(ws.Name, name) {
			return ws
		}
	}
	return nil
}

func copyWorkspace(ws *models.Workspace) *models.Workspace {
	cp := *ws
	cp.Members = append([]string(nil), ws.Members...)
	cp.Invited = append([]string(nil), ws.Invited...)
	return &cp
}

func (f *fakeStore) GetByName(ctx context.Context, name string) (*models.Workspace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ws := f.findByName(name); ws != nil {
		return copyWorkspace(ws), nil
	}
	return nil, ErrNotFound
}

func (f *fakeStore) ListByMember(ctx context.Context, userID string) ([]models.Workspace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []models.Workspace
	for _, ws := range f.byID {
		if contains(ws.Members, userID) {
			list = append(list, *copyWorkspace(ws))
		}
	}
	return list, nil
}

func (f *fakeStore) IDExists(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byID[id]
	return ok, nil
}

func (f *fakeStore) Create(ctx context.Context, ws *models.Workspace) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findByName(ws.Name) != nil {
		return ErrAlreadyExists
	}
	if _, ok := f.byID[ws.ID]; ok {
		return ErrAlreadyExists
	}
	ws.CreatedAt = time.Now()
	f.byID[ws.ID] = copyWorkspace(ws)
	return nil
}

func (f *fakeStore) AddInvited(ctx context.Context, workspaceID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ws, ok := f.byID[workspaceID]
	if !ok || contains(ws.Invited, userID) || contains(ws.Members, userID) {
		return false, nil
	}
	ws.Invited = append(ws.Invited, userID)
	return true, nil
}

func (f *fakeStore) AcceptInvite(ctx context.Context, workspaceID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ws, ok := f.byID[workspaceID]
	if !ok || !contains(ws.Invited, userID) || contains(ws.Members, userID) {
		return false, nil
	}
	ws.Invited = remove(ws.Invited, userID)
	ws.Members = append(ws.Members, userID)
	return true, nil
}

func (f *fakeStore) RemoveInvited(ctx context.Context, workspaceID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ws, ok := f.byID[workspaceID]
	if !ok || !contains(ws.Invited, userID) {
		return false, nil
	}
	ws.Invited = remove(ws.Invited, userID)
	return true, nil
}

func (f *fakeStore) DeleteByMember(ctx context.Context, workspaceID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ws, ok := f.byID[workspaceID]
	if !ok || !contains(ws.Members, userID) {
		return false, nil
	}
	delete(f.byID, workspaceID)
	return true, nil
}

func (f *fakeStore) NamesByInvited(ctx context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, ws := range f.byID {
		if contains(ws.Invited, userID) {
			names = append(names, ws.Name)
		}
	}
	return names, nil
}

func remove(set []string, v string) []string {
	out := set[:0]
	for _, s := range set {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

// fakeDirectory resolves emails from a fixed map and fabricates a profile for
// any id, with the digest contract the real client honors.
type fakeDirectory struct {
	mu     sync.Mutex
	emails map[string]string
	err    error
}

func (d *fakeDirectory) ProfilesByID(ctx context.Context, ids []string) ([]models.Profile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	profiles := make([]models.Profile, len(ids))
	for i, id := range ids {
		profiles[i] = models.Profile{
			ID:       utils.PublicID(id),
			Name:     "User " + id,
			CallName: id + "-call",
			Email:    id + "@example.com",
		}
	}
	return profiles, nil
}

func (d *fakeDirectory) IDByEmail(ctx context.Context, email string) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return "", false, d.err
	}
	id, ok := d.emails[email]
	return id, ok, nil
}

type fakeProvisioner struct {
	mu     sync.Mutex
	calls  []string
	nextID string
	err    error
}

func (p *fakeProvisioner) InviteByEmail(ctx context.Context, email string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.calls = append(p.calls, email)
	if p.nextID != "" {
		return p.nextID, nil
	}
	return "prov-" + email, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []Invitation
	err  error
}

func (n *fakeNotifier) SendInvitation(ctx context.Context, inv Invitation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, inv)
	return nil
}

type fixture struct {
	store       *fakeStore
	directory   *fakeDirectory
	provisioner *fakeProvisioner
	notifier    *fakeNotifier
	svc         Service
}

func newFixture() *fixture {
	f := &fixture{
		store:       newFakeStore(),
		directory:   &fakeDirectory{emails: make(map[string]string)},
		provisioner: &fakeProvisioner{},
		notifier:    &fakeNotifier{},
	}
	f.svc = NewService(f.store, f.directory, f.provisioner, f.notifier, "https://productcube.io/invite", nil)
	return f
}

var (
	alice     = models.Caller{UserID: "u1"}
	bob       = models.Caller{UserID: "u2"}
	anonymous = models.Caller{}
	svcCaller = models.Caller{IsService: true}
)

func TestCreateThenGetRoundtrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ws, err := f.svc.Create(ctx, alice, "acme")
	require.NoError(t, err)
	require.Len(t, ws.ID, 8)
	assert.Equal(t, []string{"u1"}, ws.Members)
	assert.Empty(t, ws.Invited)
	assert.False(t, ws.CreatedAt.IsZero())

	view, err := f.svc.Get(ctx, alice, "acme")
	require.NoError(t, err)
	require.Len(t, view.Members, 1)
	assert.Equal(t, utils.PublicID("u1"), view.Members[0].ID)
	assert.Empty(t, view.Invited)
}

func TestCreateRejectsAnonymousAndBadNames(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, anonymous, "acme")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = f.svc.Create(ctx, alice, "ab")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestCreateNameUniqueCaseInsensitive(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, alice, "Foo")
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, bob, "foo")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestCreateMintsDistinctIDs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		ws, err := f.svc.Create(ctx, alice, fmt.Sprintf("space-%d", i))
		require.NoError(t, err)
		assert.False(t, seen[ws.ID], "id %q minted twice", ws.ID)
		seen[ws.ID] = true
	}
}

func TestGetAuthorization(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, alice, "acme")
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, anonymous, "acme")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = f.svc.Get(ctx, bob, "acme")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Get(ctx, alice, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListReturnsOnlyMemberWorkspaces(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, alice, "alpha")
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, bob, "beta")
	require.NoError(t, err)

	list, err := f.svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "alpha", list[0].Name)

	_, err = f.svc.List(ctx, anonymous)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestInviteThenAccept(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.directory.emails["jane@doe.com"] = "u2"

	_, err := f.svc.Create(ctx, alice, "acme")
	require.NoError(t, err)

	require.NoError(t, f.svc.Invite(ctx, alice, "acme", "jane@doe.com"))

	ws, err := f.store.GetByName(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, ws.Invited)

	require.NoError(t, f.svc.Accept(ctx, bob, "acme"))

	ws, err = f.store.GetByName(ctx, "acme")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u2"}, ws.Members)
	assert.Empty(t, ws.Invited)
}

func TestInviteThenDecline(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.directory.emails["jane@doe.com"] = "u2"

	_, err := f.svc.Create(ctx, alice, "acme")
	require.NoError(t, err)
	require.NoError(t, f.svc.Invite(ctx, alice, "acme", "jane@doe.com"))

	require.NoError(t, f.svc.Decline(ctx, bob, "acme"))

	ws, err := f.store.GetByName(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ws.Members)
	assert.Empty(t, ws.Invited)
}

func TestInviteGuards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.directory.emails["jane@doe.com"] = "u2"

	_, err := f.svc.Create(ctx, alice, "acme")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Invite(ctx, anonymous, "acme", "jane@doe.com"), ErrNotAuthenticated)
	assert.ErrorIs(t, f.svc.Invite(ctx, bob, "acme", "jane@doe.com"), ErrForbidden)
	assert.ErrorIs(t, f.svc.Invite(ctx, alice, "ghost", "jane@doe.com"), ErrForbidden)
	assert.ErrorIs(t, f.svc.Invite(ctx, alice, "acme", "not-an-email"), ErrInvalidEmail)

	require.NoError(t, f.svc.Invite(ctx, alice, "acme", "jane@doe.com"))
	assert.ErrorIs(t, f.svc.Invite(ctx, alice, "acme", "jane@doe.com"), ErrAlreadyInvited)

	require.NoError(t, f.svc.Accept(ctx, bob, "acme"))
	assert.ErrorIs(t, f.svc.Invite(ctx, alice, "acme", "jane@doe.com"), ErrAlreadyMember)
}

func TestInviteProvisionsUnknownEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, alice, "acme")
	require.NoError(t, err)

	require.NoError(t, f.svc.Invite(ctx, alice, "acme", "new@person.io"))
	assert.Equal(t, []string{"new@person.io"}, f.provisioner.calls)

	ws, err := f.store.GetByName(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"prov-new@person.io"}, ws.Invited)

	require.Len(t, f.notifier.sent, 1)
	sent := f.notifier.sent[0]
	assert.Equal(t, "acme", sent.WorkspaceName)
	assert.Equal(t, "new@person.io", sent.RecipientEmail)
	assert.Equal(t, "u1-call", sent.InviterName)
	assert.Equal(t, "https://productcube.io/invite/acme", sent.AcceptLink)
}

func TestInviteSurvivesNotifierFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.directory.emails["jane@doe.com"] = "u2"
	f.notifier.err = fmt.Errorf("queue down")

	_, err := f.svc.Create(ctx, alice, "acme")
	require.NoError(t, err)

	require.NoError(t, f.svc.Invite(ctx, alice, "acme", "jane@doe.com"))

	ws, err := f.store.GetByName(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, ws.Invited)
}

func TestInviteDirectoryFailureIsUpstream(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, alice, "acme")
	require.NoError(t, err)

	f.directory.err = fmt.Errorf("user service down")
	assert.ErrorIs(t, f.svc.Invite(ctx, alice, "acme", "jane@doe.com"), ErrUpstream)
}

func TestAcceptDeclinePreconditions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, alice, "acme")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Accept(ctx, anonymous, "acme"), ErrInvalidRequest)
	assert.ErrorIs(t, f.svc.Accept(ctx, bob, "ghost"), ErrInvalidRequest)
	assert.ErrorIs(t, f.svc.Accept(ctx, bob, "acme"), ErrInvalidRequest) // not invited
	assert.ErrorIs(t, f.svc.Decline(ctx, bob, "acme"), ErrInvalidRequest)
}

func TestDeleteWorkspace(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, alice, "acme")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, anonymous, "acme"), ErrForbidden)
	assert.ErrorIs(t, f.svc.Delete(ctx, bob, "acme"), ErrForbidden)
	assert.ErrorIs(t, f.svc.Delete(ctx, alice, "ghost"), ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, alice, "acme"))
	_, err = f.svc.Get(ctx, alice, "acme")
	assert.ErrorIs(t, err, ErrNotFound)
}

// The full lifecycle: create as U1, invite U2 by email, accept as U2, delete
// as U1, and the workspace is gone for both.
func TestMembershipLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.directory.emails["jane@doe.com"] = "u2"

	ws, err := f.svc.Create(ctx, alice, "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ws.Members)

	require.NoError(t, f.svc.Invite(ctx, alice, "acme", "jane@doe.com"))
	row, err := f.store.GetByName(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, row.Invited)

	require.NoError(t, f.svc.Accept(ctx, bob, "acme"))
	row, err = f.store.GetByName(ctx, "acme")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u2"}, row.Members)
	assert.Empty(t, row.Invited)

	require.NoError(t, f.svc.Delete(ctx, alice, "acme"))
	_, err = f.svc.Get(ctx, alice, "acme")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Get(ctx, bob, "acme")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPendingInvitationsServiceOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.directory.emails["jane@doe.com"] = "u2"

	_, err := f.svc.Create(ctx, alice, "acme")
	require.NoError(t, err)
	require.NoError(t, f.svc.Invite(ctx, alice, "acme", "jane@doe.com"))

	_, err = f.svc.PendingInvitations(ctx, alice, "u2")
	assert.ErrorIs(t, err, ErrForbidden)

	names, err := f.svc.PendingInvitations(ctx, svcCaller, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"acme"}, names)
}

// N concurrent invites for N distinct invitees must all land: the store's
// conditional append never drops a concurrent writer's addition.
func TestConcurrentInvitesAllLand(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	const n = 20
	for i := 0; i < n; i++ {
		f.directory.emails[fmt.Sprintf("user%d@example.com", i)] = fmt.Sprintf("invitee-%d", i)
	}

	_, err := f.svc.Create(ctx, alice, "acme")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.svc.Invite(ctx, alice, "acme", fmt.Sprintf("user%d@example.com", i))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "invite %d", i)
	}

	ws, err := f.store.GetByName(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, ws.Invited, n)
	for i := 0; i < n; i++ {
		assert.Contains(t, ws.Invited, fmt.Sprintf("invitee-%d", i))
	}
}

func TestIsMember(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ws, err := f.svc.Create(ctx, alice, "acme")
	require.NoError(t, err)

	id, err := f.svc.IsMember(ctx, alice, "acme")
	require.NoError(t, err)
	assert.Equal(t, ws.ID, id)

	_, err = f.svc.IsMember(ctx, bob, "acme")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.IsMember(ctx, anonymous, "acme")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = f.svc.IsMember(ctx, alice, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
