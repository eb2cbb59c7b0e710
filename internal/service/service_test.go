package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"pulse-service/api"
	"pulse-service/internal/models"
	"pulse-service/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	users    map[int64]*models.User
	statuses map[int64]*models.UserStatus
	tasks    map[int64]*models.Task
	syncs    map[int64]*models.SyncRequest
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[int64]*models.User),
		statuses: make(map[int64]*models.UserStatus),
		tasks:    make(map[int64]*models.Task),
		syncs:    make(map[int64]*models.SyncRequest),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) CreateUser(_ context.Context, user *models.User) (int64, error) {
	for _, u := range f.users {
		if u.Email == user.Email {
			return 0, response.ErrConflict
		}
	}

	id := f.id()
	clone := *user
	clone.ID = id
	f.users[id] = &clone

	return id, nil
}

func (f *fakeStore) GetUser(_ context.Context, id int64) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	return user, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, response.ErrNotFound
}

func (f *fakeStore) ListUsers(_ context.Context, excludeID int64) ([]*models.User, error) {
	var users []*models.User
	for _, u := range f.users {
		if u.ID != excludeID {
			users = append(users, u)
		}
	}
	return users, nil
}

func (f *fakeStore) GetStatus(_ context.Context, userID int64) (*models.UserStatus, error) {
	status, ok := f.statuses[userID]
	if !ok {
		return nil, response.ErrNotFound
	}
	return status, nil
}

func (f *fakeStore) UpsertStatus(_ context.Context, status *models.UserStatus) error {
	clone := *status
	f.statuses[status.UserID] = &clone
	return nil
}

func (f *fakeStore) ListStatuses(_ context.Context) ([]*models.UserStatus, error) {
	var statuses []*models.UserStatus
	for _, s := range f.statuses {
		statuses = append(statuses, s)
	}
	return statuses, nil
}

func (f *fakeStore) CreateTask(_ context.Context, task *models.Task) (int64, error) {
	id := f.id()
	clone := *task
	clone.ID = id
	f.tasks[id] = &clone
	return id, nil
}

func (f *fakeStore) GetTask(_ context.Context, id int64) (*models.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	return task, nil
}

func (f *fakeStore) ListTasks(_ context.Context, userID int64) ([]*models.Task, error) {
	var tasks []*models.Task
	for _, task := range f.tasks {
		if task.AssignedTo == userID || task.CreatedBy == userID {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (f *fakeStore) UpdateTask(_ context.Context, task *models.Task) error {
	if _, ok := f.tasks[task.ID]; !ok {
		return response.ErrNotFound
	}
	clone := *task
	f.tasks[task.ID] = &clone
	return nil
}

func (f *fakeStore) DeleteTask(_ context.Context, id int64) error {
	if _, ok := f.tasks[id]; !ok {
		return response.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeStore) CreateSync(_ context.Context, sync *models.SyncRequest) (int64, error) {
	id := f.id()
	clone := *sync
	clone.ID = id
	f.syncs[id] = &clone
	return id, nil
}

func (f *fakeStore) GetSync(_ context.Context, id int64) (*models.SyncRequest, error) {
	sync, ok := f.syncs[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	return sync, nil
}

func (f *fakeStore) ListPendingSyncs(_ context.Context, toUserID int64, now time.Time) ([]*models.SyncRequest, error) {
	var syncs []*models.SyncRequest
	for _, sync := range f.syncs {
		if sync.ToUserID == toUserID && sync.Status == models.SyncPending && sync.ExpiresAt.After(now) {
			syncs = append(syncs, sync)
		}
	}
	return syncs, nil
}

func (f *fakeStore) UpdateSyncStatus(_ context.Context, id int64, status models.SyncStatus, respondedAt time.Time) error {
	sync, ok := f.syncs[id]
	if !ok {
		return response.ErrNotFound
	}
	sync.Status = status
	sync.RespondedAt = &respondedAt
	return nil
}

type fakeLocker struct {
	held   map[string]bool
	denied bool
}

func (f *fakeLocker) Lock(_ context.Context, key string, _ time.Duration) (bool, error) {
	if f.denied {
		return false, nil
	}
	if f.held == nil {
		f.held = make(map[string]bool)
	}
	if f.held[key] {
		return false, nil
	}
	f.held[key] = true
	return true, nil
}

func (f *fakeLocker) Unlock(_ context.Context, key string) error {
	delete(f.held, key)
	return nil
}

type fakeSessions struct {
	created map[string]int64
	nextID  int
}

func (f *fakeSessions) Create(_ context.Context, userID int64, _ time.Duration) (string, error) {
	if f.created == nil {
		f.created = make(map[string]int64)
	}
	f.nextID++
	token := fmt.Sprintf("token-%d", f.nextID)
	f.created[token] = userID
	return token, nil
}

func (f *fakeSessions) Delete(_ context.Context, token string) error {
	delete(f.created, token)
	return nil
}

type fixture struct {
	svc      *Service
	store    *fakeStore
	locker   *fakeLocker
	sessions *fakeSessions
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:    newFakeStore(),
		locker:   &fakeLocker{},
		sessions: &fakeSessions{},
		clock:    time.Date(2024, 11, 4, 10, 20, 0, 0, time.UTC),
	}

	f.svc = NewService(f.store, f.locker, f.sessions, Options{
		SyncExpiry: 15 * time.Minute,
		Now:        func() time.Time { return f.clock },
	})

	return f
}

func (f *fixture) signup(t *testing.T, email, name string) int64 {
	t.Helper()

	user, err := f.svc.Signup(context.Background(), &api.SignupRequest{
		Email:    email,
		Password: "demo123",
		FullName: name,
		Section:  "4H",
	})
	require.NoError(t, err)

	return user.ID
}

func TestSignupAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.signup(t, "bharath@circle13.com", "Bharath")

	// a fresh status row comes with the account
	status, err := f.svc.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "offline", status.Status)

	session, err := f.svc.Login(ctx, &api.LoginRequest{Email: "bharath@circle13.com", Password: "demo123"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, id, session.User.ID)

	_, err = f.svc.Login(ctx, &api.LoginRequest{Email: "bharath@circle13.com", Password: "wrong"})
	assert.ErrorIs(t, err, response.ErrUnauthorized)

	_, err = f.svc.Login(ctx, &api.LoginRequest{Email: "nobody@circle13.com", Password: "demo123"})
	assert.ErrorIs(t, err, response.ErrUnauthorized)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.signup(t, "bharath@circle13.com", "Bharath")

	session, err := f.svc.Login(ctx, &api.LoginRequest{Email: "bharath@circle13.com", Password: "demo123"})
	require.NoError(t, err)

	_, ok := f.sessions.created[session.Token]
	require.True(t, ok)

	require.NoError(t, f.svc.Logout(ctx, session.Token))

	_, ok = f.sessions.created[session.Token]
	assert.False(t, ok)
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newFixture(t)

	f.signup(t, "bharath@circle13.com", "Bharath")

	_, err := f.svc.Signup(context.Background(), &api.SignupRequest{
		Email:    "bharath@circle13.com",
		Password: "demo123",
		FullName: "Imposter",
	})
	assert.ErrorIs(t, err, response.ErrConflict)
}

func TestSignupValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, &api.SignupRequest{Email: "not-an-email", Password: "demo123"})
	assert.ErrorIs(t, err, response.ErrBadRequest)

	_, err = f.svc.Signup(ctx, &api.SignupRequest{Email: "a@b.com", Password: "short"})
	assert.ErrorIs(t, err, response.ErrBadRequest)
}

func TestSetStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.signup(t, "akhil@circle13.com", "Akhil")

	location := "Library"
	status, err := f.svc.SetStatus(ctx, id, &api.StatusUpdateRequest{
		Status:   "free",
		Location: &location,
	})
	require.NoError(t, err)
	assert.Equal(t, "free", status.Status)
	assert.Equal(t, f.clock, status.LastUpdated)

	_, err = f.svc.SetStatus(ctx, id, &api.StatusUpdateRequest{Status: "sleeping"})
	assert.ErrorIs(t, err, response.ErrBadRequest)
}

func TestTeamExcludesCaller(t *testing.T) {
	f := newFixture(t)

	bharath := f.signup(t, "bharath@circle13.com", "Bharath")
	akhil := f.signup(t, "akhil@circle13.com", "Akhil")

	members, err := f.svc.Team(context.Background(), bharath)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, akhil, members[0].ID)
	require.NotNil(t, members[0].Status)
	assert.Equal(t, "offline", members[0].Status.Status)
}

func TestTaskLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bharath := f.signup(t, "bharath@circle13.com", "Bharath")
	akhil := f.signup(t, "akhil@circle13.com", "Akhil")

	task, err := f.svc.CreateTask(ctx, bharath, &api.TaskCreateRequest{
		Title:      "Complete MVP landing page",
		AssignedTo: &akhil,
		Priority:   "high",
	})
	require.NoError(t, err)
	assert.Equal(t, "todo", task.Status)
	assert.Equal(t, akhil, task.AssignedTo)
	assert.Equal(t, "Akhil", task.AssignedToName)

	// both creator and assignee see it
	forBharath, err := f.svc.ListTasks(ctx, bharath)
	require.NoError(t, err)
	assert.Len(t, forBharath, 1)

	forAkhil, err := f.svc.ListTasks(ctx, akhil)
	require.NoError(t, err)
	assert.Len(t, forAkhil, 1)

	done := "done"
	updated, err := f.svc.UpdateTask(ctx, akhil, task.ID, &api.TaskUpdateRequest{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, "done", updated.Status)

	bad := "abandoned"
	_, err = f.svc.UpdateTask(ctx, akhil, task.ID, &api.TaskUpdateRequest{Status: &bad})
	assert.ErrorIs(t, err, response.ErrBadRequest)

	require.NoError(t, f.svc.DeleteTask(ctx, bharath, task.ID))
	assert.ErrorIs(t, f.svc.DeleteTask(ctx, bharath, task.ID), response.ErrNotFound)
}

func TestTaskOwnershipCheck(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bharath := f.signup(t, "bharath@circle13.com", "Bharath")
	stranger := f.signup(t, "stranger@circle13.com", "Stranger")

	task, err := f.svc.CreateTask(ctx, bharath, &api.TaskCreateRequest{Title: "Setup authentication"})
	require.NoError(t, err)

	done := "done"
	_, err = f.svc.UpdateTask(ctx, stranger, task.ID, &api.TaskUpdateRequest{Status: &done})
	assert.ErrorIs(t, err, response.ErrNotFound)

	assert.ErrorIs(t, f.svc.DeleteTask(ctx, stranger, task.ID), response.ErrNotFound)
}

func TestSyncLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bharath := f.signup(t, "bharath@circle13.com", "Bharath")
	akhil := f.signup(t, "akhil@circle13.com", "Akhil")

	sync, err := f.svc.CreateSync(ctx, bharath, &api.SyncCreateRequest{
		ToUserID:    akhil,
		MeetingTime: f.clock.Add(30 * time.Minute).Format(time.RFC3339),
		Location:    "Library steps",
		Purpose:     "Sprint planning",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", sync.Status)
	assert.Equal(t, f.clock.Add(15*time.Minute), sync.ExpiresAt)
	assert.Equal(t, 15, sync.DurationMinutes)

	pending, err := f.svc.PendingSyncs(ctx, akhil)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	// nothing pending for the sender
	pending, err = f.svc.PendingSyncs(ctx, bharath)
	require.NoError(t, err)
	assert.Empty(t, pending)

	answered, err := f.svc.RespondSync(ctx, akhil, sync.ID, &api.SyncRespondRequest{Status: "accepted"})
	require.NoError(t, err)
	assert.Equal(t, "accepted", answered.Status)
	require.NotNil(t, answered.RespondedAt)

	// second answer conflicts
	_, err = f.svc.RespondSync(ctx, akhil, sync.ID, &api.SyncRespondRequest{Status: "declined"})
	assert.ErrorIs(t, err, response.ErrConflict)
}

func TestSyncRespondGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bharath := f.signup(t, "bharath@circle13.com", "Bharath")
	akhil := f.signup(t, "akhil@circle13.com", "Akhil")

	sync, err := f.svc.CreateSync(ctx, bharath, &api.SyncCreateRequest{
		ToUserID:    akhil,
		MeetingTime: f.clock.Format(time.RFC3339),
	})
	require.NoError(t, err)

	// only the addressee may answer; the sender sees no such row
	_, err = f.svc.RespondSync(ctx, bharath, sync.ID, &api.SyncRespondRequest{Status: "accepted"})
	assert.ErrorIs(t, err, response.ErrNotFound)

	_, err = f.svc.RespondSync(ctx, akhil, sync.ID, &api.SyncRespondRequest{Status: "maybe"})
	assert.ErrorIs(t, err, response.ErrBadRequest)

	// expired request can no longer be answered
	f.clock = f.clock.Add(16 * time.Minute)
	_, err = f.svc.RespondSync(ctx, akhil, sync.ID, &api.SyncRespondRequest{Status: "accepted"})
	assert.ErrorIs(t, err, response.ErrSyncExpired)

	// and it disappears from the pending list
	pending, err := f.svc.PendingSyncs(ctx, akhil)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSyncRespondLocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bharath := f.signup(t, "bharath@circle13.com", "Bharath")
	akhil := f.signup(t, "akhil@circle13.com", "Akhil")

	sync, err := f.svc.CreateSync(ctx, bharath, &api.SyncCreateRequest{
		ToUserID:    akhil,
		MeetingTime: f.clock.Format(time.RFC3339),
	})
	require.NoError(t, err)

	f.locker.denied = true

	_, err = f.svc.RespondSync(ctx, akhil, sync.ID, &api.SyncRespondRequest{Status: "accepted"})
	assert.ErrorIs(t, err, response.ErrLocked)
}

func TestCreateSyncValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bharath := f.signup(t, "bharath@circle13.com", "Bharath")

	// no self-sync
	_, err := f.svc.CreateSync(ctx, bharath, &api.SyncCreateRequest{
		ToUserID:    bharath,
		MeetingTime: f.clock.Format(time.RFC3339),
	})
	assert.ErrorIs(t, err, response.ErrBadRequest)

	// unknown addressee
	_, err = f.svc.CreateSync(ctx, bharath, &api.SyncCreateRequest{
		ToUserID:    999,
		MeetingTime: f.clock.Format(time.RFC3339),
	})
	assert.ErrorIs(t, err, response.ErrNotFound)
}
