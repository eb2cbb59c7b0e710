package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pulse-service/api"
	"pulse-service/internal/lock"
	"pulse-service/internal/models"
	"pulse-service/pkg/response"

	"golang.org/x/crypto/bcrypt"
)

type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) (int64, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, excludeID int64) ([]*models.User, error)

	// User status
	GetStatus(ctx context.Context, userID int64) (*models.UserStatus, error)
	UpsertStatus(ctx context.Context, status *models.UserStatus) error
	ListStatuses(ctx context.Context) ([]*models.UserStatus, error)

	// Tasks
	CreateTask(ctx context.Context, task *models.Task) (int64, error)
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	ListTasks(ctx context.Context, userID int64) ([]*models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, id int64) error

	// Sync requests
	CreateSync(ctx context.Context, sync *models.SyncRequest) (int64, error)
	GetSync(ctx context.Context, id int64) (*models.SyncRequest, error)
	ListPendingSyncs(ctx context.Context, toUserID int64, now time.Time) ([]*models.SyncRequest, error)
	UpdateSyncStatus(ctx context.Context, id int64, status models.SyncStatus, respondedAt time.Time) error
}

type Sessions interface {
	Create(ctx context.Context, userID int64, ttl time.Duration) (string, error)
	Delete(ctx context.Context, token string) error
}

type Options struct {
	SessionTTL time.Duration
	SyncExpiry time.Duration
	Now        func() time.Time
}

type Service struct {
	store      Store
	locker     lock.Locker
	sessions   Sessions
	sessionTTL time.Duration
	syncExpiry time.Duration
	now        func() time.Time
}

func NewService(store Store, locker lock.Locker, sessions Sessions, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SessionTTL == 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.SyncExpiry == 0 {
		opts.SyncExpiry = 15 * time.Minute
	}

	return &Service{
		store:      store,
		locker:     locker,
		sessions:   sessions,
		sessionTTL: opts.SessionTTL,
		syncExpiry: opts.SyncExpiry,
		now:        opts.Now,
	}
}

// Auth

func (s *Service) Signup(ctx context.Context, req *api.SignupRequest) (*api.UserResponse, error) {
	const op = "service.Signup"

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%s: invalid email: %w", op, response.ErrBadRequest)
	}

	if len(req.Password) < 6 {
		return nil, fmt.Errorf("%s: password too short: %w", op, response.ErrBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Section:      req.Section,
		Role:         "founder",
		CreatedAt:    now,
	}

	id, err := s.store.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, response.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user.ID = id
	user.UpdatedAt = now

	// every user starts with an offline status row
	status := &models.UserStatus{
		UserID:      id,
		Status:      models.StatusOffline,
		LastUpdated: now,
	}

	if err := s.store.UpsertStatus(ctx, status); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return userResponse(user), nil
}

func (s *Service) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	const op = "service.Login"

	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, response.ErrUnauthorized)
	}

	token, err := s.sessions.Create(ctx, user.ID, s.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.LoginResponse{
		Token: token,
		User:  *userResponse(user),
	}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	const op = "service.Logout"

	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Status

func (s *Service) GetStatus(ctx context.Context, userID int64) (*api.StatusResponse, error) {
	const op = "service.GetStatus"

	status, err := s.store.GetStatus(ctx, userID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return statusResponse(status), nil
}

func (s *Service) SetStatus(ctx context.Context, userID int64, req *api.StatusUpdateRequest) (*api.StatusResponse, error) {
	const op = "service.SetStatus"

	kind := models.StatusKind(req.Status)
	if !kind.Valid() {
		return nil, fmt.Errorf("%s: invalid status %q: %w", op, req.Status, response.ErrBadRequest)
	}

	var availableUntil *time.Time
	if req.AvailableUntil != nil && *req.AvailableUntil != "" {
		t, err := time.Parse(time.RFC3339, *req.AvailableUntil)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid available_until: %w", op, response.ErrBadRequest)
		}
		availableUntil = &t
	}

	status := &models.UserStatus{
		UserID:         userID,
		Status:         kind,
		Location:       req.Location,
		AvailableUntil: availableUntil,
		LastUpdated:    s.now().UTC(),
	}

	if err := s.store.UpsertStatus(ctx, status); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return statusResponse(status), nil
}

// Team

func (s *Service) Team(ctx context.Context, callerID int64) ([]*api.TeamMemberResponse, error) {
	const op = "service.Team"

	users, err := s.store.ListUsers(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	statuses, err := s.store.ListStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	byUser := make(map[int64]*models.UserStatus, len(statuses))
	for _, status := range statuses {
		byUser[status.UserID] = status
	}

	members := make([]*api.TeamMemberResponse, 0, len(users))

	for _, user := range users {
		member := &api.TeamMemberResponse{
			UserResponse: *userResponse(user),
		}
		if status, ok := byUser[user.ID]; ok {
			member.Status = statusResponse(status)
		}
		members = append(members, member)
	}

	return members, nil
}

// Statuses returns every founder's status row for the dashboard page.
func (s *Service) Statuses(ctx context.Context) ([]*api.StatusResponse, error) {
	const op = "service.Statuses"

	statuses, err := s.store.ListStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.StatusResponse, 0, len(statuses))
	for _, status := range statuses {
		result = append(result, statusResponse(status))
	}

	return result, nil
}

// Tasks

func (s *Service) CreateTask(ctx context.Context, callerID int64, req *api.TaskCreateRequest) (*api.TaskResponse, error) {
	const op = "service.CreateTask"

	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%s: title is required: %w", op, response.ErrBadRequest)
	}

	priority := models.PriorityMedium
	if req.Priority != "" {
		priority = models.TaskPriority(req.Priority)
		if !priority.Valid() {
			return nil, fmt.Errorf("%s: invalid priority %q: %w", op, req.Priority, response.ErrBadRequest)
		}
	}

	assignedTo := callerID
	if req.AssignedTo != nil {
		assignedTo = *req.AssignedTo
	}

	var dueDate *time.Time
	if req.DueDate != nil && *req.DueDate != "" {
		t, err := time.Parse(time.RFC3339, *req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid due_date: %w", op, response.ErrBadRequest)
		}
		dueDate = &t
	}

	now := s.now().UTC()

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  assignedTo,
		CreatedBy:   callerID,
		Status:      models.TaskTodo,
		Priority:    priority,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := s.store.CreateTask(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	task.ID = id

	return s.taskResponse(ctx, task), nil
}

func (s *Service) ListTasks(ctx context.Context, callerID int64) ([]*api.TaskResponse, error) {
	const op = "service.ListTasks"

	tasks, err := s.store.ListTasks(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		result = append(result, s.taskResponse(ctx, task))
	}

	return result, nil
}

func (s *Service) UpdateTask(ctx context.Context, callerID, id int64, req *api.TaskUpdateRequest) (*api.TaskResponse, error) {
	const op = "service.UpdateTask"

	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// per-row ownership check only: a task is visible to its assignee and
	// its creator, nobody else
	if task.AssignedTo != callerID && task.CreatedBy != callerID {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("%s: invalid status %q: %w", op, *req.Status, response.ErrBadRequest)
		}
		task.Status = status
	}

	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		if !priority.Valid() {
			return nil, fmt.Errorf("%s: invalid priority %q: %w", op, *req.Priority, response.ErrBadRequest)
		}
		task.Priority = priority
	}

	task.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.taskResponse(ctx, task), nil
}

func (s *Service) DeleteTask(ctx context.Context, callerID, id int64) error {
	const op = "service.DeleteTask"

	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if task.AssignedTo != callerID && task.CreatedBy != callerID {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	if err := s.store.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Sync requests

func (s *Service) CreateSync(ctx context.Context, callerID int64, req *api.SyncCreateRequest) (*api.SyncResponse, error) {
	const op = "service.CreateSync"

	if req.ToUserID == 0 || req.ToUserID == callerID {
		return nil, fmt.Errorf("%s: invalid to_user_id: %w", op, response.ErrBadRequest)
	}

	if _, err := s.store.GetUser(ctx, req.ToUserID); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	meetingTime, err := time.Parse(time.RFC3339, req.MeetingTime)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid meeting_time: %w", op, response.ErrBadRequest)
	}

	duration := req.Duration
	if duration <= 0 {
		duration = 15
	}

	now := s.now().UTC()

	sync := &models.SyncRequest{
		FromUserID:      callerID,
		ToUserID:        req.ToUserID,
		Status:          models.SyncPending,
		MeetingTime:     meetingTime,
		Location:        req.Location,
		DurationMinutes: duration,
		Purpose:         req.Purpose,
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.syncExpiry),
	}

	id, err := s.store.CreateSync(ctx, sync)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sync.ID = id

	return syncResponse(sync), nil
}

func (s *Service) PendingSyncs(ctx context.Context, callerID int64) ([]*api.SyncResponse, error) {
	const op = "service.PendingSyncs"

	syncs, err := s.store.ListPendingSyncs(ctx, callerID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.SyncResponse, 0, len(syncs))
	for _, sync := range syncs {
		result = append(result, syncResponse(sync))
	}

	return result, nil
}

func (s *Service) RespondSync(ctx context.Context, callerID, id int64, req *api.SyncRespondRequest) (*api.SyncResponse, error) {
	const op = "service.RespondSync"

	status := models.SyncStatus(req.Status)
	if status != models.SyncAccepted && status != models.SyncDeclined {
		return nil, fmt.Errorf("%s: invalid status %q: %w", op, req.Status, response.ErrBadRequest)
	}

	lockKey := fmt.Sprintf("sync:%d", id)

	locked, err := s.locker.Lock(ctx, lockKey, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%s: lock error: %w", op, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}
	defer func() {
		_ = s.locker.Unlock(ctx, lockKey)
	}()

	sync, err := s.store.GetSync(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// only the addressee may respond; others see the row as absent
	if sync.ToUserID != callerID {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	if sync.Status != models.SyncPending {
		return nil, fmt.Errorf("%s: %w", op, response.ErrConflict)
	}

	now := s.now().UTC()

	if now.After(sync.ExpiresAt) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrSyncExpired)
	}

	if err := s.store.UpdateSyncStatus(ctx, id, status, now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sync.Status = status
	sync.RespondedAt = &now

	return syncResponse(sync), nil
}

// mappers

func userResponse(user *models.User) *api.UserResponse {
	return &api.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Section:   user.Section,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

func statusResponse(status *models.UserStatus) *api.StatusResponse {
	return &api.StatusResponse{
		UserID:         status.UserID,
		Status:         string(status.Status),
		Location:       status.Location,
		AvailableUntil: status.AvailableUntil,
		LastUpdated:    status.LastUpdated,
	}
}

func (s *Service) taskResponse(ctx context.Context, task *models.Task) *api.TaskResponse {
	resp := &api.TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		AssignedTo:  task.AssignedTo,
		CreatedBy:   task.CreatedBy,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	if assignee, err := s.store.GetUser(ctx, task.AssignedTo); err == nil {
		resp.AssignedToName = assignee.FullName
	}

	return resp
}

func syncResponse(sync *models.SyncRequest) *api.SyncResponse {
	return &api.SyncResponse{
		ID:              sync.ID,
		FromUserID:      sync.FromUserID,
		ToUserID:        sync.ToUserID,
		Status:          string(sync.Status),
		MeetingTime:     sync.MeetingTime,
		Location:        sync.Location,
		DurationMinutes: sync.DurationMinutes,
		Purpose:         sync.Purpose,
		CreatedAt:       sync.CreatedAt,
		RespondedAt:     sync.RespondedAt,
		ExpiresAt:       sync.ExpiresAt,
	}
}
