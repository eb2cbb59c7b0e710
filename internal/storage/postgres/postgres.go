package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pulse-service/internal/models"
	"pulse-service/pkg/response"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// #### users ####

func (s *Storage) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	const op = "storage.postgres.CreateUser"

	var id int64

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, full_name, section, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id`,
		user.Email, user.PasswordHash, user.FullName, user.Section, user.Role, user.CreatedAt,
	).Scan(&id)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return 0, fmt.Errorf("%s: %w", op, response.ErrConflict)
		}

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.postgres.GetUser"

	var user models.User

	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, full_name, section, role, created_at, updated_at
		FROM users WHERE id=$1`, id,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.Section, &user.Role, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.postgres.GetUserByEmail"

	var user models.User

	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, full_name, section, role, created_at, updated_at
		FROM users WHERE lower(email)=lower($1)`, email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.Section, &user.Role, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

func (s *Storage) ListUsers(ctx context.Context, excludeID int64) ([]*models.User, error) {
	const op = "storage.postgres.ListUsers"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, password_hash, full_name, section, role, created_at, updated_at
		FROM users WHERE id<>$1 ORDER BY id`, excludeID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var users []*models.User

	for rows.Next() {
		var user models.User

		err := rows.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.Section, &user.Role, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

// #### user status ####

func (s *Storage) GetStatus(ctx context.Context, userID int64) (*models.UserStatus, error) {
	const op = "storage.postgres.GetStatus"

	var status models.UserStatus

	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, status, current_location, available_until, last_updated
		FROM user_status WHERE user_id=$1`, userID,
	).Scan(&status.UserID, &status.Status, &status.Location, &status.AvailableUntil, &status.LastUpdated)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &status, nil
}

func (s *Storage) UpsertStatus(ctx context.Context, status *models.UserStatus) error {
	const op = "storage.postgres.UpsertStatus"

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_status (user_id, status, current_location, available_until, last_updated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id)
		DO UPDATE
		SET status = EXCLUDED.status,
			current_location = EXCLUDED.current_location,
			available_until = EXCLUDED.available_until,
			last_updated = EXCLUDED.last_updated`,
		status.UserID, status.Status, status.Location, status.AvailableUntil, status.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) ListStatuses(ctx context.Context) ([]*models.UserStatus, error) {
	const op = "storage.postgres.ListStatuses"

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, status, current_location, available_until, last_updated
		FROM user_status ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var statuses []*models.UserStatus

	for rows.Next() {
		var status models.UserStatus

		err := rows.Scan(&status.UserID, &status.Status, &status.Location, &status.AvailableUntil, &status.LastUpdated)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		statuses = append(statuses, &status)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return statuses, nil
}

// #### tasks ####

func (s *Storage) CreateTask(ctx context.Context, task *models.Task) (int64, error) {
	const op = "storage.postgres.CreateTask"

	var id int64

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tasks (title, description, assigned_to, created_by, status, priority, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id`,
		task.Title, task.Description, task.AssignedTo, task.CreatedBy, task.Status, task.Priority, task.DueDate, task.CreatedAt,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	const op = "storage.postgres.GetTask"

	var task models.Task

	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, assigned_to, created_by, status, priority, due_date, created_at, updated_at
		FROM tasks WHERE id=$1`, id,
	).Scan(&task.ID, &task.Title, &task.Description, &task.AssignedTo, &task.CreatedBy, &task.Status, &task.Priority, &task.DueDate, &task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &task, nil
}

func (s *Storage) ListTasks(ctx context.Context, userID int64) ([]*models.Task, error) {
	const op = "storage.postgres.ListTasks"

	// urgent > high > medium > low, then newest first
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, assigned_to, created_by, status, priority, due_date, created_at, updated_at
		FROM tasks
		WHERE assigned_to=$1 OR created_by=$1
		ORDER BY
			CASE priority
				WHEN 'urgent' THEN 1
				WHEN 'high' THEN 2
				WHEN 'medium' THEN 3
				WHEN 'low' THEN 4
				ELSE 5
			END,
			created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var tasks []*models.Task

	for rows.Next() {
		var task models.Task

		err := rows.Scan(&task.ID, &task.Title, &task.Description, &task.AssignedTo, &task.CreatedBy, &task.Status, &task.Priority, &task.DueDate, &task.CreatedAt, &task.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return tasks, nil
}

func (s *Storage) UpdateTask(ctx context.Context, task *models.Task) error {
	const op = "storage.postgres.UpdateTask"

	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET status=$2, priority=$3, updated_at=$4
		WHERE id=$1`,
		task.ID, task.Status, task.Priority, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) DeleteTask(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteTask"

	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

// #### sync requests ####

func (s *Storage) CreateSync(ctx context.Context, sync *models.SyncRequest) (int64, error) {
	const op = "storage.postgres.CreateSync"

	var id int64

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO sync_requests (from_user_id, to_user_id, status, meeting_time, location, duration_minutes, purpose, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		sync.FromUserID, sync.ToUserID, sync.Status, sync.MeetingTime, sync.Location, sync.DurationMinutes, sync.Purpose, sync.CreatedAt, sync.ExpiresAt,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetSync(ctx context.Context, id int64) (*models.SyncRequest, error) {
	const op = "storage.postgres.GetSync"

	var sync models.SyncRequest

	err := s.db.QueryRowContext(ctx, `
		SELECT id, from_user_id, to_user_id, status, meeting_time, location, duration_minutes, purpose, created_at, responded_at, expires_at
		FROM sync_requests WHERE id=$1`, id,
	).Scan(&sync.ID, &sync.FromUserID, &sync.ToUserID, &sync.Status, &sync.MeetingTime, &sync.Location, &sync.DurationMinutes, &sync.Purpose, &sync.CreatedAt, &sync.RespondedAt, &sync.ExpiresAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &sync, nil
}

func (s *Storage) ListPendingSyncs(ctx context.Context, toUserID int64, now time.Time) ([]*models.SyncRequest, error) {
	const op = "storage.postgres.ListPendingSyncs"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, from_user_id, to_user_id, status, meeting_time, location, duration_minutes, purpose, created_at, responded_at, expires_at
		FROM sync_requests
		WHERE to_user_id=$1 AND status='pending' AND expires_at > $2
		ORDER BY created_at DESC`, toUserID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var syncs []*models.SyncRequest

	for rows.Next() {
		var sync models.SyncRequest

		err := rows.Scan(&sync.ID, &sync.FromUserID, &sync.ToUserID, &sync.Status, &sync.MeetingTime, &sync.Location, &sync.DurationMinutes, &sync.Purpose, &sync.CreatedAt, &sync.RespondedAt, &sync.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		syncs = append(syncs, &sync)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return syncs, nil
}

func (s *Storage) UpdateSyncStatus(ctx context.Context, id int64, status models.SyncStatus, respondedAt time.Time) error {
	const op = "storage.postgres.UpdateSyncStatus"

	res, err := s.db.ExecContext(ctx, `
		UPDATE sync_requests
		SET status=$2, responded_at=$3
		WHERE id=$1`,
		id, status, respondedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}
