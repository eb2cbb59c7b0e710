package models

import "time"

type StatusKind string

const (
	StatusFree      StatusKind = "free"
	StatusBusy      StatusKind = "busy"
	StatusInClass   StatusKind = "in_class"
	StatusAvailable StatusKind = "available"
	StatusOffline   StatusKind = "offline"
)

func (s StatusKind) Valid() bool {
	switch s {
	case StatusFree, StatusBusy, StatusInClass, StatusAvailable, StatusOffline:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Rank orders priorities for task listing, urgent first.
func (p TaskPriority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 1
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 3
	case PriorityLow:
		return 4
	}
	return 5
}

type SyncStatus string

const (
	SyncPending  SyncStatus = "pending"
	SyncAccepted SyncStatus = "accepted"
	SyncDeclined SyncStatus = "declined"
)

func (s SyncStatus) Valid() bool {
	switch s {
	case SyncPending, SyncAccepted, SyncDeclined:
		return true
	}
	return false
}

type User struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FullName     string    `db:"full_name"`
	Section      string    `db:"section"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type UserStatus struct {
	UserID         int64      `db:"user_id"`
	Status         StatusKind `db:"status"`
	Location       *string    `db:"current_location"`
	AvailableUntil *time.Time `db:"available_until"`
	LastUpdated    time.Time  `db:"last_updated"`
}

type Task struct {
	ID          int64        `db:"id"`
	Title       string       `db:"title"`
	Description *string      `db:"description"`
	AssignedTo  int64        `db:"assigned_to"`
	CreatedBy   int64        `db:"created_by"`
	Status      TaskStatus   `db:"status"`
	Priority    TaskPriority `db:"priority"`
	DueDate     *time.Time   `db:"due_date"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

type SyncRequest struct {
	ID              int64      `db:"id"`
	FromUserID      int64      `db:"from_user_id"`
	ToUserID        int64      `db:"to_user_id"`
	Status          SyncStatus `db:"status"`
	MeetingTime     time.Time  `db:"meeting_time"`
	Location        string     `db:"location"`
	DurationMinutes int        `db:"duration_minutes"`
	Purpose         string     `db:"purpose"`
	CreatedAt       time.Time  `db:"created_at"`
	RespondedAt     *time.Time `db:"responded_at"`
	ExpiresAt       time.Time  `db:"expires_at"`
}

type TeamMember struct {
	User
	Status *UserStatus
}
