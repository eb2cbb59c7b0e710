package api

import "time"

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Section  string `json:"section"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Section   string    `json:"section"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type StatusUpdateRequest struct {
	Status         string  `json:"status"`
	Location       *string `json:"location,omitempty"`
	AvailableUntil *string `json:"available_until,omitempty"`
}

type StatusResponse struct {
	UserID         int64      `json:"user_id"`
	Status         string     `json:"status"`
	Location       *string    `json:"location,omitempty"`
	AvailableUntil *time.Time `json:"available_until,omitempty"`
	LastUpdated    time.Time  `json:"last_updated"`
}

type TeamMemberResponse struct {
	UserResponse
	Status *StatusResponse `json:"status,omitempty"`
}

type TaskCreateRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	AssignedTo  *int64  `json:"assigned_to,omitempty"`
	Priority    string  `json:"priority,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

type TaskUpdateRequest struct {
	Status   *string `json:"status,omitempty"`
	Priority *string `json:"priority,omitempty"`
}

type TaskResponse struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description,omitempty"`
	AssignedTo     int64      `json:"assigned_to"`
	AssignedToName string     `json:"assigned_to_name,omitempty"`
	CreatedBy      int64      `json:"created_by"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type SyncCreateRequest struct {
	ToUserID    int64  `json:"to_user_id"`
	MeetingTime string `json:"meeting_time"`
	Location    string `json:"location"`
	Duration    int    `json:"duration"`
	Purpose     string `json:"purpose"`
}

type SyncRespondRequest struct {
	Status string `json:"status"`
}

type SyncResponse struct {
	ID              int64      `json:"id"`
	FromUserID      int64      `json:"from_user_id"`
	ToUserID        int64      `json:"to_user_id"`
	Status          string     `json:"status"`
	MeetingTime     time.Time  `json:"meeting_time"`
	Location        string     `json:"location"`
	DurationMinutes int        `json:"duration_minutes"`
	Purpose         string     `json:"purpose"`
	CreatedAt       time.Time  `json:"created_at"`
	RespondedAt     *time.Time `json:"responded_at,omitempty"`
	ExpiresAt       time.Time  `json:"expires_at"`
}
