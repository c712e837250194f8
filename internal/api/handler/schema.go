package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// messageResponse is the envelope for operations that return no entity.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Request types ---

type loginRequest struct {
	Name     string `json:"name"     validate:"required"`
	Password string `json:"password" validate:"required"`
}

type setupPasswordRequest struct {
	Name     string `json:"name"     validate:"required"`
	Password string `json:"password" validate:"required"`
}

type createUserRequest struct {
	Name        string `json:"name"         validate:"required"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"         validate:"required,oneof=user supervisor admin"`
	// Password is optional: accounts created without one go through the
	// first-login setup at POST /auth/password.
	Password string `json:"password"`
}

type createTaskRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type assignTaskRequest struct {
	UserName string `json:"user_name" validate:"required"`
}

type commentRequest struct {
	Text string `json:"text" validate:"required"`
}

// --- Response types ---
// Owned by the transport layer so the JSON contract is not coupled to the
// snapshot encoding of the domain types.

type userResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name,omitempty"`
	Role        string    `json:"role"`
	PasswordSet bool      `json:"password_set"`
	CreatedAt   time.Time `json:"created_at"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userRefResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role"`
}

type commentResponse struct {
	Text      string          `json:"text"`
	Author    userRefResponse `json:"author"`
	CreatedAt time.Time       `json:"created_at"`
}

type taskResponse struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Status      string            `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	Assigned    []userRefResponse `json:"assigned_users"`
	Comments    []commentResponse `json:"comments"`
}

type archiveEntryResponse struct {
	ArchivedAt time.Time    `json:"archived_at"`
	Task       taskResponse `json:"task"`
}

type taskStatisticsResponse struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Finished int `json:"finished"`
}

type userStatisticsResponse struct {
	Total       int `json:"total"`
	Admins      int `json:"admins"`
	Supervisors int `json:"supervisors"`
	Users       int `json:"users"`
}

type statisticsResponse struct {
	Tasks taskStatisticsResponse `json:"tasks"`
	Users userStatisticsResponse `json:"users"`
}
