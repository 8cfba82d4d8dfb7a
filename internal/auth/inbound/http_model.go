package inbound

import "time"

type LoginRequest struct {
	Identifier string `json:"identifier"`
}

type LoginResponse struct {
	Destination      string `json:"destination"`
	Channel          string `json:"channel"`
	ExpiresInSeconds int64  `json:"expires_in_seconds"`
}

func (LoginResponse) Message() string {
	return "A verification code has been sent."
}

type ResendRequest struct {
	Identifier string `json:"identifier"`
}

type ResendResponse struct {
	Destination      string `json:"destination"`
	Channel          string `json:"channel"`
	ExpiresInSeconds int64  `json:"expires_in_seconds"`
}

func (ResendResponse) Message() string {
	return "A new verification code has been sent."
}

type VerifyRequest struct {
	Identifier string `json:"identifier"`
	Code       string `json:"code"`
}

type VerifyResponse struct {
	Token            string    `json:"token"`
	ExpiresAt        time.Time `json:"expires_at"`
	ProfileCompleted bool      `json:"profile_completed"`
}

func (VerifyResponse) Message() string {
	return "Login successful."
}

type LogoutAllResponse struct {
	SessionsEnded int64 `json:"sessions_ended"`
}

type ProfileResponse struct {
	UserID           int64     `json:"user_id"`
	Mobile           string    `json:"mobile,omitempty"`
	Email            string    `json:"email,omitempty"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	ProfileCompleted bool      `json:"profile_completed"`
	CreatedAt        time.Time `json:"created_at"`
}

type ProfileUpdateRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type SessionItem struct {
	SessionID int64     `json:"session_id"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Current   bool      `json:"current"`
}

type SessionsResponse struct {
	Sessions []SessionItem `json:"sessions"`
}
