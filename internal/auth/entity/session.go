package entity

import "time"

// Session is a server-side login session. TokenHash holds the HMAC-SHA256
// of the opaque token handed to the client; the raw token is returned once
// and never persisted.
type Session struct {
	ID        int64
	UserID    int64
	TokenHash string
	IP        string
	UserAgent string
	Active    bool
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// SessionUser is a session row joined with its owning user, as loaded on
// the token-validation path.
type SessionUser struct {
	SessionID        int64
	TokenHash        string
	Active           bool
	ExpiresAt        time.Time
	UserID           int64
	Mobile           string
	Email            string
	ProfileCompleted bool
}

func (su SessionUser) Identifier() string {
	if su.Mobile != "" {
		return su.Mobile
	}
	return su.Email
}
