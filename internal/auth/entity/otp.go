package entity

import "time"

// OTPCode is a single login challenge. The raw code is never stored;
// CodeHash holds its HMAC-SHA256.
type OTPCode struct {
	ID         int64
	UserID     int64
	CodeHash   string
	Attempts   int16
	Consumed   bool
	Superseded bool
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

func (c OTPCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// RequestWindow summarizes how many codes a user created inside the
// trailing rate-limit window and when the oldest of them was created.
type RequestWindow struct {
	Count  int64
	Oldest time.Time
}
