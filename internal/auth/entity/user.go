package entity

import "time"

type User struct {
	ID               int64
	Mobile           string
	Email            string
	FirstName        string
	LastName         string
	ProfileCompleted bool
	CreatedAt        time.Time
}

// Identifier returns the channel the account was registered with,
// preferring mobile when both are present.
func (u User) Identifier() string {
	if u.Mobile != "" {
		return u.Mobile
	}
	return u.Email
}

func (u User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return ""
	}
	return u.FirstName + " " + u.LastName
}
