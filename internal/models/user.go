package models

import "time"

// User represents a user account in the system.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	CreatedAt    time.Time `json:"createdAt"`
}

// UserSession is the identity resolved from the session cookie for one request.
// It is derived per request and never persisted server-side.
type UserSession struct {
	Username string `json:"username"`
	UserID   int64  `json:"userId"`
}
