package models

import "time"

// Todo status values.
const (
	TodoStatusPending   = "pending"
	TodoStatusCompleted = "completed"
)

// Todo represents a single task owned by exactly one user.
// CompletedAt is non-nil iff Status == "completed".
type Todo struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt"`
	OwnerID     int64      `json:"-"`
}
