package entity

import "time"

// Comment belongs to exactly one post. PostID and AuthorID are immutable
// after creation; only Content may change.
type Comment struct {
	ID             int64
	PostID         int64
	AuthorID       string
	AuthorUsername string
	Content        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
