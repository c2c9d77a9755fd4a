package entity

import "time"

// Post is a blog entry. AuthorID is set at creation and never reassigned;
// all ownership checks compare against it.
type Post struct {
	ID             int64
	Title          string
	Content        string
	AuthorID       string
	AuthorUsername string // joined from users, not persisted on posts
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Comments       []Comment
}
