// Package post defines the persisted post record used by the storage
// layer and the resolvers.
package post

import "time"

// Post represents a stored post. CreatorID references the user record
// that owns the post.
type Post struct {
	ID        string
	Title     string
	Content   string
	ImageURL  string
	CreatorID string
	CreatedAt time.Time
	UpdatedAt time.Time
}
