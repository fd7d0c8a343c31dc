// Package models defines the wire-level types of the GraphQL-style API.
// The field names and JSON shapes are part of the client contract and
// must stay stable.
package models

// User is the wire representation of a user.
type User struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

// Post is the wire representation of a post. Timestamps are RFC 3339 strings.
type Post struct {
	ID        string `json:"_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	ImageURL  string `json:"imageUrl"`
	Creator   User   `json:"creator"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// AuthData is returned by the login operation.
type AuthData struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// PostData is returned by the posts operation: one page of posts plus the
// total number of posts for pagination.
type PostData struct {
	Posts      []Post `json:"posts"`
	TotalPosts int64  `json:"totalPosts"`
}

// UserData is returned by the user and updateStatus operations:
// the user together with their posts.
type UserData struct {
	User
	Posts []Post `json:"posts"`
}

// UserInput carries the arguments of the createUser operation.
type UserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=5"`
}

// PostInput carries the arguments of the createPost and updatePost
// operations. ImageURL may be empty on update, which keeps the stored one.
type PostInput struct {
	Title    string `json:"title" validate:"required,min=5"`
	Content  string `json:"content" validate:"required,min=5"`
	ImageURL string `json:"imageUrl"`
}

// StatusInput carries the argument of the updateStatus operation.
type StatusInput struct {
	Status string `json:"status" validate:"required"`
}
