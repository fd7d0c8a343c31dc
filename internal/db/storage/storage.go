// Package storage declares the persistence interface of the service.
// Implementations live in the sibling mongodb and memorystorage packages.
package storage

import (
	"context"
	"errors"

	"github.com/dkhodos/postshare/internal/post"
	"github.com/dkhodos/postshare/internal/user"
)

// ErrDuplicateEmail is returned by CreateUser when the email is already
// taken. The resolvers map it to a conflict error.
var ErrDuplicateEmail = errors.New("email already exists")

// Storage is the full persistence contract. Find methods report absence
// via the boolean, not an error.
type Storage interface {
	CreateUser(ctx context.Context, usr *user.User) (string, error)

	FindUserByID(ctx context.Context, userID string) (*user.User, bool, error)

	FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error)

	UpdateUserStatus(ctx context.Context, userID, status string) error

	CreatePost(ctx context.Context, pst *post.Post) (string, error)

	FindPostByID(ctx context.Context, postID string) (*post.Post, bool, error)

	FindPosts(ctx context.Context, skip, limit int64) ([]*post.Post, error)

	FindPostsByCreator(ctx context.Context, userID string) ([]*post.Post, error)

	CountPosts(ctx context.Context) (int64, error)

	UpdatePost(ctx context.Context, pst *post.Post) error

	DeletePost(ctx context.Context, postID string) error

	Ping(ctx context.Context) error

	Close() error
}
