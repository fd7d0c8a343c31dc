// Package mockstorage provides a testify-based mock implementation
// of the storage interface. It is used for unit testing the dispatch
// layer and the resolvers by simulating storage behavior.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dkhodos/postshare/internal/post"
	"github.com/dkhodos/postshare/internal/user"
)

// StorageMock is a testify mock that implements storage.Storage.
//
// Use it in tests to simulate database behavior, including failures.
type StorageMock struct {
	mock.Mock
}

// CreateUser mocks storing a new user.
func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	args := m.Called(ctx, usr)
	return args.String(0), args.Error(1)
}

// FindUserByID mocks looking a user up by ID.
func (m *StorageMock) FindUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	args := m.Called(ctx, userID)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// FindUserByEmail mocks looking a user up by email.
func (m *StorageMock) FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	args := m.Called(ctx, email)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// UpdateUserStatus mocks updating a user's status.
func (m *StorageMock) UpdateUserStatus(ctx context.Context, userID, status string) error {
	args := m.Called(ctx, userID, status)
	return args.Error(0)
}

// CreatePost mocks storing a new post.
func (m *StorageMock) CreatePost(ctx context.Context, pst *post.Post) (string, error) {
	args := m.Called(ctx, pst)
	return args.String(0), args.Error(1)
}

// FindPostByID mocks looking a post up by ID.
func (m *StorageMock) FindPostByID(ctx context.Context, postID string) (*post.Post, bool, error) {
	args := m.Called(ctx, postID)
	pst, _ := args.Get(0).(*post.Post)
	return pst, args.Bool(1), args.Error(2)
}

// FindPosts mocks listing one page of posts.
func (m *StorageMock) FindPosts(ctx context.Context, skip, limit int64) ([]*post.Post, error) {
	args := m.Called(ctx, skip, limit)
	posts, _ := args.Get(0).([]*post.Post)
	return posts, args.Error(1)
}

// FindPostsByCreator mocks listing the posts of one user.
func (m *StorageMock) FindPostsByCreator(ctx context.Context, userID string) ([]*post.Post, error) {
	args := m.Called(ctx, userID)
	posts, _ := args.Get(0).([]*post.Post)
	return posts, args.Error(1)
}

// CountPosts mocks counting all posts.
func (m *StorageMock) CountPosts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// UpdatePost mocks updating a post.
func (m *StorageMock) UpdatePost(ctx context.Context, pst *post.Post) error {
	args := m.Called(ctx, pst)
	return args.Error(0)
}

// DeletePost mocks deleting a post.
func (m *StorageMock) DeletePost(ctx context.Context, postID string) error {
	args := m.Called(ctx, postID)
	return args.Error(0)
}

// Ping mocks the health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks closing the storage.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
