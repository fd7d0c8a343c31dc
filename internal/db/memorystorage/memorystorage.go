// Package memorystorage provides a map-backed implementation of the
// storage interface. It backs tests and local runs without a MongoDB
// instance; data does not survive a restart.
package memorystorage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dkhodos/postshare/internal/db/storage"
	"github.com/dkhodos/postshare/internal/post"
	"github.com/dkhodos/postshare/internal/user"
)

// MemoryStorage is an in-memory storage.Storage implementation.
// It is safe for concurrent use by parallel requests.
type MemoryStorage struct {
	mu           sync.RWMutex
	users        map[string]*user.User
	usersByEmail map[string]string
	posts        map[string]*post.Post
}

// New creates an empty MemoryStorage.
func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		users:        map[string]*user.User{},
		usersByEmail: map[string]string{},
		posts:        map[string]*post.Post{},
	}, nil
}

// CreateUser stores a new user and returns its generated ID.
func (theStorage *MemoryStorage) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	if _, exists := theStorage.usersByEmail[usr.Email]; exists {
		return "", storage.ErrDuplicateEmail
	}

	stored := *usr
	stored.ID = uuid.New().String()
	theStorage.users[stored.ID] = &stored
	theStorage.usersByEmail[stored.Email] = stored.ID

	return stored.ID, nil
}

// FindUserByID returns the user with the given ID, if any.
func (theStorage *MemoryStorage) FindUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	usr, found := theStorage.users[userID]
	if !found {
		return nil, false, nil
	}

	result := *usr

	return &result, true, nil
}

// FindUserByEmail returns the user with the given email, if any.
func (theStorage *MemoryStorage) FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	userID, found := theStorage.usersByEmail[email]
	if !found {
		return nil, false, nil
	}

	result := *theStorage.users[userID]

	return &result, true, nil
}

// UpdateUserStatus sets the status field of the given user.
func (theStorage *MemoryStorage) UpdateUserStatus(ctx context.Context, userID, status string) error {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	usr, found := theStorage.users[userID]
	if found {
		usr.Status = status
	}

	return nil
}

// CreatePost stores a new post and returns its generated ID.
func (theStorage *MemoryStorage) CreatePost(ctx context.Context, pst *post.Post) (string, error) {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	stored := *pst
	stored.ID = uuid.New().String()
	theStorage.posts[stored.ID] = &stored

	return stored.ID, nil
}

// FindPostByID returns the post with the given ID, if any.
func (theStorage *MemoryStorage) FindPostByID(ctx context.Context, postID string) (*post.Post, bool, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	pst, found := theStorage.posts[postID]
	if !found {
		return nil, false, nil
	}

	result := *pst

	return &result, true, nil
}

// FindPosts returns one page of posts, newest first.
func (theStorage *MemoryStorage) FindPosts(ctx context.Context, skip, limit int64) ([]*post.Post, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	all := theStorage.sortedPostsLocked(func(*post.Post) bool { return true })

	if skip >= int64(len(all)) {
		return []*post.Post{}, nil
	}
	all = all[skip:]
	if limit > 0 && limit < int64(len(all)) {
		all = all[:limit]
	}

	return all, nil
}

// FindPostsByCreator returns all posts of the given user, newest first.
func (theStorage *MemoryStorage) FindPostsByCreator(ctx context.Context, userID string) ([]*post.Post, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	return theStorage.sortedPostsLocked(func(pst *post.Post) bool {
		return pst.CreatorID == userID
	}), nil
}

// CountPosts returns the total number of posts.
func (theStorage *MemoryStorage) CountPosts(ctx context.Context) (int64, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	return int64(len(theStorage.posts)), nil
}

// UpdatePost overwrites the mutable fields of the given post.
func (theStorage *MemoryStorage) UpdatePost(ctx context.Context, pst *post.Post) error {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	stored, found := theStorage.posts[pst.ID]
	if found {
		stored.Title = pst.Title
		stored.Content = pst.Content
		stored.ImageURL = pst.ImageURL
		stored.UpdatedAt = pst.UpdatedAt
	}

	return nil
}

// DeletePost removes the post with the given ID.
func (theStorage *MemoryStorage) DeletePost(ctx context.Context, postID string) error {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	delete(theStorage.posts, postID)

	return nil
}

// Ping always succeeds for the in-memory storage.
func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory storage.
func (theStorage *MemoryStorage) Close() error {
	return nil
}

func (theStorage *MemoryStorage) sortedPostsLocked(keep func(*post.Post) bool) []*post.Post {
	result := make([]*post.Post, 0, len(theStorage.posts))
	for _, pst := range theStorage.posts {
		if !keep(pst) {
			continue
		}
		copied := *pst
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result
}
