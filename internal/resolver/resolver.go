// Package resolver implements the domain operations exposed through the
// GraphQL-style dispatch layer. Every operation reads the request's
// authentication result from the context, enforces its own authorization
// policy and performs one unit of work against the storage layer.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	validator "github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/dkhodos/postshare/internal/apperr"
	"github.com/dkhodos/postshare/internal/auth"
	"github.com/dkhodos/postshare/internal/db/storage"
	"github.com/dkhodos/postshare/internal/models"
	"github.com/dkhodos/postshare/internal/post"
	"github.com/dkhodos/postshare/internal/user"
)

// postsPerPage is the page size of the posts operation.
const postsPerPage = 2

type tokenIssuer interface {
	Issue(userID string) (string, error)
}

type imageCleaner interface {
	Enqueue(storedPath string)
}

// Resolver holds the collaborators shared by all domain operations.
type Resolver struct {
	db       storage.Storage
	tokens   tokenIssuer
	cleaner  imageCleaner
	validate *validator.Validate
}

// New creates a Resolver.
func New(db storage.Storage, tokens tokenIssuer, cleaner imageCleaner) *Resolver {
	return &Resolver{
		db:       db,
		tokens:   tokens,
		cleaner:  cleaner,
		validate: validator.New(),
	}
}

// CreateUser registers a new account. The email must be unused and the
// input valid; the password is stored as a bcrypt hash.
func (r *Resolver) CreateUser(ctx context.Context, input models.UserInput) (*models.User, error) {
	if err := r.validateInput(input); err != nil {
		return nil, err
	}

	_, exists, err := r.db.FindUserByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("User exists already!")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usr := &user.User{
		Email:        input.Email,
		PasswordHash: string(passwordHash),
		Name:         input.Name,
		Status:       "I am new!",
	}

	userID, err := r.db.CreateUser(ctx, usr)
	if errors.Is(err, storage.ErrDuplicateEmail) {
		return nil, apperr.Conflict("User exists already!")
	}
	if err != nil {
		return nil, err
	}

	return &models.User{
		ID:     userID,
		Name:   usr.Name,
		Email:  usr.Email,
		Status: usr.Status,
	}, nil
}

// Login checks the credentials and returns a signed identity token.
// Unknown email and wrong password are indistinguishable to the caller.
func (r *Resolver) Login(ctx context.Context, email, password string) (*models.AuthData, error) {
	usr, found, err := r.db.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperr.Unauthenticated("User not found.")
	}

	err = bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password))
	if err != nil {
		return nil, apperr.Unauthenticated("Password is incorrect.")
	}

	tokenString, err := r.tokens.Issue(usr.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &models.AuthData{
		Token:  tokenString,
		UserID: usr.ID,
	}, nil
}

// CreatePost creates a post owned by the authenticated user.
func (r *Resolver) CreatePost(ctx context.Context, input models.PostInput) (*models.Post, error) {
	identity, err := requireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.validateInput(input); err != nil {
		return nil, err
	}

	creator, found, err := r.db.FindUserByID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperr.Unauthenticated("Invalid user.")
	}

	now := time.Now()
	pst := &post.Post{
		Title:     input.Title,
		Content:   input.Content,
		ImageURL:  input.ImageURL,
		CreatorID: creator.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	postID, err := r.db.CreatePost(ctx, pst)
	if err != nil {
		return nil, err
	}
	pst.ID = postID

	return wirePost(pst, creator), nil
}

// Posts returns one page of posts, newest first, together with the total
// number of posts. Pages are 1-based; page 0 means page 1. Listing posts
// does not require authentication.
func (r *Resolver) Posts(ctx context.Context, page int) (*models.PostData, error) {
	if page < 1 {
		page = 1
	}

	totalPosts, err := r.db.CountPosts(ctx)
	if err != nil {
		return nil, err
	}

	posts, err := r.db.FindPosts(ctx, int64(page-1)*postsPerPage, postsPerPage)
	if err != nil {
		return nil, err
	}

	wirePosts, err := r.wirePosts(ctx, posts)
	if err != nil {
		return nil, err
	}

	return &models.PostData{
		Posts:      wirePosts,
		TotalPosts: totalPosts,
	}, nil
}

// Post returns a single post by ID. Reading a post does not require
// authentication.
func (r *Resolver) Post(ctx context.Context, postID string) (*models.Post, error) {
	pst, found, err := r.db.FindPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperr.NotFound("No post found!")
	}

	creator, err := r.creatorOf(ctx, pst)
	if err != nil {
		return nil, err
	}

	return wirePost(pst, creator), nil
}

// UpdatePost replaces the title, content and (when provided) image of a
// post. Only the post's creator may update it.
func (r *Resolver) UpdatePost(ctx context.Context, postID string, input models.PostInput) (*models.Post, error) {
	identity, err := requireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}

	pst, found, err := r.db.FindPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperr.NotFound("No post found!")
	}

	if pst.CreatorID != identity.UserID {
		return nil, apperr.Forbidden("Not authorized!")
	}

	if err := r.validateInput(input); err != nil {
		return nil, err
	}

	pst.Title = input.Title
	pst.Content = input.Content
	if input.ImageURL != "" {
		pst.ImageURL = input.ImageURL
	}
	pst.UpdatedAt = time.Now()

	if err := r.db.UpdatePost(ctx, pst); err != nil {
		return nil, err
	}

	creator, err := r.creatorOf(ctx, pst)
	if err != nil {
		return nil, err
	}

	return wirePost(pst, creator), nil
}

// DeletePost removes a post and schedules the removal of its stored
// image. Only the post's creator may delete it.
func (r *Resolver) DeletePost(ctx context.Context, postID string) (bool, error) {
	identity, err := requireAuthenticated(ctx)
	if err != nil {
		return false, err
	}

	pst, found, err := r.db.FindPostByID(ctx, postID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, apperr.NotFound("No post found!")
	}

	if pst.CreatorID != identity.UserID {
		return false, apperr.Forbidden("Not authorized!")
	}

	if err := r.db.DeletePost(ctx, postID); err != nil {
		return false, err
	}

	r.cleaner.Enqueue(pst.ImageURL)

	return true, nil
}

// User returns the authenticated user together with their posts.
func (r *Resolver) User(ctx context.Context) (*models.UserData, error) {
	identity, err := requireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}

	usr, found, err := r.db.FindUserByID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperr.NotFound("No user found!")
	}

	return r.wireUserData(ctx, usr)
}

// UpdateStatus sets the authenticated user's status line and returns the
// updated user.
func (r *Resolver) UpdateStatus(ctx context.Context, status string) (*models.UserData, error) {
	identity, err := requireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.validateInput(models.StatusInput{Status: status}); err != nil {
		return nil, err
	}

	usr, found, err := r.db.FindUserByID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperr.NotFound("No user found!")
	}

	if err := r.db.UpdateUserStatus(ctx, usr.ID, status); err != nil {
		return nil, err
	}
	usr.Status = status

	return r.wireUserData(ctx, usr)
}

func requireAuthenticated(ctx context.Context) (auth.Identity, error) {
	identity := auth.FromContext(ctx)
	if !identity.Authenticated {
		return auth.Identity{}, apperr.Unauthenticated("Not authenticated!")
	}

	return identity, nil
}

// validateInput checks input against its validate tags and collects all
// violations into one validation error instead of failing on the first.
func (r *Resolver) validateInput(input any) error {
	err := r.validate.Struct(input)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	fields := make([]apperr.FieldError, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		fields = append(fields, apperr.FieldError{
			Field:   fieldError.Field(),
			Message: fmt.Sprintf("%s failed the %q rule.", fieldError.Field(), fieldError.Tag()),
		})
	}

	return apperr.Validation("Invalid input.", fields)
}

func (r *Resolver) creatorOf(ctx context.Context, pst *post.Post) (*user.User, error) {
	creator, found, err := r.db.FindUserByID(ctx, pst.CreatorID)
	if err != nil {
		return nil, err
	}
	if !found {
		// The creator account is gone, the post is still served.
		return &user.User{ID: pst.CreatorID}, nil
	}

	return creator, nil
}

func (r *Resolver) wirePosts(ctx context.Context, posts []*post.Post) ([]models.Post, error) {
	creators := map[string]*user.User{}
	result := make([]models.Post, 0, len(posts))

	for _, pst := range posts {
		creator, known := creators[pst.CreatorID]
		if !known {
			var err error
			creator, err = r.creatorOf(ctx, pst)
			if err != nil {
				return nil, err
			}
			creators[pst.CreatorID] = creator
		}
		result = append(result, *wirePost(pst, creator))
	}

	return result, nil
}

func (r *Resolver) wireUserData(ctx context.Context, usr *user.User) (*models.UserData, error) {
	posts, err := r.db.FindPostsByCreator(ctx, usr.ID)
	if err != nil {
		return nil, err
	}

	wirePosts := make([]models.Post, 0, len(posts))
	for _, pst := range posts {
		wirePosts = append(wirePosts, *wirePost(pst, usr))
	}

	return &models.UserData{
		User:  *wireUser(usr),
		Posts: wirePosts,
	}, nil
}

func wireUser(usr *user.User) *models.User {
	return &models.User{
		ID:     usr.ID,
		Name:   usr.Name,
		Email:  usr.Email,
		Status: usr.Status,
	}
}

func wirePost(pst *post.Post, creator *user.User) *models.Post {
	return &models.Post{
		ID:        pst.ID,
		Title:     pst.Title,
		Content:   pst.Content,
		ImageURL:  pst.ImageURL,
		Creator:   *wireUser(creator),
		CreatedAt: pst.CreatedAt.Format(time.RFC3339),
		UpdatedAt: pst.UpdatedAt.Format(time.RFC3339),
	}
}
