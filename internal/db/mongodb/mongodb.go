// Package mongodb implements the storage interface on top of a MongoDB
// database with users and posts collections.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dkhodos/postshare/internal/db/storage"
	"github.com/dkhodos/postshare/internal/logger"
	"github.com/dkhodos/postshare/internal/post"
	"github.com/dkhodos/postshare/internal/user"
)

const (
	usersCollection = "users"
	postsCollection = "posts"
)

// MongoDB is a storage.Storage implementation backed by a MongoDB database.
type MongoDB struct {
	client *mongo.Client
	users  *mongo.Collection
	posts  *mongo.Collection
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password"`
	Name         string             `bson:"name"`
	Status       string             `bson:"status"`
}

type postDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	ImageURL  string             `bson:"imageUrl"`
	Creator   primitive.ObjectID `bson:"creator"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// New connects to MongoDB, verifies the connection with a ping and ensures
// the unique index on users.email. A connection failure is returned to the
// caller, which treats it as fatal.
func New(
	ctx context.Context,
	dsn string,
	dbName string,
	connectionTimeout time.Duration,
) (*MongoDB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	database := client.Database(dbName)
	db := &MongoDB{
		client: client,
		users:  database.Collection(usersCollection),
		posts:  database.Collection(postsCollection),
	}

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err = db.users.Indexes().CreateOne(connectCtx, indexModel)
	if err != nil {
		logger.Log.Warnln("failed to create unique index on users.email:", err)
	}

	return db, nil
}

// CreateUser inserts a new user and returns its generated ID.
func (db *MongoDB) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	doc := userDoc{
		ID:           primitive.NewObjectID(),
		Email:        usr.Email,
		PasswordHash: usr.PasswordHash,
		Name:         usr.Name,
		Status:       usr.Status,
	}

	_, err := db.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", storage.ErrDuplicateEmail
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	return doc.ID.Hex(), nil
}

// FindUserByID returns the user with the given ID, or found=false when the
// ID is malformed or no such user exists.
func (db *MongoDB) FindUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, false, nil
	}

	var doc userDoc
	err = db.users.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to find user: %w", err)
	}

	return userFromDoc(&doc), true, nil
}

// FindUserByEmail returns the user with the given email, if any.
func (db *MongoDB) FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	var doc userDoc
	err := db.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to find user by email: %w", err)
	}

	return userFromDoc(&doc), true, nil
}

// UpdateUserStatus sets the status field of the given user.
func (db *MongoDB) UpdateUserStatus(ctx context.Context, userID, status string) error {
	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID %q: %w", userID, err)
	}

	_, err = db.users.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	return nil
}

// CreatePost inserts a new post and returns its generated ID.
func (db *MongoDB) CreatePost(ctx context.Context, pst *post.Post) (string, error) {
	creatorID, err := primitive.ObjectIDFromHex(pst.CreatorID)
	if err != nil {
		return "", fmt.Errorf("invalid creator ID %q: %w", pst.CreatorID, err)
	}

	doc := postDoc{
		ID:        primitive.NewObjectID(),
		Title:     pst.Title,
		Content:   pst.Content,
		ImageURL:  pst.ImageURL,
		Creator:   creatorID,
		CreatedAt: pst.CreatedAt,
		UpdatedAt: pst.UpdatedAt,
	}

	_, err = db.posts.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create post: %w", err)
	}

	return doc.ID.Hex(), nil
}

// FindPostByID returns the post with the given ID, if any.
func (db *MongoDB) FindPostByID(ctx context.Context, postID string) (*post.Post, bool, error) {
	objectID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, false, nil
	}

	var doc postDoc
	err = db.posts.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to find post: %w", err)
	}

	return postFromDoc(&doc), true, nil
}

// FindPosts returns one page of posts, newest first.
func (db *MongoDB) FindPosts(ctx context.Context, skip, limit int64) ([]*post.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := db.posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer cursor.Close(ctx)

	return decodePosts(ctx, cursor)
}

// FindPostsByCreator returns all posts of the given user, newest first.
func (db *MongoDB) FindPostsByCreator(ctx context.Context, userID string) ([]*post.Post, error) {
	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID %q: %w", userID, err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := db.posts.Find(ctx, bson.M{"creator": objectID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by creator: %w", err)
	}
	defer cursor.Close(ctx)

	return decodePosts(ctx, cursor)
}

// CountPosts returns the total number of posts.
func (db *MongoDB) CountPosts(ctx context.Context) (int64, error) {
	total, err := db.posts.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}

	return total, nil
}

// UpdatePost overwrites the mutable fields of the given post.
func (db *MongoDB) UpdatePost(ctx context.Context, pst *post.Post) error {
	objectID, err := primitive.ObjectIDFromHex(pst.ID)
	if err != nil {
		return fmt.Errorf("invalid post ID %q: %w", pst.ID, err)
	}

	_, err = db.posts.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{
			"title":     pst.Title,
			"content":   pst.Content,
			"imageUrl":  pst.ImageURL,
			"updatedAt": pst.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	return nil
}

// DeletePost removes the post with the given ID.
func (db *MongoDB) DeletePost(ctx context.Context, postID string) error {
	objectID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return fmt.Errorf("invalid post ID %q: %w", postID, err)
	}

	_, err = db.posts.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return nil
}

// Ping verifies the database connection.
func (db *MongoDB) Ping(ctx context.Context) error {
	return db.client.Ping(ctx, nil)
}

// Close disconnects from the database.
func (db *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return db.client.Disconnect(ctx)
}

func decodePosts(ctx context.Context, cursor *mongo.Cursor) ([]*post.Post, error) {
	var docs []postDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}

	posts := make([]*post.Post, 0, len(docs))
	for i := range docs {
		posts = append(posts, postFromDoc(&docs[i]))
	}

	return posts, nil
}

func userFromDoc(doc *userDoc) *user.User {
	return &user.User{
		ID:           doc.ID.Hex(),
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		Name:         doc.Name,
		Status:       doc.Status,
	}
}

func postFromDoc(doc *postDoc) *post.Post {
	return &post.Post{
		ID:        doc.ID.Hex(),
		Title:     doc.Title,
		Content:   doc.Content,
		ImageURL:  doc.ImageURL,
		CreatorID: doc.Creator.Hex(),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}
