// Package user defines the persisted user record used by the storage
// layer and the resolvers.
package user

// User represents a stored user account. PasswordHash is a bcrypt hash,
// never the plaintext password.
type User struct {
	// ID is the unique identifier of the user, opaque to callers.
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Status       string
}
