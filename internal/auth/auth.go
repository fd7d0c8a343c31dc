// Package auth provides the request authentication gate: an HTTP
// middleware that verifies the Authorization header token and attaches
// the outcome to the request context. The gate itself never rejects a
// request; each operation decides whether it requires authentication.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dkhodos/postshare/internal/logger"
)

// Identity is the request-scoped authentication result. UserID is set if
// and only if Authenticated is true.
type Identity struct {
	Authenticated bool
	UserID        string
}

type tokenVerifier interface {
	Verify(tokenString string) (string, error)
}

// Auth is the authentication middleware. It delegates token verification
// to the token codec.
type Auth struct {
	tokens tokenVerifier
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

const identityKey ContextKey = "identity"

// New creates an Auth gate backed by the given token verifier.
func New(tokens tokenVerifier) *Auth {
	return &Auth{tokens: tokens}
}

// Authenticate is an HTTP middleware that inspects the Authorization
// header exactly once per request. A missing header, a malformed header
// or a failed verification all result in an unauthenticated Identity;
// the request always proceeds to the handler.
func (a *Auth) Authenticate(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		identity := Identity{}

		header := request.Header.Get("Authorization")
		if header != "" {
			if tokenString, found := strings.CutPrefix(header, "Bearer "); found {
				userID, err := a.tokens.Verify(tokenString)
				if err != nil {
					logger.Log.Debugln("token verification failed:", err)
				} else {
					identity = Identity{Authenticated: true, UserID: userID}
				}
			}
		}

		ctx := NewContext(request.Context(), identity)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

// NewContext returns a copy of ctx carrying the given Identity.
func NewContext(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// FromContext extracts the Identity attached by Authenticate. A context
// without an Identity yields the unauthenticated zero value.
func FromContext(ctx context.Context) Identity {
	identity, ok := ctx.Value(identityKey).(Identity)
	if !ok {
		return Identity{}
	}

	return identity
}
