// Package authenticator defines the middleware contract the router
// expects from the auth gate, so tests can substitute it.
package authenticator

import "net/http"

type Authenticator interface {
	Authenticate(h http.Handler) http.Handler
}
