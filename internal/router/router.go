// Package router wires the HTTP surface of the service: the GraphQL-style
// endpoint, the image upload route, the static image server and the
// cross-cutting middleware (logging, CORS, authentication gate).
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dkhodos/postshare/internal/authenticator"
	"github.com/dkhodos/postshare/internal/logger"
	"github.com/dkhodos/postshare/internal/upload"
)

// New builds the chi router. The auth gate runs on every route before the
// handlers; it attaches the authentication result and never rejects.
func New(
	graphqlHandler http.Handler,
	uploadHandler *upload.Handler,
	authGate authenticator.Authenticator,
	imagesDir string,
) *chi.Mux {
	router := chi.NewRouter()

	router.Use(
		logger.WithLoggingHTTPMiddleware,
		withCORS,
		authGate.Authenticate,
	)

	router.Handle(`/graphql`, graphqlHandler)
	router.Put(`/post-image`, uploadHandler.PutPostimage)

	fileServer := http.StripPrefix("/images/", http.FileServer(http.Dir(imagesDir)))
	router.Get(`/images/*`, fileServer.ServeHTTP)

	return router
}

// withCORS sets the CORS headers on every response and short-circuits
// preflight requests with a bare success status.
func withCORS(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		response.Header().Set("Access-Control-Allow-Origin", "*")
		response.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE")
		response.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if request.Method == http.MethodOptions {
			response.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(response, request)
	}

	return http.HandlerFunc(middleware)
}
