// Package graphql implements the dispatch layer: the single boundary
// between the wire and the domain operations. It decodes a GraphQL-style
// request, resolves the operation name, routes to the matching operation
// with arguments taken from the variables bag, and normalizes every
// failure into the uniform {message, status, data} error envelope.
//
// The transport status is always 200 OK; the logical status lives inside
// the envelope.
package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	funk "github.com/thoas/go-funk"

	"github.com/dkhodos/postshare/internal/apperr"
	"github.com/dkhodos/postshare/internal/logger"
	"github.com/dkhodos/postshare/internal/models"
)

// operations is the set of domain operations the dispatch layer routes to.
type operations interface {
	CreateUser(ctx context.Context, input models.UserInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.AuthData, error)
	CreatePost(ctx context.Context, input models.PostInput) (*models.Post, error)
	Posts(ctx context.Context, page int) (*models.PostData, error)
	Post(ctx context.Context, postID string) (*models.Post, error)
	UpdatePost(ctx context.Context, postID string, input models.PostInput) (*models.Post, error)
	DeletePost(ctx context.Context, postID string) (bool, error)
	User(ctx context.Context) (*models.UserData, error)
	UpdateStatus(ctx context.Context, status string) (*models.UserData, error)
}

// Request is the wire shape accepted by the endpoint.
type Request struct {
	Query         string          `json:"query"`
	OperationName string          `json:"operationName"`
	Variables     json.RawMessage `json:"variables"`
}

// Error is the uniform error envelope.
type Error struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Data    any    `json:"data,omitempty"`
}

// Response is the wire shape of every reply: data on success, one or more
// error envelopes on failure.
type Response struct {
	Data   map[string]any `json:"data,omitempty"`
	Errors []Error        `json:"errors,omitempty"`
}

var operationNames = []string{
	"createUser",
	"login",
	"createPost",
	"posts",
	"post",
	"updatePost",
	"deletePost",
	"user",
	"updateStatus",
}

var identifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// Handler serves the /graphql endpoint.
type Handler struct {
	resolver operations
}

// New creates a Handler dispatching to the given operations.
func New(resolver operations) *Handler {
	return &Handler{resolver: resolver}
}

// ServeHTTP decodes the request, dispatches the operation and writes the
// response. Authentication state travels in the request context, attached
// upstream by the auth gate; the dispatch layer never infers it itself.
func (h *Handler) ServeHTTP(response http.ResponseWriter, request *http.Request) {
	req, err := decodeRequest(request)
	if err != nil {
		writeResponse(response, &Response{Errors: []Error{normalizeError(err)}})
		return
	}

	operationName, err := resolveOperationName(req)
	if err != nil {
		writeResponse(response, &Response{Errors: []Error{normalizeError(err)}})
		return
	}

	result, err := h.dispatch(request.Context(), operationName, req.Variables)
	if err != nil {
		writeResponse(response, &Response{Errors: []Error{normalizeError(err)}})
		return
	}

	writeResponse(response, &Response{Data: map[string]any{operationName: result}})
}

func (h *Handler) dispatch(
	ctx context.Context,
	operationName string,
	variables json.RawMessage,
) (any, error) {
	switch operationName {
	case "createUser":
		var args struct {
			UserInput models.UserInput `json:"userInput"`
		}
		if err := decodeArguments(variables, &args); err != nil {
			return nil, err
		}
		return h.resolver.CreateUser(ctx, args.UserInput)

	case "login":
		var args struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := decodeArguments(variables, &args); err != nil {
			return nil, err
		}
		return h.resolver.Login(ctx, args.Email, args.Password)

	case "createPost":
		var args struct {
			PostInput models.PostInput `json:"postInput"`
		}
		if err := decodeArguments(variables, &args); err != nil {
			return nil, err
		}
		return h.resolver.CreatePost(ctx, args.PostInput)

	case "posts":
		var args struct {
			Page int `json:"page"`
		}
		if err := decodeArguments(variables, &args); err != nil {
			return nil, err
		}
		return h.resolver.Posts(ctx, args.Page)

	case "post":
		var args struct {
			ID string `json:"id"`
		}
		if err := decodeArguments(variables, &args); err != nil {
			return nil, err
		}
		return h.resolver.Post(ctx, args.ID)

	case "updatePost":
		var args struct {
			ID        string           `json:"id"`
			PostInput models.PostInput `json:"postInput"`
		}
		if err := decodeArguments(variables, &args); err != nil {
			return nil, err
		}
		return h.resolver.UpdatePost(ctx, args.ID, args.PostInput)

	case "deletePost":
		var args struct {
			ID string `json:"id"`
		}
		if err := decodeArguments(variables, &args); err != nil {
			return nil, err
		}
		return h.resolver.DeletePost(ctx, args.ID)

	case "user":
		return h.resolver.User(ctx)

	case "updateStatus":
		var args struct {
			Status string `json:"status"`
		}
		if err := decodeArguments(variables, &args); err != nil {
			return nil, err
		}
		return h.resolver.UpdateStatus(ctx, args.Status)
	}

	return nil, apperr.NotFound("Unknown operation.")
}

func decodeRequest(request *http.Request) (*Request, error) {
	req := &Request{}

	if request.Method == http.MethodGet {
		query := request.URL.Query()
		req.Query = query.Get("query")
		req.OperationName = query.Get("operationName")
		if variables := query.Get("variables"); variables != "" {
			req.Variables = json.RawMessage(variables)
		}
		return req, nil
	}

	if err := json.NewDecoder(request.Body).Decode(req); err != nil {
		return nil, apperr.Validation("Invalid request body.", nil)
	}

	return req, nil
}

// resolveOperationName picks the operation either from the explicit
// operationName field or from the first known operation identifier in the
// query text. Operation definition names and variable names never collide
// with the lower-case operation set.
func resolveOperationName(req *Request) (string, error) {
	if funk.ContainsString(operationNames, req.OperationName) {
		return req.OperationName, nil
	}

	for _, identifier := range identifierPattern.FindAllString(req.Query, -1) {
		if funk.ContainsString(operationNames, identifier) {
			return identifier, nil
		}
	}

	return "", apperr.NotFound("Unknown operation.")
}

func decodeArguments(variables json.RawMessage, target any) error {
	if len(variables) == 0 {
		return nil
	}

	if err := json.Unmarshal(variables, target); err != nil {
		return apperr.Validation("Invalid variables.", nil)
	}

	return nil
}

// normalizeError converts any failure into the wire envelope. Domain
// errors keep their logical status and data; anything else is logged and
// surfaced with status 500 and no data payload.
func normalizeError(err error) Error {
	var domainError *apperr.Error
	if errors.As(err, &domainError) {
		return Error{
			Message: domainError.Message,
			Status:  domainError.Kind.Status(),
			Data:    domainError.Data,
		}
	}

	logger.Log.Errorln("unexpected operation failure:", err)

	return Error{
		Message: err.Error(),
		Status:  http.StatusInternalServerError,
	}
}

func writeResponse(response http.ResponseWriter, body *Response) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(response).Encode(body); err != nil {
		logger.Log.Debugln("failed to encode response:", err)
	}
}
