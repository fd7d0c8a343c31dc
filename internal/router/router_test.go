package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkhodos/postshare/internal/auth"
	"github.com/dkhodos/postshare/internal/db/memorystorage"
	"github.com/dkhodos/postshare/internal/filestorage"
	"github.com/dkhodos/postshare/internal/graphql"
	"github.com/dkhodos/postshare/internal/resolver"
	"github.com/dkhodos/postshare/internal/token"
	"github.com/dkhodos/postshare/internal/upload"
)

type discardCleaner struct{}

func (discardCleaner) Enqueue(string) {}

type wireEnvelope struct {
	Message string          `json:"message"`
	Status  int             `json:"status"`
	Data    json.RawMessage `json:"data"`
}

type wireResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []wireEnvelope             `json:"errors"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := memorystorage.New()
	require.NoError(t, err)

	imagesDir := filepath.Join(t.TempDir(), "images")
	files, err := filestorage.New(imagesDir)
	require.NoError(t, err)

	tokens := token.New([]byte("test-signing-secret"), time.Hour)
	operations := resolver.New(db, tokens, discardCleaner{})

	testRouter := New(
		graphql.New(operations),
		upload.New(files, discardCleaner{}),
		auth.New(tokens),
		imagesDir,
	)

	server := httptest.NewServer(testRouter)
	t.Cleanup(server.Close)

	return server
}

func postGraphql(t *testing.T, client *resty.Client, serverURL, bearerToken, body string) *wireResponse {
	t.Helper()

	request := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(body)
	if bearerToken != "" {
		request.SetHeader("Authorization", "Bearer "+bearerToken)
	}

	response, err := request.Post(serverURL + "/graphql")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, response.StatusCode())

	decoded := &wireResponse{}
	require.NoError(t, json.Unmarshal(response.Body(), decoded))

	return decoded
}

func TestFullPostLifecycleOverHTTP(t *testing.T) {
	server := newTestServer(t)
	client := resty.New()

	// Sign up.
	response := postGraphql(t, client, server.URL, "", `{
		"query": "mutation { createUser(userInput: $userInput) { _id email } }",
		"variables": {"userInput": {"email": "a@b.com", "name": "Alice", "password": "secret1"}}
	}`)
	require.Empty(t, response.Errors)
	require.Contains(t, response.Data, "createUser")

	// Log in.
	response = postGraphql(t, client, server.URL, "", `{
		"query": "{ login(email: $email, password: $password) { token userId } }",
		"variables": {"email": "a@b.com", "password": "secret1"}
	}`)
	require.Empty(t, response.Errors)

	var authData struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	require.NoError(t, json.Unmarshal(response.Data["login"], &authData))
	require.NotEmpty(t, authData.Token)
	require.NotEmpty(t, authData.UserID)

	// Create a post with the freshly issued token.
	response = postGraphql(t, client, server.URL, authData.Token, `{
		"query": "mutation { createPost(postInput: $postInput) { _id title creator { _id } } }",
		"variables": {"postInput": {"title": "First post", "content": "Hello there"}}
	}`)
	require.Empty(t, response.Errors)

	var created struct {
		ID      string `json:"_id"`
		Title   string `json:"title"`
		Creator struct {
			ID string `json:"_id"`
		} `json:"creator"`
	}
	require.NoError(t, json.Unmarshal(response.Data["createPost"], &created))
	assert.Equal(t, "First post", created.Title)
	assert.Equal(t, authData.UserID, created.Creator.ID)

	// The post is visible in the public listing without a token.
	response = postGraphql(t, client, server.URL, "", `{
		"query": "{ posts(page: $page) { posts { _id title } totalPosts } }",
		"variables": {"page": 1}
	}`)
	require.Empty(t, response.Errors)

	var listing struct {
		Posts      []struct{ ID string `json:"_id"` } `json:"posts"`
		TotalPosts int64                              `json:"totalPosts"`
	}
	require.NoError(t, json.Unmarshal(response.Data["posts"], &listing))
	assert.EqualValues(t, 1, listing.TotalPosts)
	require.Len(t, listing.Posts, 1)
	assert.Equal(t, created.ID, listing.Posts[0].ID)

	// A different user must not be able to update it.
	response = postGraphql(t, client, server.URL, "", `{
		"query": "mutation { createUser(userInput: $userInput) { _id } }",
		"variables": {"userInput": {"email": "mallory@b.com", "name": "Mallory", "password": "secret1"}}
	}`)
	require.Empty(t, response.Errors)

	response = postGraphql(t, client, server.URL, "", `{
		"query": "{ login(email: $email, password: $password) { token userId } }",
		"variables": {"email": "mallory@b.com", "password": "secret1"}
	}`)
	require.Empty(t, response.Errors)

	var malloryAuth struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(response.Data["login"], &malloryAuth))

	response = postGraphql(t, client, server.URL, malloryAuth.Token, `{
		"query": "mutation { updatePost(id: $id, postInput: $postInput) { _id } }",
		"variables": {"id": "`+created.ID+`", "postInput": {"title": "Hijacked title", "content": "Hijacked content"}}
	}`)
	require.Len(t, response.Errors, 1)
	assert.Equal(t, "Not authorized!", response.Errors[0].Message)
	assert.Equal(t, http.StatusForbidden, response.Errors[0].Status)
}

func TestMutationWithoutTokenIsRejectedInsideTheEnvelope(t *testing.T) {
	server := newTestServer(t)
	client := resty.New()

	response := postGraphql(t, client, server.URL, "", `{
		"query": "mutation { createPost(postInput: $postInput) { _id } }",
		"variables": {"postInput": {"title": "First post", "content": "Hello there"}}
	}`)

	require.Len(t, response.Errors, 1)
	assert.Equal(t, "Not authenticated!", response.Errors[0].Message)
	assert.Equal(t, http.StatusUnauthorized, response.Errors[0].Status)
}

func TestCORSHeadersAndPreflight(t *testing.T) {
	server := newTestServer(t)
	client := resty.New()

	response, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(`{"query": "{ posts(page: $page) { totalPosts } }"}`).
		Post(server.URL + "/graphql")
	require.NoError(t, err)

	assert.Equal(t, "*", response.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, PUT, PATCH, DELETE", response.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Authorization", response.Header().Get("Access-Control-Allow-Headers"))

	preflight, err := client.R().Options(server.URL + "/graphql")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, preflight.StatusCode())
	assert.Empty(t, preflight.Body())
	assert.Equal(t, "*", preflight.Header().Get("Access-Control-Allow-Origin"))
}

func TestStaticImageServing(t *testing.T) {
	db, err := memorystorage.New()
	require.NoError(t, err)

	imagesDir := filepath.Join(t.TempDir(), "images")
	files, err := filestorage.New(imagesDir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(imagesDir, "picture.png"), []byte("png-bytes"), 0o644))

	tokens := token.New([]byte("test-signing-secret"), time.Hour)
	testRouter := New(
		graphql.New(resolver.New(db, tokens, discardCleaner{})),
		upload.New(files, discardCleaner{}),
		auth.New(tokens),
		imagesDir,
	)
	server := httptest.NewServer(testRouter)
	t.Cleanup(server.Close)

	response, err := resty.New().R().Get(server.URL + "/images/picture.png")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, response.StatusCode())
	assert.Equal(t, []byte("png-bytes"), response.Body())
}
