package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkhodos/postshare/internal/token"
)

func newTestCodec(t *testing.T) *token.Codec {
	t.Helper()
	return token.New([]byte("test-signing-secret-key"), time.Hour)
}

func identityCapturingHandler(captured *Identity) http.Handler {
	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		*captured = FromContext(request.Context())
		response.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateAttachesIdentity(t *testing.T) {
	codec := newTestCodec(t)

	validToken, err := codec.Issue("some-user-id")
	require.NoError(t, err)

	testCases := []struct {
		name                string
		authorizationHeader string
		want                Identity
	}{
		{
			name:                "missing header",
			authorizationHeader: "",
			want:                Identity{},
		},
		{
			name:                "valid bearer token",
			authorizationHeader: "Bearer " + validToken,
			want:                Identity{Authenticated: true, UserID: "some-user-id"},
		},
		{
			name:                "header without bearer prefix",
			authorizationHeader: validToken,
			want:                Identity{},
		},
		{
			name:                "garbage token",
			authorizationHeader: "Bearer garbage",
			want:                Identity{},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			var captured Identity
			handler := New(codec).Authenticate(identityCapturingHandler(&captured))

			request := httptest.NewRequest(http.MethodPost, "/graphql", nil)
			if testCase.authorizationHeader != "" {
				request.Header.Set("Authorization", testCase.authorizationHeader)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			// The gate itself never rejects.
			assert.Equal(t, http.StatusOK, recorder.Code)
			assert.Equal(t, testCase.want, captured)
		})
	}
}

type failingVerifier struct{}

func (failingVerifier) Verify(string) (string, error) {
	return "", errors.New("verification exploded")
}

func TestAuthenticateProceedsOnVerifierFailure(t *testing.T) {
	var captured Identity
	handler := New(failingVerifier{}).Authenticate(identityCapturingHandler(&captured))

	request := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	request.Header.Set("Authorization", "Bearer whatever")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, Identity{}, captured)
}

func TestFromContextWithoutIdentity(t *testing.T) {
	assert.Equal(t, Identity{}, FromContext(context.Background()))
}

func TestNewContextRoundTrip(t *testing.T) {
	identity := Identity{Authenticated: true, UserID: "some-user-id"}
	ctx := NewContext(context.Background(), identity)

	assert.Equal(t, identity, FromContext(ctx))
}
