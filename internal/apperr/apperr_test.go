package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStatus(t *testing.T) {
	testCases := []struct {
		kind Kind
		want int
	}{
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindValidation, http.StatusUnprocessableEntity},
		{KindConflict, http.StatusUnprocessableEntity},
		{KindInternal, http.StatusInternalServerError},
		{Kind(42), http.StatusInternalServerError},
	}

	for _, testCase := range testCases {
		assert.Equal(t, testCase.want, testCase.kind.Status())
	}
}

func TestConstructors(t *testing.T) {
	fields := []FieldError{{Field: "Email", Message: "Email failed the \"email\" rule."}}

	testCases := []struct {
		err      *Error
		wantKind Kind
		wantData any
	}{
		{Unauthenticated("Not authenticated!"), KindUnauthenticated, nil},
		{Forbidden("Not authorized!"), KindForbidden, nil},
		{NotFound("No post found!"), KindNotFound, nil},
		{Validation("Invalid input.", fields), KindValidation, fields},
		{Conflict("User exists already!"), KindConflict, nil},
		{Internal("boom"), KindInternal, nil},
	}

	for _, testCase := range testCases {
		assert.Equal(t, testCase.wantKind, testCase.err.Kind)
		assert.NotEmpty(t, testCase.err.Error())
		if testCase.wantData == nil {
			assert.Nil(t, testCase.err.Data)
		} else {
			assert.Equal(t, testCase.wantData, testCase.err.Data)
		}
	}
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("operation failed: %w", NotFound("No post found!"))

	var domainError *Error
	require.True(t, errors.As(wrapped, &domainError))
	assert.Equal(t, KindNotFound, domainError.Kind)
	assert.Equal(t, "No post found!", domainError.Message)
}
