package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := PersistenceError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeDatabaseError, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPCode)
}

func TestDomainErrorHTTPCodes(t *testing.T) {
	assert.Equal(t, http.StatusConflict, ErrReviewAlreadyModerated.HTTPCode)
	assert.Equal(t, http.StatusBadRequest, ErrReviewNotModerated.HTTPCode)
	assert.Equal(t, http.StatusForbidden, ErrInsufficientPermissions.HTTPCode)
	assert.Equal(t, http.StatusConflict, ErrReviewAlreadyExists.HTTPCode)
	assert.Equal(t, http.StatusNotFound, ErrNotFound(nil).HTTPCode)
}

func TestMarshalJSONHidesInternals(t *testing.T) {
	err := Wrap(errors.New("secret db detail"), CodeDatabaseError, "persistence", "Storage operation failed", http.StatusInternalServerError)

	data, marshalErr := json.Marshal(err)
	require.NoError(t, marshalErr)

	assert.NotContains(t, string(data), "secret db detail")
	assert.NotContains(t, string(data), "500")
	assert.Contains(t, string(data), "DATABASE_ERROR")
}

func TestValidationErrorCarriesDetails(t *testing.T) {
	err := ValidationError(map[string]string{"rating": "must be between 1 and 5"})

	data, marshalErr := json.Marshal(err)
	require.NoError(t, marshalErr)
	assert.Contains(t, string(data), "must be between 1 and 5")
}

func TestAsAppError(t *testing.T) {
	appErr, ok := AsAppError(ErrReviewAlreadyModerated)
	require.True(t, ok)
	assert.Equal(t, CodeConflict, appErr.Code)

	wrapped := fmt.Errorf("outer: %w", ErrReviewNotModerated)
	appErr, ok = AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidStatus, appErr.Code)

	_, ok = AsAppError(errors.New("plain"))
	assert.False(t, ok)
}
