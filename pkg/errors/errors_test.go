package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name           string
		err            *APIError
		expectedType   ErrorType
		expectedStatus int
	}{
		{name: "validation", err: ValidationError("BAD_INPUT", "bad input"), expectedType: ErrorTypeValidation, expectedStatus: http.StatusBadRequest},
		{name: "not found", err: NotFoundError("Form"), expectedType: ErrorTypeNotFound, expectedStatus: http.StatusNotFound},
		{name: "conflict", err: ConflictError("already exists"), expectedType: ErrorTypeConflict, expectedStatus: http.StatusConflict},
		{name: "unauthorized", err: UnauthorizedError("no token"), expectedType: ErrorTypeUnauthorized, expectedStatus: http.StatusUnauthorized},
		{name: "forbidden", err: ForbiddenError("not yours"), expectedType: ErrorTypeForbidden, expectedStatus: http.StatusForbidden},
		{name: "internal", err: InternalError("boom"), expectedType: ErrorTypeInternal, expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedType, tt.err.Type)
			assert.Equal(t, tt.expectedStatus, tt.err.HTTPStatus)
		})
	}
}

func TestGetAPIErrorUnwrapsChains(t *testing.T) {
	inner := NotFoundError("Form")
	wrapped := fmt.Errorf("loading form: %w", inner)

	assert.True(t, IsAPIError(wrapped))
	assert.Equal(t, inner, GetAPIError(wrapped))

	assert.False(t, IsAPIError(fmt.Errorf("plain error")))
	assert.Nil(t, GetAPIError(fmt.Errorf("plain error")))
}

func TestHandleDatabaseError(t *testing.T) {
	assert.Nil(t, HandleDatabaseError(nil, "Form", "get"))

	notFound := HandleDatabaseError(gorm.ErrRecordNotFound, "Form", "get")
	require.NotNil(t, notFound)
	assert.Equal(t, ErrorTypeNotFound, notFound.Type)
	assert.Equal(t, "Form not found", notFound.Message)

	dbErr := HandleDatabaseError(fmt.Errorf("connection reset"), "Form", "get form")
	require.NotNil(t, dbErr)
	assert.Equal(t, ErrorTypeDatabase, dbErr.Type)
	assert.Equal(t, http.StatusInternalServerError, dbErr.HTTPStatus)
}
