package common

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantStatus int
		wantCode   string
	}{
		{"guard violation", NewGuardViolationError("no eligible ride"), http.StatusForbidden, CodeGuardViolation},
		{"state conflict", NewStateConflictError("ride moved on"), http.StatusConflict, CodeStateConflict},
		{"validation", NewValidationError("bad rating"), http.StatusBadRequest, CodeValidation},
		{"config missing", NewConfigMissingError("no rate config"), http.StatusServiceUnavailable, CodeConfigMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.Code)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := NewAppError(http.StatusInternalServerError, "database down", cause)

	assert.ErrorIs(t, appErr, cause)
}

func TestAppError_ErrorsAs(t *testing.T) {
	var appErr *AppError
	err := error(NewGuardViolationError("blocked"))

	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, CodeGuardViolation, appErr.ErrorCode)
}
