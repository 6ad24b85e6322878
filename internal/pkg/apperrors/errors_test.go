package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "с причиной",
			err:      NewAppError(ErrGroupInit, "не удалось подключиться к hub", errors.New("connection refused")),
			expected: "GROUP.INIT_FAILED: не удалось подключиться к hub (connection refused)",
		},
		{
			name:     "без причины",
			err:      NewAppError(ErrConfigValidate, "неизвестный уровень", nil),
			expected: "CONFIG.VALIDATION_FAILED: неизвестный уровень",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("исходная")
	err := fmt.Errorf("обёртка: %w", NewAppError(ErrGroupFinalize, "finalize", cause))

	assert.ErrorIs(t, err, cause)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrGroupFinalize, appErr.Code)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrLaunchSpawn, CodeOf(fmt.Errorf("x: %w", NewAppError(ErrLaunchSpawn, "spawn", nil))))
	assert.Empty(t, CodeOf(errors.New("plain")))
	assert.Empty(t, CodeOf(nil))
}

func TestAppError_JSONHidesCause(t *testing.T) {
	data, err := json.Marshal(NewAppError(ErrLaunchHub, "hub", errors.New("secret")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"LAUNCH.HUB_FAILED","message":"hub"}`, string(data))
}
