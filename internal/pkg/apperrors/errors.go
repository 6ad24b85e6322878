// Package apperrors предоставляет структурированные ошибки rankmgr.
package apperrors

import (
	"errors"
	"fmt"
)

// Коды ошибок в формате CATEGORY.SPECIFIC_ERROR.
const (
	// Category: CONFIG — загрузка и валидация конфигурации.
	ErrConfigLoad     = "CONFIG.LOAD_FAILED"
	ErrConfigParse    = "CONFIG.PARSE_FAILED"
	ErrConfigValidate = "CONFIG.VALIDATION_FAILED"

	// Category: GROUP — операции runtime группы процессов.
	ErrGroupInit     = "GROUP.INIT_FAILED"
	ErrGroupBarrier  = "GROUP.BARRIER_FAILED"
	ErrGroupFinalize = "GROUP.FINALIZE_FAILED"

	// Category: LAUNCH — запуск группы процессов.
	ErrLaunchSpawn = "LAUNCH.SPAWN_FAILED"
	ErrLaunchHub   = "LAUNCH.HUB_FAILED"
)

// AppError — ошибка с машиночитаемым кодом.
// Реализует error и поддерживает errors.Is/As через Unwrap.
type AppError struct {
	// Code — код в формате CATEGORY.SPECIFIC.
	Code string `json:"code"`

	// Message — описание для человека.
	Message string `json:"message"`

	// Cause — исходная ошибка, не сериализуется.
	Cause error `json:"-"`
}

// Error реализует интерфейс error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap возвращает исходную ошибку.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError создаёт AppError.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf возвращает код первого AppError в цепочке или пустую строку.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
