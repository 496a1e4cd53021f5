package model

import "net/http"

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VAL_INVALID_INPUT"
	ErrCodeInternalError    ErrorCode = "SYS_INTERNAL_ERROR"
)

type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Err        error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(err error) *AppError {
	return &AppError{
		Code:       ErrCodeValidationFailed,
		Message:    "invalid evaluation request",
		Details:    map[string]interface{}{"errors": err},
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

// NewCatalogError reports that the promotion catalog could not be read.
func NewCatalogError(err error) *AppError {
	return &AppError{
		Code:       ErrCodeInternalError,
		Message:    "promotion catalog unavailable",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
