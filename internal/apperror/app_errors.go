package apperror

import "errors"

var (
	ErrInvalidCell       = errors.New("invalid cell")
	ErrSessionIsRequired = errors.New("session is required")
	ErrUnknownAction     = errors.New("unknown action")
)
