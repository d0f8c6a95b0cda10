package session

import "eralearn/internal/pkg/apperror"

var (
	ErrNoSession         = apperror.New(apperror.Conflict, "no active session")
	ErrSessionSuperseded = apperror.New(apperror.Conflict, "session was replaced by a newer login")
	ErrSessionIDRequired = apperror.New(apperror.Validation, "X-Session-ID header is required")
)
