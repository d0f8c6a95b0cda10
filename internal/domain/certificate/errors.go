package certificate

import "eralearn/internal/pkg/apperror"

var (
	ErrNotFound  = apperror.New(apperror.NotFound, "certificate not found")
	ErrEmptyText = apperror.New(apperror.Validation, "course_title and user_name must contain text")
)
