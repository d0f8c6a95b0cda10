package video

import (
	"errors"

	"eralearn/internal/pkg/apperror"
)

// ErrStorageUnavailable is a startup error: the storage root cannot be
// created or written. It is never returned from a request.
var ErrStorageUnavailable = errors.New("storage unavailable")

var (
	ErrNoFile          = apperror.New(apperror.Validation, "no file uploaded")
	ErrEmptyFile       = apperror.New(apperror.Validation, "file is empty")
	ErrInvalidMimeType = apperror.New(apperror.Validation, "file type is not allowed")
	ErrFileTooLarge    = apperror.New(apperror.PayloadTooLarge, "file exceeds maximum allowed size")
	ErrNotFound        = apperror.New(apperror.NotFound, "file not found")
)
