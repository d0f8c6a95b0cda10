package media

import "eralearn/internal/pkg/apperror"

var (
	ErrAssetNotFound     = apperror.New(apperror.NotFound, "asset not found")
	ErrAssetExists       = apperror.New(apperror.Conflict, "asset already exists")
	ErrInvalidAssetID    = apperror.New(apperror.Validation, "id may only contain letters, digits, '-' and '_'")
	ErrUnknownProvider   = apperror.New(apperror.Validation, "provider must be internal or youtube")
	ErrMediaFileMissing  = apperror.New(apperror.Validation, "storage_path does not name a stored video")
	ErrInvalidYouTubeID  = apperror.New(apperror.Validation, "youtube_id is not a valid YouTube video id")
	ErrInvalidMediaToken = apperror.New(apperror.Unauthorized, "invalid or expired media token")
)
