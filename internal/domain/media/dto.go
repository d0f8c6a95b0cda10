package media

type CreateAssetRequest struct {
	ID          string   `json:"id" validate:"omitempty,max=64"`
	Title       string   `json:"title" validate:"required,max=255"`
	Provider    Provider `json:"provider" validate:"required,oneof=internal youtube"`
	StoragePath string   `json:"storage_path" validate:"required_if=Provider internal,max=512"`
	YouTubeID   string   `json:"youtube_id" validate:"required_if=Provider youtube"`
}
