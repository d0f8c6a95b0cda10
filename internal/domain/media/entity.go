package media

import "time"

type Provider string

const (
	ProviderInternal Provider = "internal"
	ProviderYouTube  Provider = "youtube"
)

// Asset points a lesson video at its source: a file under the storage root
// or a YouTube video.
type Asset struct {
	ID          string    `gorm:"column:id;primaryKey;size:64" json:"id"`
	Title       string    `gorm:"column:title;size:255;not null" json:"title"`
	Provider    Provider  `gorm:"column:provider;size:16;not null" json:"provider"`
	StoragePath string    `gorm:"column:storage_path;size:512" json:"storagePath,omitempty"`
	YouTubeID   string    `gorm:"column:youtube_id;size:32" json:"youtubeId,omitempty"`
	CreatedBy   string    `gorm:"column:created_by;size:64" json:"createdBy"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Asset) TableName() string { return "assets" }

// Resolution is what a player needs to start playback.
type Resolution struct {
	Provider  Provider   `json:"provider"`
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Delivery tells the stream endpoint how to hand over the bytes: through
// the reverse proxy's internal location or by redirecting to the static server.
type Delivery struct {
	InternalRedirect string
	RedirectURL      string
}
