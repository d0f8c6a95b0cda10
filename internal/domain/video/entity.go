package video

import "time"

// Result is returned to the client after a successful upload. It is not
// persisted here; the asset record that points at StoragePath lives elsewhere.
type Result struct {
	PublicURL   string `json:"publicUrl"`
	StoragePath string `json:"storagePath"` // relative to the storage root
	FileName    string `json:"fileName"`
	Size        int64  `json:"size"`
	MimeType    string `json:"mimetype"`
	Checksum    string `json:"checksum"`
}

// Metadata is the sidecar written next to each stored video under .meta/.
// MimeType holds the canonical validated upload type and is what the
// static server sends back.
type Metadata struct {
	MimeType     string    `json:"mimetype"`
	Size         int64     `json:"size"`
	Checksum     string    `json:"checksum"` // blake2b-256, hex
	OriginalName string    `json:"originalName"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// HealthConfig is the configuration subset exposed by the health endpoint.
type HealthConfig struct {
	VideoDir        string   `json:"videoDir"`
	PublicBase      string   `json:"publicBase"`
	MaxUploadSize   int64    `json:"maxUploadSize"`
	MaxUploadSizeMB int      `json:"maxUploadSizeMB"`
	AllowedTypes    []string `json:"allowedTypes"`
}

type Health struct {
	Status      string       `json:"status"`
	Timestamp   time.Time    `json:"timestamp"`
	VideosCount int          `json:"videosCount"`
	Config      HealthConfig `json:"config"`
}
