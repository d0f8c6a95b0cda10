package video

import (
	"mime"
	"path"
	"strings"
)

const defaultContentType = "application/octet-stream"

// allowedUploadTypes maps every accepted declared type to its canonical form.
var allowedUploadTypes = map[string]string{
	"video/mp4":        "video/mp4",
	"video/webm":       "video/webm",
	"video/avi":        "video/avi",
	"video/mov":        "video/quicktime",
	"video/quicktime":  "video/quicktime",
	"video/mkv":        "video/x-matroska",
	"video/x-matroska": "video/x-matroska",
}

var extensionTypes = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".avi":  "video/avi",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
}

// normalizeUploadType strips parameters and case from a declared content type
// and reports whether it is on the allow-list.
func normalizeUploadType(declared string) (declaredType, canonical string, ok bool) {
	declaredType = strings.ToLower(strings.TrimSpace(declared))
	if mt, _, err := mime.ParseMediaType(declared); err == nil {
		declaredType = mt
	}
	canonical, ok = allowedUploadTypes[declaredType]
	return declaredType, canonical, ok
}

// ContentTypeForName derives a content type from the file extension only.
func ContentTypeForName(name string) string {
	if ct, ok := extensionTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return defaultContentType
}

// AllowedUploadTypes lists the accepted declared types, for error messages and health output.
func AllowedUploadTypes() []string {
	return []string{"video/mp4", "video/webm", "video/avi", "video/mov", "video/quicktime", "video/mkv", "video/x-matroska"}
}
