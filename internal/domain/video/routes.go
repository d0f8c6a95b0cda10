package video

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the upload and health endpoints under /api.
// uploadMiddleware (rate limiting) applies to the upload route only.
func RegisterRoutes(api *gin.RouterGroup, h *Handler, uploadMiddleware ...gin.HandlerFunc) {
	api.GET("/health", h.Health)

	upload := append(append([]gin.HandlerFunc{}, uploadMiddleware...), h.Upload)
	api.POST("/videos/upload-local", upload...)
}

// RegisterStaticRoutes mounts the media server at publicBase.
func RegisterStaticRoutes(r gin.IRoutes, publicBase string, h *Handler) {
	r.GET(publicBase+"/*filepath", h.Serve)
	r.HEAD(publicBase+"/*filepath", h.Serve)
}
