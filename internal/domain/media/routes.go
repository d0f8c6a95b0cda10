package media

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts asset management and media resolution under /api.
// auth authenticates the caller, admin guards asset registration, and
// resolveGuards run before Resolve (active-session enforcement).
func RegisterRoutes(api *gin.RouterGroup, h *Handler, auth, admin gin.HandlerFunc, resolveGuards ...gin.HandlerFunc) {
	assets := api.Group("/assets", auth)
	{
		assets.POST("", admin, h.CreateAsset)
		assets.GET("/:id", h.GetAsset)
	}

	// token in the query string; no bearer header on <video> requests
	api.GET("/media/stream/*path", h.Stream)

	resolve := append([]gin.HandlerFunc{auth}, resolveGuards...)
	api.GET("/media/:id/resolve", append(resolve, h.Resolve)...)
}
