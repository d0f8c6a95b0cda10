package session

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the session endpoints under /api. The websocket
// route authenticates from the query string and skips auth.
func RegisterRoutes(api *gin.RouterGroup, h *Handler, auth gin.HandlerFunc) {
	sessions := api.Group("/sessions")
	{
		sessions.GET("/ws", h.WebSocket)
		sessions.POST("", auth, h.Claim)
		sessions.GET("/current", auth, h.Current)
		sessions.DELETE("", auth, h.Release)
	}
}
