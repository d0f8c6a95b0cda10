package certificate

import "github.com/gin-gonic/gin"

func RegisterRoutes(api *gin.RouterGroup, h *Handler, auth gin.HandlerFunc) {
	certs := api.Group("/certificates")
	{
		certs.POST("", auth, h.Issue)
		certs.GET("", auth, h.ListMine)
		certs.GET("/:id", h.Get)
	}
}
