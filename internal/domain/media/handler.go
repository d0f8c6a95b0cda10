package media

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eralearn/internal/middleware"
	"eralearn/internal/pkg/apperror"
	"eralearn/internal/pkg/response"
	"eralearn/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// CreateAsset godoc
// @Summary Register a lesson video asset
// @Security BearerAuth
// @Param request body CreateAssetRequest true "Asset"
// @Success 201 {object} map[string]interface{}
// @Failure 400,401,403,409 {object} map[string]interface{}
// @Router /api/assets [post]
func (h *Handler) CreateAsset(c *gin.Context) {
	var req CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.Wrap(apperror.Validation, err, "invalid request body"))
		return
	}
	if fields := validator.Validate(req); fields != nil {
		_ = c.Error(apperror.Validationf("%s", validator.Summary(fields)))
		return
	}

	asset, err := h.svc.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, asset)
}

func (h *Handler) GetAsset(c *gin.Context) {
	asset, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, asset)
}

// Resolve godoc
// @Summary Playback URL for an asset
// @Security BearerAuth
// @Param id path string true "Asset id"
// @Success 200 {object} map[string]interface{}
// @Failure 401,404,409 {object} map[string]interface{}
// @Router /api/media/{id}/resolve [get]
func (h *Handler) Resolve(c *gin.Context) {
	res, err := h.svc.Resolve(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// Stream checks the media token and hands the request over to whatever
// delivers the bytes.
func (h *Handler) Stream(c *gin.Context) {
	d, err := h.svc.Authorize(c.Query("token"), c.Param("path"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Cache-Control", "no-store")
	if d.InternalRedirect != "" {
		c.Header("X-Accel-Redirect", d.InternalRedirect)
		c.Status(http.StatusOK)
		return
	}
	c.Redirect(http.StatusFound, d.RedirectURL)
}
