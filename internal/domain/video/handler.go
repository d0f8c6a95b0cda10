package video

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eralearn/internal/pkg/apperror"
)

// multipartSlack covers boundaries and part headers on top of the file itself.
const multipartSlack = 1 << 20

const cacheControl = "public, max-age=3600"

var fileFields = map[string]bool{"file": true, "video": true}

// Handler exposes upload, static serving and health over HTTP.
// Errors are handed to the error-translation middleware via c.Error.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type uploadResponse struct {
	Success bool `json:"success"`
	*Result
}

// Upload godoc
// @Summary Upload a video to local storage
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Video file (field 'file' or 'video')"
// @Success 200 {object} uploadResponse
// @Failure 400,500 {object} map[string]interface{}
// @Router /api/videos/upload-local [post]
func (h *Handler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.service.MaxUploadBytes()+multipartSlack)

	mr, err := c.Request.MultipartReader()
	if err != nil {
		_ = c.Error(ErrNoFile)
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			_ = c.Error(ErrNoFile)
			return
		}
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				_ = c.Error(h.service.TooLarge())
				return
			}
			_ = c.Error(apperror.Wrap(apperror.Validation, err, "malformed multipart body"))
			return
		}

		if !fileFields[part.FormName()] || part.FileName() == "" {
			part.Close()
			continue
		}

		result, err := h.service.Store(c.Request.Context(), part.FileName(), part.Header.Get("Content-Type"), part)
		part.Close()
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, uploadResponse{Success: true, Result: result})
		return
	}
}

// Serve streams a stored file with byte-range support.
func (h *Handler) Serve(c *gin.Context) {
	f, info, contentType, err := h.service.Open(c.Param("filepath"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer f.Close()

	header := c.Writer.Header()
	header.Set("Content-Type", contentType)
	header.Set("Accept-Ranges", "bytes")
	header.Set("Cache-Control", cacheControl)

	// zero modtime: no Last-Modified, no conditional requests
	http.ServeContent(c.Writer, c.Request, info.Name(), time.Time{}, f)
}

// Health godoc
// @Summary Liveness and configuration summary
// @Produce json
// @Success 200 {object} Health
// @Router /api/health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Health())
}
