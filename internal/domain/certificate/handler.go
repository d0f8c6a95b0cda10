package certificate

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eralearn/internal/middleware"
	"eralearn/internal/pkg/apperror"
	"eralearn/internal/pkg/response"
	"eralearn/internal/pkg/validator"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Issue godoc
// @Summary Issue a course certificate to the caller
// @Security BearerAuth
// @Param request body IssueRequest true "Certificate"
// @Success 201 {object} map[string]interface{}
// @Router /api/certificates [post]
func (h *Handler) Issue(c *gin.Context) {
	var req IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.Wrap(apperror.Validation, err, "invalid request body"))
		return
	}
	if fields := validator.Validate(req); fields != nil {
		_ = c.Error(apperror.Validationf("%s", validator.Summary(fields)))
		return
	}

	m, err := h.store.Issue(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, m)
}

func (h *Handler) ListMine(c *gin.Context) {
	list, err := h.store.ListByUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// Get is public: anyone holding the id can verify a certificate.
func (h *Handler) Get(c *gin.Context) {
	m, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, m)
}
