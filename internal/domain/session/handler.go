package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"eralearn/internal/middleware"
	"eralearn/internal/pkg/jwt"
	"eralearn/internal/pkg/response"
)

const sessionHeader = "X-Session-ID"

type Handler struct {
	svc      *Service
	hub      *Hub
	jwt      *jwt.Service
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHandler builds the session endpoints. allowedOrigins gates websocket
// upgrades the same way CORS gates XHR; "*" allows any origin.
func NewHandler(svc *Service, hub *Hub, jwtService *jwt.Service, allowedOrigins []string, log *zap.Logger) *Handler {
	return &Handler{
		svc: svc,
		hub: hub,
		jwt: jwtService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: log,
	}
}

// Claim godoc
// @Summary Start a playback session, replacing any other one
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Router /api/sessions [post]
func (h *Handler) Claim(c *gin.Context) {
	s, err := h.svc.Claim(c.Request.Context(), middleware.UserID(c), Meta{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, s)
}

func (h *Handler) Current(c *gin.Context) {
	s, err := h.svc.Validate(c.Request.Context(), middleware.UserID(c), c.GetHeader(sessionHeader))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, s)
}

func (h *Handler) Release(c *gin.Context) {
	if err := h.svc.Release(c.Request.Context(), middleware.UserID(c), c.GetHeader(sessionHeader)); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// WebSocket subscribes a session to revocation events.
//
// Endpoint: GET /api/sessions/ws?token=JWT&session_id=ID
// Browsers cannot set headers on websocket requests, so both travel in the query.
func (h *Handler) WebSocket(c *gin.Context) {
	claims, err := h.jwt.ValidateToken(c.Query("token"))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	userID := claims.UserID()
	sessionID := c.Query("session_id")
	if _, err := h.svc.Validate(c.Request.Context(), userID, sessionID); err != nil {
		_ = c.Error(err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Info("websocket upgrade failed", zap.String("user_id", userID), zap.Error(err))
		return
	}

	h.log.Debug("session websocket connected", zap.String("user_id", userID), zap.String("session_id", sessionID))
	h.hub.ServeWS(conn, userID, sessionID)
	h.log.Debug("session websocket disconnected", zap.String("user_id", userID), zap.String("session_id", sessionID))
}

// RequireActiveSession rejects requests whose X-Session-ID does not hold the
// user's slot. Must run after JWTAuth.
func RequireActiveSession(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(sessionHeader)
		if sessionID == "" {
			sessionID = c.Query("session_id")
		}
		if _, err := svc.Validate(c.Request.Context(), middleware.UserID(c), sessionID); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set["*"] || set[origin]
	}
}
