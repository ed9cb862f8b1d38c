package notifications

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-find/lostfound-backend/internal/api"
	"campus-find/lostfound-backend/internal/apperrors"
	"campus-find/lostfound-backend/internal/auth"
	ws "campus-find/lostfound-backend/internal/notifications/websocket"
)

type Handler struct {
	service *Service
	hub     *ws.Manager
	secret  string
	logger  *zap.Logger
}

func NewHandler(service *Service, hub *ws.Manager, jwtSecret string, logger *zap.Logger) *Handler {
	return &Handler{service: service, hub: hub, secret: jwtSecret, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	n := rg.Group("/notifications")
	{
		n.GET("", h.List)
		n.PUT("/:id/read", h.MarkRead)
	}
}

func (h *Handler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	list, total, err := h.service.ListForUser(c.Request.Context(), auth.UserID(c), offset, limit)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"notifications": list, "total": total})
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		api.Fail(c, apperrors.Validation("invalid notification id"))
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), uint(id), auth.UserID(c)); err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"message": "notification marked read"})
}

// Websocket upgrades a live event stream. Browsers cannot set headers on
// websocket requests, so the token rides a query parameter.
func (h *Handler) Websocket(c *gin.Context) {
	claims, err := auth.ParseToken(h.secret, c.Query("token"))
	if err != nil {
		api.Fail(c, apperrors.Token(apperrors.CodeTokenMalformed, "a valid token query parameter is required"))
		return
	}

	if err := h.hub.HandleConnection(c.Writer, c.Request, claims.UserID); err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
	}
}
