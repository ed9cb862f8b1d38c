package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campus-find/lostfound-backend/internal/api"
	"campus-find/lostfound-backend/internal/apperrors"
	"campus-find/lostfound-backend/internal/auth"
	"campus-find/lostfound-backend/internal/items"
	"campus-find/lostfound-backend/internal/users"
)

// Handler exposes the moderation surface. Every route expects the admin
// gate to be applied by the caller when registering the group.
type Handler struct {
	service     *Service
	userService users.Service
	itemService items.Service
}

func NewHandler(service *Service, userService users.Service, itemService items.Service) *Handler {
	return &Handler{service: service, userService: userService, itemService: itemService}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	a := rg.Group("/admin", auth.RequireAdmin())
	{
		a.GET("/stats", h.Stats)

		a.GET("/users", h.ListUsers)
		a.PUT("/users/:id/verify", h.VerifyUser)
		a.PUT("/users/:id/role", h.SetUserRole)
		a.DELETE("/users/:id", h.DeleteUser)

		a.GET("/items", h.ListItems)
		a.PUT("/items/:id/verify", h.VerifyItem)
		a.DELETE("/items/:id", h.DeleteItem)
	}
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"stats": stats})
}

func (h *Handler) ListUsers(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	list, total, err := h.userService.ListUsers(c.Request.Context(), offset, limit)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"users": list, "total": total})
}

func (h *Handler) VerifyUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Verified *bool `json:"verified" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, apperrors.Validation("body must include a boolean 'verified' field"))
		return
	}

	user, err := h.userService.SetVerified(c.Request.Context(), id, *req.Verified)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"user": user})
}

func (h *Handler) SetUserRole(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, apperrors.Validation("body must include a 'role' field"))
		return
	}

	user, err := h.userService.SetRole(c.Request.Context(), id, users.Role(req.Role))
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"user": user})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if id == auth.UserID(c) {
		api.Fail(c, apperrors.Validation("you cannot delete your own account from the admin panel"))
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), id); err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"message": "user deleted"})
}

// ListItems serves the moderation queue. Unlike the public listing it shows
// unverified items and does not force a status filter.
func (h *Handler) ListItems(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	params := items.ListParams{
		Offset:   offset,
		Limit:    limit,
		Type:     items.Type(c.Query("type")),
		Status:   items.Status(c.Query("status")),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	if c.Query("pending") == "true" {
		params.UnverifiedOnly = true
	}

	list, total, err := h.itemService.List(c.Request.Context(), params)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"items": list, "total": total})
}

func (h *Handler) VerifyItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Verified *bool `json:"verified" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, apperrors.Validation("body must include a boolean 'verified' field"))
		return
	}

	item, err := h.itemService.SetVerified(c.Request.Context(), id, *req.Verified)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"item": item})
}

func (h *Handler) DeleteItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.itemService.Delete(c.Request.Context(), id, auth.UserID(c), true); err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"message": "item deleted"})
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		api.Fail(c, apperrors.Validation("invalid id"))
		return 0, false
	}
	return uint(id), true
}
