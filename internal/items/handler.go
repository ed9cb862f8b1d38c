package items

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-find/lostfound-backend/internal/api"
	"campus-find/lostfound-backend/internal/apperrors"
	"campus-find/lostfound-backend/internal/auth"
	"campus-find/lostfound-backend/internal/config"
	"campus-find/lostfound-backend/pkg/storage"
)

type Handler struct {
	service  Service
	store    *storage.LocalStore
	defaults config.DefaultsConfig
	maxImgs  int
	logger   *zap.Logger
}

func NewHandler(service Service, store *storage.LocalStore, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		service:  service,
		store:    store,
		defaults: cfg.Defaults,
		maxImgs:  cfg.Uploads.MaxImages,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/items")
	{
		items.GET("/meta", h.Meta)
		items.GET("", h.List)
		items.GET("/my", h.ListMine)
		items.GET("/:id", h.Get)
		items.POST("", h.Create)
		items.PUT("/:id", h.Update)
		items.DELETE("/:id", h.Delete)
		items.POST("/:id/images", h.AddImages)
	}
}

// Meta returns the configured category and location lists for client forms.
func (h *Handler) Meta(c *gin.Context) {
	api.OK(c, http.StatusOK, gin.H{
		"categories": h.defaults.Categories,
		"locations":  h.defaults.Locations,
	})
}

func (h *Handler) Create(c *gin.Context) {
	req := CreateRequest{
		Type:        Type(c.PostForm("type")),
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Location:    c.PostForm("location"),
		OccurredOn:  c.PostForm("occurredOn"),
	}

	if raw := c.PostForm("contact"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Contact); err != nil {
			api.Fail(c, apperrors.Validation("contact must be a JSON object"))
			return
		}
	}
	if raw := c.PostForm("questions"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Questions); err != nil {
			api.Fail(c, apperrors.Validation("questions must be a JSON list of {question, answer} pairs"))
			return
		}
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["images"]
	}
	if len(files) > h.maxImgs {
		api.Fail(c, apperrors.Validation("too many images, the limit is "+strconv.Itoa(h.maxImgs)))
		return
	}

	paths, err := h.saveImages(files)
	if err != nil {
		api.Fail(c, err)
		return
	}
	req.Images = paths

	item, err := h.service.Create(c.Request.Context(), auth.UserID(c), req)
	if err != nil {
		// The files are already on disk; roll them back.
		h.removeAll(paths)
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusCreated, gin.H{"item": item.Public()})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		api.Fail(c, err)
		return
	}

	admin := c.GetString(auth.ContextRole) == "admin"
	item, err := h.service.Get(c.Request.Context(), id, auth.UserID(c), admin)
	if err != nil {
		api.Fail(c, err)
		return
	}

	view := gin.H{"item": item.Public()}
	if item.ReporterID == auth.UserID(c) || admin {
		view["contact"] = item.Contact.Data()
		view["verificationQuestions"] = []Question(item.Questions)
	}
	api.OK(c, http.StatusOK, view)
}

func (h *Handler) List(c *gin.Context) {
	params := ListParams{
		Offset:       intQuery(c, "offset", 0),
		Limit:        intQuery(c, "limit", 20),
		Type:         Type(c.Query("type")),
		Status:       Status(c.Query("status")),
		Category:     c.Query("category"),
		Location:     c.Query("location"),
		Search:       c.Query("search"),
		SortBy:       c.Query("sortBy"),
		SortOrder:    c.Query("sortOrder"),
		VerifiedOnly: true,
	}
	if params.Status == "" {
		params.Status = StatusActive
	}

	list, total, err := h.service.List(c.Request.Context(), params)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"items": publicViews(list), "total": total})
}

func (h *Handler) ListMine(c *gin.Context) {
	list, total, err := h.service.ListMine(c.Request.Context(), auth.UserID(c),
		intQuery(c, "offset", 0), intQuery(c, "limit", 20))
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"items": publicViews(list), "total": total})
}

func (h *Handler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		api.Fail(c, err)
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, apperrors.Validation("invalid item payload"))
		return
	}

	item, err := h.service.Update(c.Request.Context(), id, auth.UserID(c), req)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"item": item.Public()})
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		api.Fail(c, err)
		return
	}

	admin := c.GetString(auth.ContextRole) == "admin"
	if err := h.service.Delete(c.Request.Context(), id, auth.UserID(c), admin); err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"message": "item deleted"})
}

func (h *Handler) AddImages(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		api.Fail(c, err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil || form == nil || len(form.File["images"]) == 0 {
		api.Fail(c, apperrors.Validation("at least one image file is required"))
		return
	}
	files := form.File["images"]
	if len(files) > h.maxImgs {
		api.Fail(c, apperrors.Validation("too many images, the limit is "+strconv.Itoa(h.maxImgs)))
		return
	}

	paths, err := h.saveImages(files)
	if err != nil {
		api.Fail(c, err)
		return
	}

	item, err := h.service.AddImages(c.Request.Context(), id, auth.UserID(c), paths)
	if err != nil {
		h.removeAll(paths)
		api.Fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"item": item.Public()})
}

func (h *Handler) saveImages(files []*multipart.FileHeader) ([]string, error) {
	var paths []string
	for _, file := range files {
		path, err := h.store.Save(storage.FieldImage, file)
		if err != nil {
			h.removeAll(paths)
			var badExt *storage.InvalidFileError
			var tooBig *storage.FileTooLargeError
			if errors.As(err, &badExt) || errors.As(err, &tooBig) {
				return nil, apperrors.Validation(err.Error())
			}
			h.logger.Error("failed to store image", zap.Error(err))
			return nil, apperrors.Storage()
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (h *Handler) removeAll(paths []string) {
	for _, path := range paths {
		if err := h.store.Remove(path); err != nil {
			h.logger.Warn("failed to roll back stored file", zap.Error(err), zap.String("path", path))
		}
	}
}

func publicViews(list []Item) []PublicView {
	views := make([]PublicView, 0, len(list))
	for i := range list {
		views = append(views, list[i].Public())
	}
	return views
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			return v
		}
	}
	return fallback
}

func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, apperrors.Validation("invalid id")
	}
	return uint(id), nil
}
