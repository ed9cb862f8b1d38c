package claims

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-find/lostfound-backend/internal/api"
	"campus-find/lostfound-backend/internal/apperrors"
	"campus-find/lostfound-backend/internal/auth"
	"campus-find/lostfound-backend/pkg/storage"
)

type Handler struct {
	service Service
	store   *storage.LocalStore
	logger  *zap.Logger
}

func NewHandler(service Service, store *storage.LocalStore, logger *zap.Logger) *Handler {
	return &Handler{service: service, store: store, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	claims := rg.Group("/claims")
	{
		claims.POST("", h.Submit)
		claims.GET("/my", h.ListMine)
		claims.GET("/for-my-items", h.ListForMyItems)
		claims.GET("/:id", h.Get)
		claims.POST("/:id/proof", h.SubmitProof)
		claims.PUT("/:id/verify-proof", h.VerifyProof)
		claims.PUT("/:id/approve", h.Approve)
		claims.PUT("/:id/reject", h.Reject)
		claims.PUT("/:id/complete", h.Complete)
		claims.GET("/:id/contact", h.Contact)
	}
}

func (h *Handler) Submit(c *gin.Context) {
	var req struct {
		ItemID              uint     `json:"itemId" binding:"required"`
		VerificationAnswers []string `json:"verificationAnswers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, apperrors.Validation("itemId and verificationAnswers are required"))
		return
	}

	claim, err := h.service.Submit(c.Request.Context(), auth.UserID(c), req.ItemID, req.VerificationAnswers)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, http.StatusCreated, gin.H{"claim": claimantView(claim)})
}

func (h *Handler) SubmitProof(c *gin.Context) {
	id, err := claimID(c)
	if err != nil {
		api.Fail(c, err)
		return
	}

	file, err := c.FormFile("proof")
	if err != nil {
		api.Fail(c, apperrors.Validation("a proof file is required (jpg, png or pdf)"))
		return
	}

	path, err := h.store.Save(storage.FieldProof, file)
	if err != nil {
		var badExt *storage.InvalidFileError
		var tooBig *storage.FileTooLargeError
		if errors.As(err, &badExt) || errors.As(err, &tooBig) {
			api.Fail(c, apperrors.Validation(err.Error()))
			return
		}
		h.logger.Error("failed to store proof", zap.Error(err))
		api.Fail(c, apperrors.Storage())
		return
	}

	claim, err := h.service.SubmitProof(c.Request.Context(), id, auth.UserID(c), path)
	if err != nil {
		// The proof already landed on disk; roll it back.
		if rmErr := h.store.Remove(path); rmErr != nil {
			h.logger.Warn("failed to roll back proof file", zap.Error(rmErr), zap.String("path", path))
		}
		api.Fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"claim": claimantView(claim)})
}

func (h *Handler) VerifyProof(c *gin.Context) {
	id, err := claimID(c)
	if err != nil {
		api.Fail(c, err)
		return
	}

	var req struct {
		Verified *bool `json:"verified" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, apperrors.Validation("verified (true or false) is required"))
		return
	}

	claim, err := h.service.VerifyProof(c.Request.Context(), id, auth.UserID(c), *req.Verified)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"claim": claim})
}

func (h *Handler) Approve(c *gin.Context) {
	id, err := claimID(c)
	if err != nil {
		api.Fail(c, err)
		return
	}

	claim, err := h.service.Approve(c.Request.Context(), id, auth.UserID(c))
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"claim": claim})
}

func (h *Handler) Reject(c *gin.Context) {
	id, err := claimID(c)
	if err != nil {
		api.Fail(c, err)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	claim, err := h.service.Reject(c.Request.Context(), id, auth.UserID(c), req.Reason)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"claim": claim})
}

func (h *Handler) Complete(c *gin.Context) {
	id, err := claimID(c)
	if err != nil {
		api.Fail(c, err)
		return
	}

	claim, err := h.service.Complete(c.Request.Context(), id, auth.UserID(c))
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"claim": claim})
}

func (h *Handler) Contact(c *gin.Context) {
	id, err := claimID(c)
	if err != nil {
		api.Fail(c, err)
		return
	}

	details, err := h.service.Contact(c.Request.Context(), id, auth.UserID(c))
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"contact": details})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := claimID(c)
	if err != nil {
		api.Fail(c, err)
		return
	}

	claim, err := h.service.Get(c.Request.Context(), id, auth.UserID(c))
	if err != nil {
		api.Fail(c, err)
		return
	}
	if claim.ClaimantID == auth.UserID(c) {
		api.OK(c, http.StatusOK, gin.H{"claim": claimantView(claim)})
		return
	}
	api.OK(c, http.StatusOK, gin.H{"claim": claim})
}

func (h *Handler) ListMine(c *gin.Context) {
	list, total, err := h.service.ListMine(c.Request.Context(), auth.UserID(c),
		intQuery(c, "offset", 0), intQuery(c, "limit", 20))
	if err != nil {
		api.Fail(c, err)
		return
	}

	views := make([]gin.H, 0, len(list))
	for i := range list {
		views = append(views, claimantView(&list[i]))
	}
	api.OK(c, http.StatusOK, gin.H{"claims": views, "total": total})
}

func (h *Handler) ListForMyItems(c *gin.Context) {
	list, total, err := h.service.ListForMyItems(c.Request.Context(), auth.UserID(c),
		intQuery(c, "offset", 0), intQuery(c, "limit", 20))
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"claims": list, "total": total})
}

// claimantView redacts the stored correct answers. Only item owners see the
// full comparison snapshot.
func claimantView(claim *Claim) gin.H {
	answers := make([]gin.H, 0, len(claim.Answers))
	for _, a := range claim.Answers {
		answers = append(answers, gin.H{
			"question":        a.Question,
			"submittedAnswer": a.SubmittedAnswer,
			"correct":         a.Correct,
		})
	}
	return gin.H{
		"id":              claim.ID,
		"itemId":          claim.ItemID,
		"status":          claim.Status,
		"answers":         answers,
		"correctCount":    claim.CorrectCount,
		"totalCount":      claim.TotalCount,
		"accuracy":        claim.Accuracy,
		"contactRevealed": claim.ContactRevealed,
		"rejectReason":    claim.RejectReason,
		"submittedAt":     claim.SubmittedAt,
	}
}

func claimID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, apperrors.Validation("invalid claim id")
	}
	return uint(id), nil
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			return v
		}
	}
	return fallback
}
