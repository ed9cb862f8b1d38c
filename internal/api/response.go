package api

import (
	"github.com/gin-gonic/gin"

	"campus-find/lostfound-backend/internal/apperrors"
)

// OK writes the success envelope with the given payload fields.
func OK(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// Fail writes the error envelope. Unrecognized errors are reported as a
// generic storage failure; the handler is responsible for logging them.
func Fail(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	c.AbortWithStatusJSON(appErr.Status, gin.H{
		"success": false,
		"error":   appErr.Message,
		"code":    appErr.Code,
	})
}
