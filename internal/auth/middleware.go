package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"campus-find/lostfound-backend/internal/api"
	"campus-find/lostfound-backend/internal/apperrors"
)

const (
	ContextUserID = "auth.userID"
	ContextRole   = "auth.role"
)

// Account is the per-request view of the authenticated user row.
type Account struct {
	ID       uint
	Role     string
	Verified bool
}

// AccountLoader resolves a token subject to the current user row.
type AccountLoader func(ctx context.Context, id uint) (*Account, error)

// Middleware verifies the bearer token against the user table and stashes
// the caller's identity in the gin context. Every failure is terminal with
// a stable code; the messages tell the caller what to do next.
func Middleware(secret string, load AccountLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			api.Fail(c, apperrors.Token(apperrors.CodeMissingToken, "authentication required, please log in"))
			return
		}

		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			api.Fail(c, apperrors.Token(apperrors.CodeTokenMalformed, "malformed authorization header, please log in again"))
			return
		}

		claims, err := ParseToken(secret, tokenStr)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				api.Fail(c, apperrors.Token(apperrors.CodeTokenExpired, "session expired, please log in again"))
				return
			}
			api.Fail(c, apperrors.Token(apperrors.CodeTokenMalformed, "invalid token, please log in again"))
			return
		}

		account, err := load(c.Request.Context(), claims.UserID)
		if err != nil {
			api.Fail(c, err)
			return
		}
		if account == nil {
			api.Fail(c, apperrors.Token(apperrors.CodeUserNotFound, "account no longer exists, please register again"))
			return
		}
		if account.Role != claims.Role {
			api.Fail(c, apperrors.Token(apperrors.CodeTokenMismatch, "account details changed, please log in again"))
			return
		}
		if !account.Verified {
			api.Fail(c, apperrors.Token(apperrors.CodeUnverified, "account pending verification, contact an administrator"))
			return
		}

		c.Set(ContextUserID, account.ID)
		c.Set(ContextRole, account.Role)
		c.Next()
	}
}

// RequireAdmin gates admin-only routes. Must run after Middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != "admin" {
			api.Fail(c, apperrors.Authorization("administrator access required"))
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user's ID from the gin context.
func UserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
