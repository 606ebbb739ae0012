package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"learnora.com/app/internal/shared/apperr"
)

const HeaderAdminToken = "X-Admin-Token"

// RequireAdmin accepts either "Authorization: Bearer <token>" or X-Admin-Token.
// An empty configured token locks the admin surface entirely.
func RequireAdmin(token string) gin.HandlerFunc {
	want := []byte(token)
	return func(c *gin.Context) {
		got := adminToken(c)
		if got == "" {
			Fail(c, apperr.UnauthorizedErr("admin token required"))
			return
		}
		if len(want) == 0 || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			Fail(c, apperr.ForbiddenErr("forbidden"))
			return
		}
		c.Next()
	}
}

func adminToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return strings.TrimSpace(c.GetHeader(HeaderAdminToken))
}
