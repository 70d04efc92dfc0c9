package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/FanzeeApp/sotvolbackend/internal/apperr"
	"github.com/FanzeeApp/sotvolbackend/internal/service"
)

// Headers carrying the caller's identity. InitData is the signed Telegram
// WebApp payload; the plain id header is only a fallback and still goes
// through the admin membership check.
const (
	HeaderInitData   = "X-Telegram-Init-Data"
	HeaderTelegramID = "X-Telegram-Id"
)

// AdminOnly guards mutating endpoints behind the admin authorization gate.
func AdminOnly(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var fallback int64
		if v := c.GetHeader(HeaderTelegramID); v != "" {
			fallback, _ = strconv.ParseInt(v, 10, 64)
		}

		id, err := auth.Authorize(c.Request.Context(), c.GetHeader(HeaderInitData), fallback)
		if err != nil {
			c.AbortWithStatusJSON(apperr.StatusOf(err), gin.H{"error": apperr.MessageOf(err)})
			return
		}

		c.Set("admin_id", id)
		c.Next()
	}
}
