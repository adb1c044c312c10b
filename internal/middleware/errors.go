package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/chroniclehq/chronicle/internal/httputil"
)

// respondError writes the standard error body. Middleware in this package
// goes through it so rejections match handler error responses.
func respondError(c *gin.Context, status int, code, message string) {
	httputil.RespondError(c, status, code, message)
}
