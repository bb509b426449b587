package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/ledger_backend/utils"
)

const CompanyHeader = "x-company"

// CompanyMiddleware scopes the request to the company named in the x-company header.
// A session company wins; a header naming a different company is rejected.
func CompanyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader(CompanyHeader))
		if header == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		if current, ok := utils.GetCompanyFromContext(ctx); ok && current != "" {
			if current != header {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "company not allowed for this session"})
				return
			}
			c.Next()
			return
		}
		c.Request = c.Request.WithContext(utils.SetCompanyInContext(ctx, header))
		c.Next()
	}
}
