package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/utils"
)

// Session is what the login service stores under "Session:<token>".
type Session struct {
	Username string `json:"username"`
	Company  string `json:"company"`
}

func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Request.Header.Get("token")
		if token == "" {
			c.Next()
			return
		}
		var session Session
		exists, err := config.GetRedisObject("Session:"+token, &session)
		if err != nil || !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := utils.SetUsernameInContext(c.Request.Context(), session.Username)
		if session.Company != "" {
			ctx = utils.SetCompanyInContext(ctx, session.Company)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
