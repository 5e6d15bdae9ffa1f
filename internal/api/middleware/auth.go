package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/blog-api/internal/model"
	"github.com/d60-Lab/blog-api/internal/service"
	"github.com/d60-Lab/blog-api/pkg/response"
)

// CurrentUserKey gin context 中已认证用户的键
const CurrentUserKey = "current_user"

// RequireAuth parses the bearer token and loads the authenticated user
// into the context. Any failure aborts with 401.
func RequireAuth(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.Unauthorized(c, "Not authenticated")
			return
		}
		user, err := auth.Verify(c.Request.Context(), token)
		if err != nil {
			response.Unauthorized(c, "Could not validate credentials")
			return
		}
		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireAuth.
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(CurrentUserKey); ok {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}
