package core

import "github.com/gin-gonic/gin"

const contextUserKey = "auth_user"

// TokenAuthMiddleware resolves the Authorization header to a user and aborts
// with 401 when it cannot. The header carries the raw opaque token, no
// "Bearer " prefix.
func TokenAuthMiddleware(auth *AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		user, err := auth.ResolveToken(c.Request.Context(), token)
		if err != nil {
			respondAppError(c, err)
			c.Abort()
			return
		}
		c.Set(contextUserKey, user)
		c.Next()
	}
}

// currentUser returns the user stashed by TokenAuthMiddleware.
func currentUser(c *gin.Context) (*UserRecord, bool) {
	userAny, ok := c.Get(contextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := userAny.(*UserRecord)
	return user, ok
}
