package core

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter constructs the Gin engine with routes wired.
func NewRouter(auth *AuthService, metrics *AuthMetrics) *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		users := api.Group("/users")

		users.POST("", func(c *gin.Context) {
			var req RegisterRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				respondValidationError(c)
				return
			}

			result, err := auth.Register(c.Request.Context(), req)
			if err != nil {
				respondAppError(c, err)
				return
			}
			respondData(c, "User registered successfully", result)
		})

		users.POST("/login", func(c *gin.Context) {
			var req LoginRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				respondValidationError(c)
				return
			}

			result, err := auth.Login(c.Request.Context(), req)
			if err != nil {
				respondAppError(c, err)
				return
			}
			respondData(c, "User logged in successfully", result)
		})

		users.GET("/me", TokenAuthMiddleware(auth), func(c *gin.Context) {
			user, ok := currentUser(c)
			if !ok {
				respondAppError(c, ErrUnauthorized)
				return
			}

			result, err := auth.CurrentUser(c.Request.Context(), user.ID)
			if err != nil {
				respondAppError(c, err)
				return
			}
			respondData(c, "Success", result)
		})

		api.GET("/metrics", func(c *gin.Context) {
			counters, err := metrics.Overview(c.Request.Context())
			if err != nil {
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to read counters")
				return
			}
			c.JSON(http.StatusOK, counters)
		})
	}

	return r
}
