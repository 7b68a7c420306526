package core

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError sends unified error payload {"error": {"code", "message"}}.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}

// respondValidationError sends the flat validation envelope. Shape details are
// deliberately not echoed back to the client.
func respondValidationError(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data provided"})
}

// respondData sends the success envelope {"message": ..., "data": ...}.
func respondData(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, gin.H{"message": message, "data": data})
}

// respondAppError maps a service error to its HTTP response. Non-AppError
// failures (store connectivity and the like) surface as plain 500s.
func respondAppError(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		respondError(c, appErr.Status, appErr.Code, appErr.Message)
		return
	}
	respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error")
}
