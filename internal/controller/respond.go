package controller

import (
	"github.com/gin-gonic/gin"

	"cdr-backend-V1.0/internal/apperr"
	logger "cdr-backend-V1.0/pkg/logging"
)

// abortWithError maps a service error to its HTTP status, keeping the
// error kinds distinguishable for the client.
func abortWithError(c *gin.Context, err error) {
	if apperr.IsStorage(err) {
		logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.UserMessage(err)})
}
