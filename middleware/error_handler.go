package middleware

import (
	"net/http"

	"patchdeck/telemetry"

	"github.com/gin-gonic/gin"
)

// ErrorHandler is a middleware for Gin that maps errors attached to the
// context into JSON responses
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			if serviceErr, ok := err.Err.(*telemetry.ServiceError); ok {
				c.JSON(serviceErr.Code, gin.H{
					"error":   serviceErr.Message,
					"service": serviceErr.Service,
				})
				return
			}

			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   err.Error(),
				"service": c.GetString("service-name"),
			})
			return
		}
	}
}
