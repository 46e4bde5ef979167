package telemetry

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServiceError carries an HTTP status code and the service that produced
// the error, so the error-handling middleware can map it to a response
type ServiceError struct {
	Code    int    // HTTP status code
	Message string // Error message
	Service string // Service that generated the error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Service, e.Message)
}

// NewServiceError creates a new service error
func NewServiceError(service string, code int, message string) *ServiceError {
	return &ServiceError{
		Service: service,
		Code:    code,
		Message: message,
	}
}

// LogAndError logs err and attaches it to the gin context as a
// ServiceError. Returns true when err was non-nil so handlers can bail
// early.
func LogAndError(c *gin.Context, err error, serviceName string, message string) bool {
	if err == nil {
		return false
	}

	log.Printf("%s: %v", message, err)

	if serviceErr, ok := err.(*ServiceError); ok {
		c.Error(serviceErr)
	} else {
		c.Error(NewServiceError(serviceName, http.StatusInternalServerError, message))
	}

	return true
}
