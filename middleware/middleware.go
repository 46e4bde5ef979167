// Package middleware provides the standard gin middleware stack shared by
// patchdeck services.
package middleware

import (
	"fmt"

	"patchdeck/telemetry"

	"github.com/gin-gonic/gin"
)

// SetupGlobalMiddleware applies all standard middleware to a Gin router in
// the recommended order
func SetupGlobalMiddleware(router *gin.Engine, serviceName string) {
	// Make the service name available to downstream middleware
	router.Use(func(c *gin.Context) {
		c.Set("service-name", serviceName)
		c.Next()
	})

	router.Use(Recovery())           // First to catch panics
	router.Use(Logger())             // Log all requests
	router.Use(ErrorHandler())       // Handle errors
	router.Use(Tracing(serviceName)) // Add tracing last so it captures everything
}

// SetupCommonComponents initializes telemetry for a service and returns a
// configured Gin router ready for route registration. Reduces boilerplate
// in service main functions.
func SetupCommonComponents(serviceName, otlpEndpoint, metricsEndpoint, pyroscopeEndpoint string) (*gin.Engine, *telemetry.TracerProvider, *telemetry.MeterProvider, *telemetry.ProfilerProvider, error) {
	tp, err := telemetry.InitTracer(serviceName, otlpEndpoint)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	mp, err := telemetry.InitMeter(serviceName, metricsEndpoint)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	pp, err := telemetry.InitProfiler(serviceName, pyroscopeEndpoint)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to initialize profiler: %w", err)
	}

	router := gin.New()
	SetupGlobalMiddleware(router, serviceName)
	router.Use(Metrics(serviceName, mp))

	return router, tp, mp, pp, nil
}
