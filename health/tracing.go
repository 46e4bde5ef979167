package health

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code and passes it through
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// WithTracing wraps a health check handler with OpenTelemetry tracing
func WithTracing(h http.HandlerFunc, serviceName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		propagator := otel.GetTextMapPropagator()
		ctx = propagator.Extract(ctx, propagation.HeaderCarrier(r.Header))

		tracer := otel.Tracer(serviceName)
		ctx, span := tracer.Start(ctx, "healthCheck")
		defer span.End()

		startTime := time.Now()

		wrappedWriter := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		h(wrappedWriter, r.WithContext(ctx))

		duration := time.Since(startTime)
		span.SetAttributes(
			attribute.Int64("health_check.duration_ms", duration.Milliseconds()),
			attribute.Int("http.status_code", wrappedWriter.statusCode),
			attribute.String("http.method", r.Method),
			attribute.String("http.url", r.URL.String()),
			attribute.String("service.name", serviceName),
		)

		if wrappedWriter.statusCode >= 200 && wrappedWriter.statusCode < 300 {
			span.SetStatus(codes.Ok, "Success")
		} else {
			span.SetStatus(codes.Error, "Health check failure")
		}
	}
}
