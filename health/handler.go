// Package health provides a common health check endpoint for patchdeck
// services, with pluggable dependency checks.
package health

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"runtime"
	"time"
)

// HealthStatus represents the current health state of the service
type HealthStatus struct {
	Status      string            `json:"status"`
	ServiceName string            `json:"service"`
	Version     string            `json:"version,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
}

// Options represents configurable options for the health check handler
type Options struct {
	// ServiceName is the name of the service
	ServiceName string
	// Version is the version of the service
	Version string
	// Details contains additional details to include in the health status
	Details map[string]string
	// AdditionalChecks is a map of additional health check functions
	AdditionalChecks map[string]CheckFunc
}

// CheckFunc is a function that performs a health check and returns a result
type CheckFunc func() (bool, string)

// MemoryCheck creates a basic memory check function
func MemoryCheck() CheckFunc {
	return func() (bool, string) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)
		memoryUsage := memStats.Alloc / (1024 * 1024) // MB
		return true, fmt.Sprintf("%d MB", memoryUsage)
	}
}

// UptimeCheck creates an uptime check function
func UptimeCheck(startTime time.Time) CheckFunc {
	return func() (bool, string) {
		uptime := time.Since(startTime)
		return true, uptime.String()
	}
}

// DependencyCheck creates a check function for an HTTP dependency. Failures
// are reported as warnings rather than failing the whole health check, so
// container orchestrators don't restart the service over a flaky neighbor.
func DependencyCheck(name, url string, timeout time.Duration) CheckFunc {
	return func() (bool, string) {
		client := &http.Client{
			Timeout: timeout,
		}

		start := time.Now()
		resp, err := client.Get(url)
		duration := time.Since(start)

		if err != nil {
			log.Printf("Warning: Dependency %s check failed: %v", name, err)
			return true, fmt.Sprintf("Warning: %v (health check still passing)", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return true, fmt.Sprintf("OK (%d ms)", duration.Milliseconds())
		}
		log.Printf("Warning: Dependency %s returned status %d", name, resp.StatusCode)
		return true, fmt.Sprintf("Warning: Status code: %d (health check still passing)", resp.StatusCode)
	}
}

// NewHandler creates a new health check handler with the given options
func NewHandler(opts Options) http.HandlerFunc {
	if opts.Details == nil {
		opts.Details = make(map[string]string)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		status := HealthStatus{
			Status:      "OK",
			ServiceName: opts.ServiceName,
			Version:     opts.Version,
			Details:     make(map[string]string),
		}

		for k, v := range opts.Details {
			status.Details[k] = v
		}

		status.Details["goVersion"] = runtime.Version()
		status.Details["goArch"] = runtime.GOARCH
		status.Details["goOS"] = runtime.GOOS
		status.Details["hostname"], _ = os.Hostname()

		if opts.AdditionalChecks != nil {
			failedChecks := false
			for name, checkFn := range opts.AdditionalChecks {
				ok, msg := checkFn()
				status.Details[name] = msg
				if !ok {
					failedChecks = true
				}
			}
			if failedChecks {
				status.Status = "DEGRADED"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if status.Status == "OK" {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Printf("Error encoding health status: %v", err)
		}
	}
}
