//go:build test
// +build test

package telemetry

import (
	"context"
	"log"
	"time"
)

// ProfilerProvider is a stub implementation for test builds
type ProfilerProvider struct {
	tags    map[string]string
	enabled bool
}

// InitProfiler initializes a stub profiler for testing
func InitProfiler(serviceName string, pyroscopeEndpoint string) (*ProfilerProvider, error) {
	log.Printf("[TEST] Initializing stub profiler for service: %s", serviceName)
	return &ProfilerProvider{
		tags:    make(map[string]string),
		enabled: false,
	}, nil
}

// AddTag records the tag in the stub
func (pp *ProfilerProvider) AddTag(key, value string) {
	if pp == nil {
		return
	}
	if pp.tags == nil {
		pp.tags = make(map[string]string)
	}
	pp.tags[key] = value
}

// TagWithContext records the tag and returns the context unchanged
func (pp *ProfilerProvider) TagWithContext(ctx context.Context, key, value string) context.Context {
	if pp == nil {
		return ctx
	}
	pp.AddTag(key, value)
	return ctx
}

// Stop is a no-op in the test stub
func (pp *ProfilerProvider) Stop() {
	log.Println("[TEST] Stopping stub profiler")
}

// StopWithTimeout is a no-op in the test stub
func (pp *ProfilerProvider) StopWithTimeout(timeout time.Duration) {
	log.Printf("[TEST] Stopping stub profiler with timeout: %v", timeout)
}
