package telemetry

import (
	"context"
	"testing"
	"time"
)

// TestInitProfilerWithEmptyEndpoint verifies that an empty endpoint yields
// a disabled but usable provider
func TestInitProfilerWithEmptyEndpoint(t *testing.T) {
	pp, err := InitProfiler("test-service", "")
	if err != nil {
		t.Fatalf("InitProfiler with empty endpoint returned error: %v", err)
	}
	if pp == nil {
		t.Fatal("InitProfiler with empty endpoint returned nil ProfilerProvider")
	}
	if pp.enabled {
		t.Fatal("ProfilerProvider should be disabled with empty endpoint")
	}

	// Methods must not panic when the profiler is disabled
	pp.AddTag("test", "value")
	ctx := context.Background()
	pp.TagWithContext(ctx, "test", "value")
	pp.Stop()
	pp.StopWithTimeout(5 * time.Second)
}

// TestNilProfilerProvider verifies that methods don't panic with a nil
// receiver
func TestNilProfilerProvider(t *testing.T) {
	var pp *ProfilerProvider
	pp.AddTag("test", "value")
	ctx := context.Background()
	pp.TagWithContext(ctx, "test", "value")
	pp.Stop()
	pp.StopWithTimeout(5 * time.Second)
}
