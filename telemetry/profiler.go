//go:build !test
// +build !test

package telemetry

import (
	"context"
	"log"
	"runtime"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
)

// ProfilerProvider wraps the Pyroscope continuous profiler. A nil or
// disabled provider is safe to use everywhere.
type ProfilerProvider struct {
	profiler *pyroscope.Profiler
	tags     map[string]string
	enabled  bool
}

// InitProfiler starts the Pyroscope profiler. An empty endpoint disables
// profiling and returns a no-op provider.
func InitProfiler(serviceName string, pyroscopeEndpoint string) (*ProfilerProvider, error) {
	if pyroscopeEndpoint == "" {
		log.Println("Pyroscope endpoint is empty, profiling is disabled")
		return &ProfilerProvider{
			tags:    make(map[string]string),
			enabled: false,
		}, nil
	}

	runtime.SetBlockProfileRate(1)
	runtime.SetMutexProfileFraction(1)

	tags := map[string]string{
		"service": serviceName,
	}

	cfg := pyroscope.Config{
		ApplicationName: serviceName,
		ServerAddress:   pyroscopeEndpoint,
		Logger:          pyroscope.StandardLogger,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileBlockCount,
			pyroscope.ProfileBlockDuration,
			pyroscope.ProfileMutexCount,
			pyroscope.ProfileMutexDuration,
		},
		Tags:       tags,
		UploadRate: 15 * time.Second,
	}

	profiler, err := pyroscope.Start(cfg)
	if err != nil {
		log.Printf("Failed to start Pyroscope profiler, continuing without profiling: %v", err)
		return &ProfilerProvider{
			tags:    tags,
			enabled: false,
		}, nil
	}

	log.Printf("Pyroscope profiler started for service: %s", serviceName)
	return &ProfilerProvider{
		profiler: profiler,
		tags:     tags,
		enabled:  true,
	}, nil
}

// AddTag attaches a tag to subsequent profiles
func (pp *ProfilerProvider) AddTag(key, value string) {
	if pp == nil || !pp.enabled {
		return
	}
	pp.tags[key] = value
}

// TagWithContext attaches a tag and returns the context unchanged
func (pp *ProfilerProvider) TagWithContext(ctx context.Context, key, value string) context.Context {
	if pp == nil || !pp.enabled {
		return ctx
	}
	pp.AddTag(key, value)
	return ctx
}

// Stop stops the profiler
func (pp *ProfilerProvider) Stop() {
	if pp == nil || !pp.enabled {
		return
	}
	pp.profiler.Stop()
}

// StopWithTimeout stops the profiler, giving up after the timeout
func (pp *ProfilerProvider) StopWithTimeout(timeout time.Duration) {
	if pp == nil || !pp.enabled {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	done := make(chan struct{})
	go func() {
		pp.profiler.Stop()
		close(done)
	}()
	select {
	case <-done:
		log.Println("Pyroscope profiler stopped gracefully")
	case <-ctx.Done():
		log.Println("Pyroscope profiler stop timed out")
	}
}
