package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"patchdeck/config"
	"patchdeck/health"
	"patchdeck/middleware"
)

// Custom metrics for the simulator
var (
	jobsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fleetsim_jobs_in_flight",
			Help: "Number of accepted jobs not yet resolved",
		},
	)
)

func init() {
	prometheus.MustRegister(jobsInFlight)
}

// updateDepthGauges refreshes the in-flight gauge
func updateDepthGauges(state *FleetState) {
	jobsInFlight.Set(float64(state.InFlight()))
}

func main() {
	cfg, err := config.LoadFleetSimConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	config.LogConfig(cfg.BaseConfig)

	router, tp, mp, pp, err := middleware.SetupCommonComponents(
		cfg.ServiceName,
		cfg.JaegerEndpoint,
		cfg.MetricsEndpoint,
		cfg.PyroscopeEndpoint,
	)
	if err != nil {
		log.Fatalf("Failed to set up application: %v", err)
	}
	defer tp.ShutdownWithTimeout(5 * time.Second)
	if mp != nil {
		defer mp.ShutdownWithTimeout(5 * time.Second)
	}
	if pp != nil {
		defer pp.StopWithTimeout(5 * time.Second)
	}

	state := NewFleetState(cfg.CompletionDelay, cfg.FailSubstring)
	state.Seed(cfg.SeedHosts, cfg.UpdatesPerHost)

	registerDomainRoutes(router, state, "updates")
	registerDomainRoutes(router, state, "upgrades")

	healthService := health.New(health.Options{
		ServiceName: cfg.ServiceName,
		Version:     "0.1.0",
	})
	router.GET("/health", gin.WrapF(healthService.Handler()))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	address := cfg.GetAddress()
	log.Printf("Fleet simulator starting on %s...", address)
	if err := router.Run(address); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
