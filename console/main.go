package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"patchdeck/clients"
	"patchdeck/config"
	"patchdeck/coordinator"
	"patchdeck/health"
	"patchdeck/httpclient"
	"patchdeck/middleware"
)

func main() {
	cfg, err := config.LoadConsoleConfig()
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

	// Submission history store
	var history *SubmissionStore
	if cfg.HistoryDBURL != "" {
		history, err = NewSubmissionStore(cfg.HistoryDBURL)
		if err != nil {
			log.Fatalf("Failed to open submission history store: %v", err)
		}
		defer history.Close()
	}

	// Audit event publisher; optional
	var publisher *httpclient.EventPublisher[coordinator.Event]
	if cfg.RabbitMQURL != "" {
		publisher, err = httpclient.NewEventPublisher[coordinator.Event](cfg.RabbitMQURL)
		if err != nil {
			log.Fatalf("Failed to connect audit event publisher: %v", err)
		}
		defer publisher.Close()
		if err := publisher.DeclareQueue(cfg.EventQueueName); err != nil {
			log.Fatalf("Failed to declare audit event queue: %v", err)
		}
	}

	sink := NewEventSink(publisher, cfg.EventQueueName, history)
	defer sink.Close()

	// One subscriber slot shared by both coordinators: the summary caches
	notifier := coordinator.NewSingleNotifier()

	opts := coordinator.Options{
		PollInterval:      cfg.PollInterval,
		SweepGrace:        cfg.SweepGrace,
		StalePendingAfter: cfg.StalePendingAfter,
		OnEvent:           sink.Handle,
	}

	updatesSvc := clients.NewFleetClient(cfg.FleetAPIURL, "updates")
	upgradesSvc := clients.NewFleetClient(cfg.FleetAPIURL, "upgrades")

	updatesCoord := coordinator.New(&clients.UpdatesDomain{Service: updatesSvc}, notifier, opts)
	defer updatesCoord.Close()
	upgradesCoord := coordinator.New(&clients.UpgradesDomain{Service: upgradesSvc}, notifier, opts)
	defer upgradesCoord.Close()

	updatesSummary, err := clients.NewSummaryCache(updatesSvc, "updates-summary", cfg.SummaryCacheTTL)
	if err != nil {
		log.Fatalf("Failed to create updates summary cache: %v", err)
	}
	upgradesSummary, err := clients.NewSummaryCache(upgradesSvc, "upgrades-summary", cfg.SummaryCacheTTL)
	if err != nil {
		log.Fatalf("Failed to create upgrades summary cache: %v", err)
	}
	notifier.Register(func() {
		updatesSummary.Invalidate()
		upgradesSummary.Invalidate()
	})

	console := &Console{
		serviceName: cfg.ServiceName,
		views: []*DomainView{
			{Segment: "updates", Coord: updatesCoord, Service: updatesSvc},
			{Segment: "upgrades", Coord: upgradesCoord, Service: upgradesSvc},
		},
		summaries: map[string]*clients.SummaryCache{
			"updates":  updatesSummary,
			"upgrades": upgradesSummary,
		},
		notifier:   notifier,
		history:    history,
		historyCap: cfg.HistoryLimit,
	}
	console.RegisterRoutes(router)

	healthService := health.New(health.Options{
		ServiceName: cfg.ServiceName,
		Version:     "0.1.0",
	})
	healthService.AddDependencyCheck("fleet-api", cfg.FleetAPIURL+"/health")
	router.GET("/health", gin.WrapF(healthService.Handler()))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	address := cfg.GetAddress()
	log.Printf("Console server starting on %s...", address)
	if err := router.Run(address); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
