package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"patchdeck/coordinator"
)

// Custom metrics for the console
var (
	selectedItems = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "console_selected_items",
			Help: "Number of items currently selected, by domain",
		},
		[]string{"domain"},
	)

	pendingItems = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "console_pending_items",
			Help: "Number of submitted items awaiting a result, by domain",
		},
		[]string{"domain"},
	)

	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_submissions_total",
			Help: "Number of host submissions issued, by domain and outcome",
		},
		[]string{"domain", "outcome"},
	)

	resolvedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_resolved_items_total",
			Help: "Number of ledger entries resolved by merges, by domain",
		},
		[]string{"domain"},
	)
)

func init() {
	prometheus.MustRegister(selectedItems)
	prometheus.MustRegister(pendingItems)
	prometheus.MustRegister(submissionsTotal)
	prometheus.MustRegister(resolvedTotal)
}

// observeEvent bumps the event-driven counters
func observeEvent(event coordinator.Event) {
	switch event.Type {
	case coordinator.EventBatchSubmitted:
		outcome := "accepted"
		if !event.Accepted {
			outcome = "rejected"
		}
		submissionsTotal.WithLabelValues(event.Domain, outcome).Inc()
	case coordinator.EventItemsResolved:
		resolvedTotal.WithLabelValues(event.Domain).Add(float64(len(event.Keys)))
	}
}

// updateDepthGauges refreshes the selection and ledger depth gauges for one
// domain
func updateDepthGauges(domain string, coord *coordinator.Coordinator) {
	selectedItems.WithLabelValues(domain).Set(float64(coord.SelectedCount()))
	pendingItems.WithLabelValues(domain).Set(float64(coord.PendingCount()))
}
