package main

import (
	"context"
	"log"
	"time"

	"patchdeck/coordinator"
	"patchdeck/httpclient"
)

// EventSink fans coordinator audit events out to the metrics counters, the
// submission history store and, when configured, the RabbitMQ event queue.
// Events are handed off through a buffered channel so coordinator paths
// never block on a slow broker.
type EventSink struct {
	queue     chan coordinator.Event
	publisher *httpclient.EventPublisher[coordinator.Event]
	queueName string
	store     *SubmissionStore
	done      chan struct{}
}

// NewEventSink creates the sink and starts its worker. Both publisher and
// store may be nil when the corresponding feature is disabled.
func NewEventSink(publisher *httpclient.EventPublisher[coordinator.Event], queueName string, store *SubmissionStore) *EventSink {
	sink := &EventSink{
		queue:     make(chan coordinator.Event, 256),
		publisher: publisher,
		queueName: queueName,
		store:     store,
		done:      make(chan struct{}),
	}
	go sink.run()
	return sink
}

// Handle enqueues one event; called synchronously from the coordinators
func (s *EventSink) Handle(event coordinator.Event) {
	select {
	case s.queue <- event:
	default:
		// Queue full; audit events are best effort
		log.Printf("Dropping audit event %s for %s: sink queue full", event.Type, event.Domain)
	}
}

func (s *EventSink) run() {
	for {
		select {
		case <-s.done:
			return
		case event := <-s.queue:
			s.process(event)
		}
	}
}

func (s *EventSink) process(event coordinator.Event) {
	observeEvent(event)

	if s.store != nil {
		if err := s.store.Record(event); err != nil {
			log.Printf("Failed to record %s event in history: %v", event.Type, err)
		}
	}

	if s.publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s.publisher.Publish(ctx, s.queueName, event); err != nil {
			log.Printf("Failed to publish %s event: %v", event.Type, err)
		}
		cancel()
	}
}

// Close stops the worker
func (s *EventSink) Close() {
	close(s.done)
}
