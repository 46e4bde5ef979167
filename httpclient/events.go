package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// EventPublisher pushes typed JSON messages to a durable RabbitMQ queue
// with publisher confirms. Used for audit events that external consumers
// subscribe to.
type EventPublisher[T any] struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	confirms chan amqp.Confirmation
	tracer   trace.Tracer
}

// NewEventPublisher connects to RabbitMQ and enables confirm mode
func NewEventPublisher[T any](url string) (*EventPublisher[T], error) {
	tracer := otel.Tracer("patchdeck/httpclient/events")

	ctx := context.Background()
	_, span := tracer.Start(ctx, "rabbitmq.connect")
	defer span.End()

	span.SetAttributes(attribute.String("rabbitmq.url", url))

	conn, err := amqp.Dial(url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to connect to RabbitMQ")
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open channel")
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		ch.Close()
		conn.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to enable confirm mode")
		return nil, fmt.Errorf("failed to put channel in confirm mode: %w", err)
	}

	confirms := ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	span.SetStatus(codes.Ok, "RabbitMQ publisher initialized")

	return &EventPublisher[T]{
		conn:     conn,
		channel:  ch,
		confirms: confirms,
		tracer:   tracer,
	}, nil
}

// DeclareQueue declares the durable queue to ensure it exists
func (p *EventPublisher[T]) DeclareQueue(queueName string) error {
	_, span := p.tracer.Start(context.Background(), "rabbitmq.declare_queue")
	defer span.End()

	span.SetAttributes(attribute.String("rabbitmq.queue", queueName))

	_, err := p.channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to declare queue")
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	span.SetStatus(codes.Ok, "Queue declared")
	return nil
}

// Publish marshals the message, publishes it persistently, and waits for
// the server acknowledgement
func (p *EventPublisher[T]) Publish(ctx context.Context, queueName string, message T) error {
	ctx, span := p.tracer.Start(ctx, "rabbitmq.publish_message")
	defer span.End()

	body, err := json.Marshal(message)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to marshal message")
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	span.SetAttributes(
		attribute.String("rabbitmq.queue", queueName),
		attribute.Int("rabbitmq.message.size", len(body)),
	)

	err = p.channel.PublishWithContext(
		ctx,
		"",        // exchange
		queueName, // routing key
		true,      // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to publish message")
		return fmt.Errorf("failed to publish message: %w", err)
	}

	select {
	case confirm := <-p.confirms:
		if !confirm.Ack {
			err := fmt.Errorf("message rejected by server")
			span.RecordError(err)
			span.SetStatus(codes.Error, "message rejected by server")
			return err
		}
		span.SetStatus(codes.Ok, "Message published and acknowledged")
		return nil
	case <-ctx.Done():
		err := fmt.Errorf("confirmation timed out: %w", ctx.Err())
		span.RecordError(err)
		span.SetStatus(codes.Error, "confirmation timed out")
		return err
	case <-time.After(5 * time.Second):
		err := fmt.Errorf("confirmation timed out after 5 seconds")
		span.RecordError(err)
		span.SetStatus(codes.Error, "confirmation timed out after 5 seconds")
		return err
	}
}

// Close closes the channel and connection
func (p *EventPublisher[T]) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			return fmt.Errorf("failed to close channel: %w", err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}
	return nil
}
