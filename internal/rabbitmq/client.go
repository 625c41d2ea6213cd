package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/GoArmGo/WorkoutTracker/internal/config"
	"github.com/GoArmGo/WorkoutTracker/internal/domain"
	"github.com/GoArmGo/WorkoutTracker/internal/messaging/payloads"
)

const publishTimeout = 5 * time.Second

// Client publishes and consumes workout export jobs on one durable queue.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger
}

// NewClient connects, opens a channel and declares the export queue.
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	client := &Client{logger: logger}

	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	client.conn = conn

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	client.channel = ch

	// one unacknowledged export per worker at a time
	if err := ch.Qos(1, 0, false); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set channel prefetch: %w", err)
	}

	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.RabbitMQQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}
	client.queue = q

	logger.Info("rabbitmq queue declared", "queue", q.Name, "messages", q.Messages)
	return client, nil
}

// Close closes the channel and the connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("close rabbitmq channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("close rabbitmq connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// PublishWorkoutExport queues one export job as a persistent JSON message.
func (c *Client) PublishWorkoutExport(ctx context.Context, payload payloads.WorkoutExportPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload to JSON: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		"",           // default exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    payload.JobID.String(),
			Timestamp:    payload.RequestedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}

	c.logger.Info("export job published", "queue", c.queue.Name, "job_id", payload.JobID)
	return nil
}

// StartConsumingWorkoutExports registers a consumer and handles deliveries
// in a goroutine until ctx is done or the channel closes.
func (c *Client) StartConsumingWorkoutExports(ctx context.Context, handler func(context.Context, payloads.WorkoutExportPayload) error) error {
	msgs, err := c.channel.Consume(
		c.queue.Name,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("consumer registered", "queue", c.queue.Name)

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Info("rabbitmq delivery channel closed, stopping consumer")
					return
				}
				c.settle(msg, processDelivery(ctx, msg.Body, msg.Redelivered, handler, c.logger))
			case <-ctx.Done():
				c.logger.Info("context cancelled, stopping consumer")
				return
			}
		}
	}()

	return nil
}

func (c *Client) settle(msg amqp.Delivery, action deliveryAction) {
	var err error
	switch action {
	case actionAck:
		err = msg.Ack(false)
	case actionRequeue:
		err = msg.Nack(false, true)
	case actionDrop:
		err = msg.Nack(false, false)
	}
	if err != nil {
		c.logger.Error("failed to settle delivery", "action", action.String(), "error", err)
	}
}

type deliveryAction int

const (
	actionAck deliveryAction = iota
	actionRequeue
	actionDrop
)

func (a deliveryAction) String() string {
	switch a {
	case actionAck:
		return "ack"
	case actionRequeue:
		return "requeue"
	default:
		return "drop"
	}
}

// processDelivery decodes one message and runs handler on it. Malformed
// messages and jobs that can never succeed are dropped. A missing backend
// always requeues; other failures are retried once.
func processDelivery(
	ctx context.Context,
	body []byte,
	redelivered bool,
	handler func(context.Context, payloads.WorkoutExportPayload) error,
	logger *slog.Logger,
) deliveryAction {
	var payload payloads.WorkoutExportPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Error("dropping malformed export message", "error", err, "body", string(body))
		return actionDrop
	}

	err := handler(ctx, payload)
	switch {
	case err == nil:
		return actionAck
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrValidation):
		logger.Warn("dropping export job", "job_id", payload.JobID, "error", err)
		return actionDrop
	case errors.Is(err, domain.ErrUnavailable):
		logger.Error("export backend unavailable, requeueing", "job_id", payload.JobID, "error", err)
		return actionRequeue
	case redelivered:
		logger.Error("export job failed again, dropping", "job_id", payload.JobID, "error", err)
		return actionDrop
	default:
		logger.Error("export job failed, requeueing", "job_id", payload.JobID, "error", err)
		return actionRequeue
	}
}
