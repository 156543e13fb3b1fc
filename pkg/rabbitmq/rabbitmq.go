package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"userrecords/internal/models"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// UserEventsQueue is the durable queue user lifecycle events are sent to.
const UserEventsQueue = "user_events"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  logrus.FieldLogger
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the user events queue.
func NewClient(cfg Config, logger logrus.FieldLogger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.WithField("queue", UserEventsQueue).Info("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
		logger:  logger,
	}, nil
}

func declareQueue(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		UserEventsQueue, // name
		true,            // durable
		false,           // delete when unused
		false,           // exclusive
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", UserEventsQueue, err)
	}
	return nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors during RabbitMQ client close: %v", errs)
	}
	return nil
}

// PublishUserEvent publishes a persistent JSON message to the user events queue.
func (c *Client) PublishUserEvent(event models.UserEvent) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := EncodeUserEvent(event)
	if err != nil {
		return err
	}

	err = c.channel.Publish(
		"",              // default exchange
		UserEventsQueue, // routing key
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Type:         event.Type,
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	c.logger.WithFields(logrus.Fields{"event": event.Type, "user_id": event.UserID}).Debug("user event published")
	return nil
}

// ConsumeUserEvents registers a consumer on the user events queue and hands
// every decoded event to handler. Messages are acked when handler returns nil,
// nacked with requeue on handler errors and rejected when they cannot be decoded.
func (c *Client) ConsumeUserEvents(handler func(event models.UserEvent) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	if err := declareQueue(c.channel); err != nil {
		return err
	}

	msgs, err := c.channel.Consume(
		UserEventsQueue, // queue
		"",              // consumer tag
		false,           // auto-ack
		false,           // exclusive
		false,           // no-local
		false,           // no-wait
		nil,             // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			c.handleDelivery(msg, handler)
		}
	}()

	return nil
}

func (c *Client) handleDelivery(msg amqp.Delivery, handler func(event models.UserEvent) error) {
	log := c.logger.WithField("delivery_tag", msg.DeliveryTag)

	event, err := DecodeUserEvent(msg.Body)
	if err != nil {
		log.WithError(err).Error("dropping undecodable user event")
		if rejectErr := msg.Reject(false); rejectErr != nil {
			log.WithError(rejectErr).Error("failed to reject message")
		}
		return
	}

	if err := handler(event); err != nil {
		log.WithError(err).Error("failed to process user event")
		if nackErr := msg.Nack(false, true); nackErr != nil {
			log.WithError(nackErr).Error("failed to nack message")
		}
		return
	}

	if ackErr := msg.Ack(false); ackErr != nil {
		log.WithError(ackErr).Error("failed to ack message")
	}
}

// EncodeUserEvent marshals an event to its wire form.
func EncodeUserEvent(event models.UserEvent) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user event: %w", err)
	}
	return body, nil
}

// DecodeUserEvent parses a message body produced by EncodeUserEvent.
func DecodeUserEvent(body []byte) (models.UserEvent, error) {
	var event models.UserEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return models.UserEvent{}, fmt.Errorf("failed to unmarshal user event: %w", err)
	}
	if event.Type == "" {
		return models.UserEvent{}, fmt.Errorf("user event has no type")
	}
	return event, nil
}

// LogUserEvent returns a consumer handler that logs each received event.
func LogUserEvent(logger logrus.FieldLogger) func(event models.UserEvent) error {
	return func(event models.UserEvent) error {
		logger.WithFields(logrus.Fields{
			"event":       event.Type,
			"user_id":     event.UserID,
			"occurred_at": event.OccurredAt.Format(time.RFC3339),
		}).Info("received user event")
		return nil
	}
}
