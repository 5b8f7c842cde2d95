package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DefaultExchange is the topic exchange quiz events are published to.
const DefaultExchange = "mandela.events"

// Publisher publishes quiz activity.
type Publisher interface {
	PublishSession(ctx context.Context, event *SessionEvent) error
	PublishAnswer(ctx context.Context, event *AnswerEvent) error
	Close() error
}

// EventPublisher publishes to a RabbitMQ topic exchange.
type EventPublisher struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	enabled      bool
	log          *zap.Logger
}

// NewEventPublisher connects to url and declares the exchange. An empty url
// yields a disabled publisher that drops every event.
func NewEventPublisher(url, exchange string, log *zap.Logger) (*EventPublisher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if url == "" {
		log.Info("AMQP url is empty, event publishing is disabled")
		return &EventPublisher{enabled: false, log: log}, nil
	}
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to amqp: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &EventPublisher{
		conn:         conn,
		channel:      channel,
		exchangeName: exchange,
		enabled:      true,
		log:          log,
	}, nil
}

// Enabled reports whether events are actually sent.
func (p *EventPublisher) Enabled() bool { return p.enabled }

func (p *EventPublisher) publish(ctx context.Context, routingKey EventType, event any) error {
	if !p.enabled {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		pubCtx,
		p.exchangeName,     // exchange
		string(routingKey), // routing key
		false,              // mandatory
		false,              // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	p.log.Debug("published event", zap.String("routing_key", string(routingKey)))
	return nil
}

// PublishSession publishes a session lifecycle event.
func (p *EventPublisher) PublishSession(ctx context.Context, event *SessionEvent) error {
	return p.publish(ctx, event.Type, event)
}

// PublishAnswer publishes an answer event.
func (p *EventPublisher) PublishAnswer(ctx context.Context, event *AnswerEvent) error {
	return p.publish(ctx, event.Type, event)
}

// Close closes the channel and then the connection.
func (p *EventPublisher) Close() error {
	if !p.enabled {
		return nil
	}

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.log.Warn("close amqp channel", zap.Error(err))
		}
	}

	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("close amqp connection: %w", err)
		}
	}

	return nil
}
