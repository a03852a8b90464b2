// Package events publishes domain events to a RabbitMQ topic exchange.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const DefaultExchange = "shoppyglobe.events"

var ErrClosed = errors.New("publisher closed")

type Envelope struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// Publisher is safe for concurrent use. A nil *Publisher drops every event,
// so callers can run without a broker.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	closed   bool
}

// NewPublisher dials url and declares exchange as a durable topic
// exchange. An empty url returns a nil publisher and no error.
func NewPublisher(url, exchange string) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}
	if exchange == "" {
		exchange = DefaultExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Publisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *Publisher) Publish(ctx context.Context, routingKey string, payload any) error {
	if p == nil {
		return nil
	}
	body, err := Encode(routingKey, payload, time.Now())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	log.Debug().Str("exchange", p.exchange).Str("rk", routingKey).Msg("publish event")
	return p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return errors.Join(p.channel.Close(), p.conn.Close())
}

// Encode wraps payload in the JSON envelope every event is sent as.
func Encode(eventType string, payload any, at time.Time) ([]byte, error) {
	body, err := json.Marshal(Envelope{Type: eventType, Timestamp: at.UTC(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", eventType, err)
	}
	return body, nil
}
