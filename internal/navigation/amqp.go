package navigation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ashendes/food-details/internal/metrics"
	"github.com/ashendes/food-details/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// AMQPHost publishes navigation signals to a RabbitMQ topic exchange.
// The routing key is "navigate.<route>" in lower case.
type AMQPHost struct {
	url      string
	exchange string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQPHost connects to the broker and declares the exchange
func NewAMQPHost(url, exchange string) (*AMQPHost, error) {
	h := &AMQPHost{
		url:      url,
		exchange: exchange,
	}
	if err := h.connect(); err != nil {
		return nil, err
	}
	return h, nil
}

// Navigate publishes the signal as JSON
func (h *AMQPHost) Navigate(ctx context.Context, signal models.NavigationSignal) error {
	if signal.Route == "" {
		metrics.NavigationSignalsTotal.WithLabelValues("amqp", "", "rejected").Inc()
		return ErrEmptyRoute
	}

	body, err := json.Marshal(signal)
	if err != nil {
		return fmt.Errorf("failed to marshal signal: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ensureChannelLocked(); err != nil {
		metrics.NavigationSignalsTotal.WithLabelValues("amqp", signal.Route, "failed").Inc()
		return fmt.Errorf("failed to reconnect: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = h.channel.PublishWithContext(
		ctx,
		h.exchange,
		RoutingKey(signal.Route),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Transient,
			Timestamp:    signal.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		metrics.NavigationSignalsTotal.WithLabelValues("amqp", signal.Route, "failed").Inc()
		return fmt.Errorf("failed to publish signal: %w", err)
	}

	log.WithFields(log.Fields{
		"exchange":    h.exchange,
		"routing_key": RoutingKey(signal.Route),
		"session_id":  signal.SessionID,
	}).Debug("Navigation signal published")

	metrics.NavigationSignalsTotal.WithLabelValues("amqp", signal.Route, "delivered").Inc()
	return nil
}

// Close closes the channel and the connection
func (h *AMQPHost) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.channel != nil {
		_ = h.channel.Close()
	}
	if h.conn != nil && !h.conn.IsClosed() {
		return h.conn.Close()
	}
	return nil
}

// RoutingKey returns the routing key used for a route
func RoutingKey(route string) string {
	return "navigate." + strings.ToLower(route)
}

func (h *AMQPHost) connect() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connectLocked()
}

// ensureChannelLocked redials a closed connection and reopens a closed channel
func (h *AMQPHost) ensureChannelLocked() error {
	if h.conn == nil || h.conn.IsClosed() {
		return h.connectLocked()
	}
	if h.channel != nil && !h.channel.IsClosed() {
		return nil
	}

	channel, err := h.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	if err := declareExchange(channel, h.exchange); err != nil {
		channel.Close()
		return err
	}

	log.WithField("exchange", h.exchange).Info("Navigation channel reopened")
	h.channel = channel
	return nil
}

func (h *AMQPHost) connectLocked() error {
	conn, err := amqp.Dial(h.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareExchange(channel, h.exchange); err != nil {
		channel.Close()
		conn.Close()
		return err
	}

	h.conn = conn
	h.channel = channel
	return nil
}

func declareExchange(channel *amqp.Channel, exchange string) error {
	err := channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", exchange, err)
	}
	return nil
}
