package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	// ErrPublisherClosed возвращается после Close
	ErrPublisherClosed = errors.New("events: publisher closed")
	// ErrPublish ошибка публикации события
	ErrPublish = errors.New("events: publish failed")
)

// DefaultExchange topic exchange для событий сервиса
const DefaultExchange = "scheduling.events"

// Publisher публикует события в topic exchange
// amqp.Channel не потокобезопасен, поэтому публикации сериализуются мьютексом
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	timeout  time.Duration
}

// NewPublisher подключается к брокеру и объявляет exchange
func NewPublisher(url, exchange string, timeout time.Duration) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("events: open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("events: declare exchange: %w", err)
	}

	return &Publisher{conn: conn, channel: ch, exchange: exchange, timeout: timeout}, nil
}

// AppointmentBooked публикует событие о новой записи
func (p *Publisher) AppointmentBooked(ctx context.Context, event AppointmentBooked) error {
	return p.publish(ctx, RoutingAppointmentBooked, event)
}

// AppointmentStatusChanged публикует событие о смене статуса
func (p *Publisher) AppointmentStatusChanged(ctx context.Context, event AppointmentStatusChanged) error {
	return p.publish(ctx, RoutingAppointmentStatusChanged, event)
}

func (p *Publisher) publish(ctx context.Context, routingKey string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", ErrPublish, routingKey, err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		return ErrPublisherClosed
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPublish, routingKey, err)
	}
	return nil
}

// Close закрывает канал и соединение
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		return nil
	}
	chErr := p.channel.Close()
	connErr := p.conn.Close()
	p.channel = nil
	p.conn = nil
	return errors.Join(chErr, connErr)
}
