// Package notify forwards booking timeline events to RabbitMQ over AMQP 1.0.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Azure/go-amqp"
	"go.uber.org/zap"

	"fleetbooking/internal/events"
)

const DefaultMaxRetries = 5

// Connect dials the broker, backing off quadratically between attempts.
func Connect(ctx context.Context, url string, maxRetries int, log *zap.Logger) (*amqp.Conn, error) {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		c, err := amqp.Dial(dialCtx, url, &amqp.ConnOptions{
			IdleTimeout: 30 * time.Second,
		})
		cancel()
		if err == nil {
			log.Info("connected to amqp broker")
			return c, nil
		}

		lastErr = err
		log.Info("amqp broker not yet ready", zap.Int("attempt", attempt), zap.Error(err))
		if attempt == maxRetries {
			break
		}
		backOff := time.Duration(math.Pow(float64(attempt), 2)) * time.Second
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backOff):
		}
	}
	return nil, fmt.Errorf("amqp dial: %w", lastErr)
}

type sender interface {
	Send(ctx context.Context, msg *amqp.Message, opts *amqp.SendOptions) error
	Close(ctx context.Context) error
}

// Publisher keeps one session and sender open on the booking address and reopens them after a failed send.
type Publisher struct {
	address string
	log     *zap.Logger
	timeout time.Duration

	open func(ctx context.Context) (sender, func(context.Context) error, error)

	mu      sync.Mutex
	snd     sender
	closeFn func(context.Context) error
}

func NewPublisher(conn *amqp.Conn, address string, log *zap.Logger) *Publisher {
	p := &Publisher{address: address, log: log, timeout: 5 * time.Second}
	p.open = func(ctx context.Context) (sender, func(context.Context) error, error) {
		session, err := conn.NewSession(ctx, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("amqp session: %w", err)
		}
		s, err := session.NewSender(ctx, address, nil)
		if err != nil {
			_ = session.Close(ctx)
			return nil, nil, fmt.Errorf("amqp sender: %w", err)
		}
		return s, session.Close, nil
	}
	return p
}

// Message is the JSON body published for each event.
type Message struct {
	EventID    string         `json:"eventId"`
	BookingID  string         `json:"bookingId"`
	Type       events.Type    `json:"eventType"`
	Summary    string         `json:"summary"`
	Actor      string         `json:"actor"`
	OccurredAt time.Time      `json:"occurredAt"`
	Data       map[string]any `json:"data,omitempty"`
}

func newMessage(e events.Event) (*amqp.Message, error) {
	body, err := json.Marshal(Message{
		EventID:    e.ID,
		BookingID:  e.BookingID,
		Type:       e.Type,
		Summary:    e.Summary,
		Actor:      e.Actor,
		OccurredAt: e.OccurredAt,
		Data:       e.Data,
	})
	if err != nil {
		return nil, err
	}
	ct := "application/json"
	subject := string(e.Type)
	msgID := any(e.ID)
	return &amqp.Message{
		Data: [][]byte{body},
		Properties: &amqp.MessageProperties{
			MessageID:   msgID,
			ContentType: &ct,
			Subject:     &subject,
		},
		ApplicationProperties: map[string]any{
			"bookingId": e.BookingID,
		},
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, e events.Event) error {
	msg, err := newMessage(e)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.snd == nil {
		s, closeFn, err := p.open(ctx)
		if err != nil {
			return err
		}
		p.snd, p.closeFn = s, closeFn
	}

	if err := p.snd.Send(ctx, msg, nil); err != nil {
		p.reset(ctx)
		return fmt.Errorf("amqp send %s: %w", p.address, err)
	}
	p.log.Debug("published booking event",
		zap.String("booking_id", e.BookingID), zap.String("event_type", string(e.Type)))
	return nil
}

// Close releases the sender and its session.
func (p *Publisher) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset(ctx)
	return nil
}

func (p *Publisher) reset(ctx context.Context) {
	if p.snd != nil {
		_ = p.snd.Close(ctx)
	}
	if p.closeFn != nil {
		_ = p.closeFn(ctx)
	}
	p.snd, p.closeFn = nil, nil
}

var _ events.Publisher = (*Publisher)(nil)
