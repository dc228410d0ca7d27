// Package events keeps the per-booking timeline and forwards each entry to a Publisher.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleetbooking/internal/store"
)

type Type string

const (
	TypeSubmitted Type = "BOOKING_SUBMITTED"
	TypeUpdated   Type = "BOOKING_UPDATED"
	TypeCancelled Type = "BOOKING_CANCELLED"
	TypeApproved  Type = "BOOKING_APPROVED"
	TypeDenied    Type = "BOOKING_DENIED"
	TypeStarted   Type = "TRIP_STARTED"
	TypeCompleted Type = "TRIP_COMPLETED"
)

const KeyPrefix = "event:"

type Event struct {
	ID         string         `json:"id"`
	BookingID  string         `json:"bookingId"`
	Type       Type           `json:"eventType"`
	Summary    string         `json:"summary"`
	Actor      string         `json:"actor"`
	OccurredAt time.Time      `json:"occurredAt"`
	Data       map[string]any `json:"data,omitempty"`
}

// Publisher forwards events outside the process (message broker, webhooks).
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Log appends events to the record store and publishes them. Both steps are best effort:
// a booking mutation that already landed is never failed because its event could not be kept.
type Log struct {
	store store.Store
	pub   Publisher
	log   *zap.Logger
	now   func() time.Time
}

func NewLog(st store.Store, pub Publisher, log *zap.Logger) *Log {
	if pub == nil {
		pub = NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Log{store: st, pub: pub, log: log, now: time.Now}
}

// WithClock sets the clock that stamps events recorded without OccurredAt.
func (l *Log) WithClock(now func() time.Time) *Log {
	if now != nil {
		l.now = now
	}
	return l
}

func (l *Log) Record(ctx context.Context, e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = l.now()
	}
	e.ID = fmt.Sprintf("%020d-%s", e.OccurredAt.UnixNano(), uuid.NewString()[:8])

	raw, err := json.Marshal(e)
	if err == nil {
		_, err = l.store.Set(ctx, key(e.BookingID, e.ID), raw)
	}
	if err != nil {
		l.log.Warn("event append failed",
			zap.String("booking_id", e.BookingID), zap.String("event_type", string(e.Type)), zap.Error(err))
	}

	if err := l.pub.Publish(ctx, e); err != nil {
		l.log.Warn("event publish failed",
			zap.String("booking_id", e.BookingID), zap.String("event_type", string(e.Type)), zap.Error(err))
	}
}

// ListByBooking returns the booking's timeline, oldest first.
func (l *Log) ListByBooking(ctx context.Context, bookingID string) ([]Event, error) {
	recs, err := l.store.GetByPrefix(ctx, KeyPrefix+bookingID+":")
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0, len(recs))
	for _, rec := range recs {
		var e Event
		if err := json.Unmarshal(rec.Value, &e); err != nil {
			l.log.Warn("skipping event record", zap.String("key", rec.Key), zap.Error(err))
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.Before(out[j].OccurredAt)
		}
		return strings.Compare(out[i].ID, out[j].ID) < 0
	})
	return out, nil
}

func key(bookingID, eventID string) string {
	return KeyPrefix + bookingID + ":" + eventID
}
