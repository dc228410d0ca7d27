package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Azure/go-amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fleetbooking/internal/events"
)

type fakeSender struct {
	sent   []*amqp.Message
	fail   error
	closed int
}

func (f *fakeSender) Send(_ context.Context, msg *amqp.Message, _ *amqp.SendOptions) error {
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) Close(context.Context) error {
	f.closed++
	return nil
}

func newTestPublisher(senders ...*fakeSender) (*Publisher, *int) {
	opened := 0
	p := &Publisher{address: "/queues/bookings", log: zap.NewNop(), timeout: time.Second}
	p.open = func(context.Context) (sender, func(context.Context) error, error) {
		if opened >= len(senders) {
			return nil, nil, errors.New("no more senders")
		}
		s := senders[opened]
		opened++
		return s, func(context.Context) error { return nil }, nil
	}
	return p, &opened
}

func TestPublish_EncodesEvent(t *testing.T) {
	fs := &fakeSender{}
	p, opened := newTestPublisher(fs)

	at := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	err := p.Publish(context.Background(), events.Event{
		ID:         "000001-abcd",
		BookingID:  "1741593600000-deadbeef",
		Type:       events.TypeApproved,
		Summary:    "Booking approved",
		Actor:      "u-admin",
		OccurredAt: at,
	})
	require.NoError(t, err)
	require.Len(t, fs.sent, 1)
	assert.Equal(t, 1, *opened)

	msg := fs.sent[0]
	require.NotNil(t, msg.Properties)
	assert.Equal(t, "application/json", *msg.Properties.ContentType)
	assert.Equal(t, "BOOKING_APPROVED", *msg.Properties.Subject)
	assert.Equal(t, "1741593600000-deadbeef", msg.ApplicationProperties["bookingId"])

	var body Message
	require.NoError(t, json.Unmarshal(msg.GetData(), &body))
	assert.Equal(t, events.TypeApproved, body.Type)
	assert.Equal(t, "u-admin", body.Actor)
	assert.True(t, body.OccurredAt.Equal(at))
}

func TestPublish_ReopensAfterFailure(t *testing.T) {
	broken := &fakeSender{fail: errors.New("link detached")}
	healthy := &fakeSender{}
	p, opened := newTestPublisher(broken, healthy)
	ctx := context.Background()

	err := p.Publish(ctx, events.Event{BookingID: "b1", Type: events.TypeSubmitted})
	require.Error(t, err)
	assert.Equal(t, 1, broken.closed)

	require.NoError(t, p.Publish(ctx, events.Event{BookingID: "b1", Type: events.TypeCancelled}))
	assert.Equal(t, 2, *opened)
	assert.Len(t, healthy.sent, 1)

	require.NoError(t, p.Publish(ctx, events.Event{BookingID: "b2", Type: events.TypeSubmitted}))
	assert.Equal(t, 2, *opened)
	assert.Len(t, healthy.sent, 2)
}
