// Package trip drives the day-of-travel sub-state of approved bookings: upcoming, in-progress, completed.
package trip

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"fleetbooking/internal/booking"
	"fleetbooking/internal/events"
)

// TransitionObserver counts start/complete outcomes.
type TransitionObserver interface {
	ObserveTrip(action, outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveTrip(string, string) {}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, events.Event) {}

type Service struct {
	Repo    *booking.Repository
	Cal     booking.Calendar
	Events  booking.Recorder
	Metrics TransitionObserver
	Log     *zap.Logger
}

func NewService(repo *booking.Repository, cal booking.Calendar, rec booking.Recorder, obs TransitionObserver, log *zap.Logger) *Service {
	if rec == nil {
		rec = nopRecorder{}
	}
	if obs == nil {
		obs = nopObserver{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Repo: repo, Cal: cal, Events: rec, Metrics: obs, Log: log}
}

// ListToday returns approved bookings scheduled for today with an unset trip status reported as upcoming.
// In-progress trips come first, then upcoming by departure time, then completed.
func (s *Service) ListToday(ctx context.Context) ([]booking.Booking, error) {
	all, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	today := s.Cal.Today()
	out := make([]booking.Booking, 0)
	for _, b := range all {
		if b.Status != booking.StatusApproved || b.Date != today {
			continue
		}
		b.TripStatus = b.EffectiveTripStatus()
		out = append(out, b)
	}
	Sort(out)
	return out, nil
}

var rank = map[booking.TripStatus]int{
	booking.TripInProgress: 0,
	booking.TripUpcoming:   1,
	booking.TripCompleted:  2,
}

// Sort orders trips for the driver view.
func Sort(bs []booking.Booking) {
	sort.SliceStable(bs, func(i, j int) bool {
		ri, rj := rank[bs[i].EffectiveTripStatus()], rank[bs[j].EffectiveTripStatus()]
		if ri != rj {
			return ri < rj
		}
		if bs[i].Time != bs[j].Time {
			return bs[i].Time < bs[j].Time
		}
		return bs[i].ID < bs[j].ID
	})
}

func (s *Service) Start(ctx context.Context, id, actor string) (*booking.Booking, error) {
	b, err := s.transition(ctx, id, actor, booking.TripInProgress)
	s.Metrics.ObserveTrip("start", outcome(err))
	return b, err
}

func (s *Service) Complete(ctx context.Context, id, actor string) (*booking.Booking, error) {
	b, err := s.transition(ctx, id, actor, booking.TripCompleted)
	s.Metrics.ObserveTrip("complete", outcome(err))
	return b, err
}

func (s *Service) transition(ctx context.Context, id, actor string, next booking.TripStatus) (*booking.Booking, error) {
	b, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != booking.StatusApproved || !booking.CanTransitionTrip(b.TripStatus, next) {
		return nil, booking.ErrInvalidState
	}
	// Only today's trips can be started. Completing is allowed past midnight.
	if next == booking.TripInProgress && b.Date != s.Cal.Today() {
		return nil, booking.ErrInvalidState
	}

	b.TripStatus = next
	now := s.Cal.CurrentTime()
	b.UpdatedAt = now
	if err := s.Repo.Update(ctx, b); err != nil {
		return nil, err
	}

	e := events.Event{BookingID: b.ID, Actor: actor, OccurredAt: now, Data: map[string]any{"destination": b.Destination}}
	if next == booking.TripInProgress {
		e.Type, e.Summary = events.TypeStarted, "Trip started"
	} else {
		e.Type, e.Summary = events.TypeCompleted, "Trip completed"
	}
	s.Events.Record(ctx, e)
	return b, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, booking.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, booking.ErrNotFound):
		return "not_found"
	case errors.Is(err, booking.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
