package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"fleetbooking/internal/events"
)

// Recorder receives timeline events for booking mutations.
type Recorder interface {
	Record(ctx context.Context, e events.Event)
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, events.Event) {}

// Service implements the requester side of the booking lifecycle: submit, edit, cancel.
type Service struct {
	Repo   *Repository
	Cal    Calendar
	Events Recorder

	// NewID generates booking ids. Defaults to "<unix millis>-<8 hex>".
	NewID func() string
}

func NewService(repo *Repository, cal Calendar, rec Recorder) *Service {
	if rec == nil {
		rec = nopRecorder{}
	}
	s := &Service{Repo: repo, Cal: cal, Events: rec}
	s.NewID = func() string {
		return fmt.Sprintf("%d-%s", s.Cal.now().UnixMilli(), uuid.NewString()[:8])
	}
	return s
}

func (s *Service) Create(ctx context.Context, req Requester, in Input) (*Booking, error) {
	in.Destination = strings.TrimSpace(in.Destination)
	in.OtherPurpose = strings.TrimSpace(in.OtherPurpose)
	if in.Purpose != PurposeOther {
		in.OtherPurpose = ""
	}
	if err := Validate(in, s.Cal); err != nil {
		return nil, err
	}

	now := s.Cal.now()
	b := &Booking{
		ID:           s.NewID(),
		UserID:       req.UserID,
		EmployeeName: req.Name,
		Department:   req.Department,
		Email:        req.Email,
		Phone:        req.Phone,
		Date:         in.Date,
		Time:         in.Time,
		Destination:  in.Destination,
		Passengers:   in.Passengers,
		VehicleType:  in.VehicleType,
		Purpose:      in.Purpose,
		OtherPurpose: in.OtherPurpose,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Insert(ctx, b); err != nil {
		return nil, err
	}

	s.Events.Record(ctx, events.Event{
		BookingID:  b.ID,
		Type:       events.TypeSubmitted,
		Summary:    "Booking submitted",
		Actor:      req.UserID,
		OccurredAt: now,
		Data:       map[string]any{"date": b.Date, "time": b.Time, "vehicleType": b.VehicleType, "passengers": b.Passengers},
	})
	return b, nil
}

func (s *Service) Update(ctx context.Context, id string, p Patch, actor string) (*Booking, error) {
	b, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusPending {
		return nil, ErrNotPending
	}

	in := p.apply(b.input())
	in.Destination = strings.TrimSpace(in.Destination)
	in.OtherPurpose = strings.TrimSpace(in.OtherPurpose)
	if in.Purpose != PurposeOther {
		in.OtherPurpose = ""
	}
	if err := Validate(in, s.Cal); err != nil {
		return nil, err
	}

	b.Date = in.Date
	b.Time = in.Time
	b.Destination = in.Destination
	b.Passengers = in.Passengers
	b.VehicleType = in.VehicleType
	b.Purpose = in.Purpose
	b.OtherPurpose = in.OtherPurpose
	b.UpdatedAt = s.Cal.now()
	if err := s.Repo.Update(ctx, b); err != nil {
		return nil, err
	}

	s.Events.Record(ctx, events.Event{BookingID: b.ID, Type: events.TypeUpdated, Summary: "Booking edited", Actor: actor, OccurredAt: b.UpdatedAt})
	return b, nil
}

func (s *Service) Cancel(ctx context.Context, id string, actor string) (*Booking, error) {
	b, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, StatusCancelled) {
		return nil, ErrNotPending
	}

	b.Status = StatusCancelled
	b.UpdatedAt = s.Cal.now()
	if err := s.Repo.Update(ctx, b); err != nil {
		return nil, err
	}

	s.Events.Record(ctx, events.Event{BookingID: b.ID, Type: events.TypeCancelled, Summary: "Booking cancelled", Actor: actor, OccurredAt: b.UpdatedAt})
	return b, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Booking, error) {
	return s.Repo.Get(ctx, id)
}

// List returns all bookings, newest submission first.
func (s *Service) List(ctx context.Context) ([]Booking, error) {
	all, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	SortNewestFirst(all)
	return all, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Booking, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, b := range all {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

// SortNewestFirst orders by creation time descending, id descending on ties.
func SortNewestFirst(bs []Booking) {
	sort.SliceStable(bs, func(i, j int) bool {
		if !bs[i].CreatedAt.Equal(bs[j].CreatedAt) {
			return bs[i].CreatedAt.After(bs[j].CreatedAt)
		}
		return bs[i].ID > bs[j].ID
	})
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
