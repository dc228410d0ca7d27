// Package report aggregates bookings for the admin reports screen and its exports.
package report

import (
	"context"
	"strings"
	"time"

	"fleetbooking/internal/booking"
)

// Filter narrows the report population. Search is a case-insensitive substring over employee name,
// department and destination. From/To bound the booking date inclusively (YYYY-MM-DD, empty = open).
type Filter struct {
	Search string
	Status booking.Status
	From   string
	To     string
}

func (f Filter) match(b *booking.Booking) bool {
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.From != "" && b.Date < f.From {
		return false
	}
	if f.To != "" && b.Date > f.To {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(b.EmployeeName), q) ||
		strings.Contains(strings.ToLower(b.Department), q) ||
		strings.Contains(strings.ToLower(b.Destination), q)
}

type Summary struct {
	GeneratedAt   time.Time `json:"generatedAt"`
	Total         int       `json:"total"`
	ByStatus      []Share   `json:"byStatus"`
	ByDepartment  []Share   `json:"byDepartment"`
	ByVehicleType []Share   `json:"byVehicleType"`
}

// Summarize groups bookings by status, department and vehicle type.
func Summarize(bs []booking.Booking, at time.Time) Summary {
	status := map[string]int{}
	dept := map[string]int{}
	vehicle := map[string]int{}
	for _, b := range bs {
		status[string(b.Status)]++
		d := b.Department
		if d == "" {
			d = "Unassigned"
		}
		dept[d]++
		vehicle[string(b.VehicleType)]++
	}
	return Summary{
		GeneratedAt:   at,
		Total:         len(bs),
		ByStatus:      Shares(status, DefaultScale),
		ByDepartment:  Shares(dept, DefaultScale),
		ByVehicleType: Shares(vehicle, DefaultScale),
	}
}

// Source lists every booking, newest first.
type Source interface {
	List(ctx context.Context) ([]booking.Booking, error)
}

type Service struct {
	Source Source
	Cal    booking.Calendar
}

func (s *Service) Bookings(ctx context.Context, f Filter) ([]booking.Booking, error) {
	all, err := s.Source.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]booking.Booking, 0, len(all))
	for i := range all {
		if f.match(&all[i]) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (s *Service) Summary(ctx context.Context, f Filter) (Summary, error) {
	bs, err := s.Bookings(ctx, f)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(bs, s.Cal.CurrentTime()), nil
}
