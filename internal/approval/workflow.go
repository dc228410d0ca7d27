// Package approval is the administrator side of the booking lifecycle: the pending queue, single and bulk
// decisions, and the dashboard counters.
package approval

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fleetbooking/internal/booking"
	"fleetbooking/internal/events"
)

const DefaultBulkLimit = 8

// DecisionObserver counts decision outcomes.
type DecisionObserver interface {
	ObserveDecision(action, outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveDecision(string, string) {}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, events.Event) {}

type Workflow struct {
	Repo    *booking.Repository
	Cal     booking.Calendar
	Events  booking.Recorder
	Metrics DecisionObserver
	Log     *zap.Logger

	// BulkLimit bounds concurrent writes in BulkApprove/BulkDeny.
	BulkLimit int
}

func NewWorkflow(repo *booking.Repository, cal booking.Calendar, rec booking.Recorder, obs DecisionObserver, log *zap.Logger) *Workflow {
	if rec == nil {
		rec = nopRecorder{}
	}
	if obs == nil {
		obs = nopObserver{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Workflow{Repo: repo, Cal: cal, Events: rec, Metrics: obs, Log: log, BulkLimit: DefaultBulkLimit}
}

// Filter narrows queue listings. Search is a case-insensitive substring over employee name, destination
// and department. Department is an exact match; empty means all.
type Filter struct {
	Search     string
	Department string
}

func (f Filter) match(b *booking.Booking) bool {
	if f.Department != "" && b.Department != f.Department {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(b.EmployeeName), q) ||
		strings.Contains(strings.ToLower(b.Destination), q) ||
		strings.Contains(strings.ToLower(b.Department), q)
}

// ListPending returns pending bookings matching f, newest submission first.
func (w *Workflow) ListPending(ctx context.Context, f Filter) ([]booking.Booking, error) {
	return w.list(ctx, func(b *booking.Booking) bool {
		return b.Status == booking.StatusPending && f.match(b)
	})
}

// ListPast returns bookings of any status whose date is before today, newest submission first.
func (w *Workflow) ListPast(ctx context.Context, f Filter) ([]booking.Booking, error) {
	return w.list(ctx, func(b *booking.Booking) bool {
		return w.Cal.BeforeToday(b.Date) && f.match(b)
	})
}

// Departments lists the distinct departments of pending bookings, sorted.
func (w *Workflow) Departments(ctx context.Context) ([]string, error) {
	pending, err := w.ListPending(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(pending))
	out := make([]string, 0, len(pending))
	for _, b := range pending {
		if _, ok := seen[b.Department]; ok || b.Department == "" {
			continue
		}
		seen[b.Department] = struct{}{}
		out = append(out, b.Department)
	}
	sort.Strings(out)
	return out, nil
}

func (w *Workflow) list(ctx context.Context, keep func(*booking.Booking) bool) ([]booking.Booking, error) {
	all, err := w.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]booking.Booking, 0, len(all))
	for i := range all {
		if keep(&all[i]) {
			out = append(out, all[i])
		}
	}
	booking.SortNewestFirst(out)
	return out, nil
}

type Tally struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Denied    int `json:"denied"`
	Cancelled int `json:"cancelled"`
}

func (t *Tally) add(s booking.Status) {
	t.Total++
	switch s {
	case booking.StatusPending:
		t.Pending++
	case booking.StatusApproved:
		t.Approved++
	case booking.StatusDenied:
		t.Denied++
	case booking.StatusCancelled:
		t.Cancelled++
	}
}

// Counts splits bookings into live (date today or later) and past tallies.
type Counts struct {
	Tally
	Past Tally `json:"past"`
}

func (w *Workflow) Counts(ctx context.Context) (Counts, error) {
	all, err := w.Repo.List(ctx)
	if err != nil {
		return Counts{}, err
	}
	var c Counts
	for i := range all {
		if w.Cal.BeforeToday(all[i].Date) {
			c.Past.add(all[i].Status)
			continue
		}
		c.add(all[i].Status)
	}
	return c, nil
}

func (w *Workflow) Approve(ctx context.Context, id, actor string) (*booking.Booking, error) {
	b, err := w.decide(ctx, id, actor, booking.StatusApproved, "")
	w.Metrics.ObserveDecision("approve", outcome(err))
	return b, err
}

// Deny rejects a pending booking. reason may be empty.
func (w *Workflow) Deny(ctx context.Context, id, reason, actor string) (*booking.Booking, error) {
	b, err := w.decide(ctx, id, actor, booking.StatusDenied, strings.TrimSpace(reason))
	w.Metrics.ObserveDecision("deny", outcome(err))
	return b, err
}

func (w *Workflow) decide(ctx context.Context, id, actor string, next booking.Status, reason string) (*booking.Booking, error) {
	b, err := w.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.CanTransition(b.Status, next) {
		if b.Status == booking.StatusApproved || b.Status == booking.StatusDenied {
			return nil, booking.ErrAlreadyDecided
		}
		return nil, booking.ErrNotPending
	}
	if w.Cal.IsPast(b) {
		return nil, booking.ErrPastDate
	}

	now := w.Cal.CurrentTime()
	b.Status = next
	b.DecidedBy = actor
	b.DecidedAt = &now
	b.UpdatedAt = now
	if next == booking.StatusDenied {
		b.DenialReason = reason
	}
	if err := w.Repo.Update(ctx, b); err != nil {
		return nil, err
	}

	e := events.Event{BookingID: b.ID, Actor: actor, OccurredAt: now}
	if next == booking.StatusApproved {
		e.Type = events.TypeApproved
		e.Summary = "Booking approved"
	} else {
		e.Type = events.TypeDenied
		e.Summary = "Booking denied"
		if reason != "" {
			e.Data = map[string]any{"reason": reason}
		}
	}
	w.Events.Record(ctx, e)
	return b, nil
}

// BulkResult reports per-id outcomes of a bulk decision. Each list keeps the order of the request.
type BulkResult struct {
	ApprovedIDs         []string `json:"approvedIds,omitempty"`
	DeniedIDs           []string `json:"deniedIds,omitempty"`
	RejectedPastDateIDs []string `json:"rejectedPastDateIds"`
	FailedIDs           []string `json:"failedIds"`
}

func (w *Workflow) BulkApprove(ctx context.Context, ids []string, actor string) BulkResult {
	return w.bulk(ctx, ids, func(ctx context.Context, id string) error {
		_, err := w.Approve(ctx, id, actor)
		return err
	}, true)
}

func (w *Workflow) BulkDeny(ctx context.Context, ids []string, reason, actor string) BulkResult {
	return w.bulk(ctx, ids, func(ctx context.Context, id string) error {
		_, err := w.Deny(ctx, id, reason, actor)
		return err
	}, false)
}

// bulk applies fn to each distinct id independently. A failure never stops the other ids and nothing is
// rolled back.
func (w *Workflow) bulk(ctx context.Context, ids []string, fn func(context.Context, string) error, approve bool) BulkResult {
	ids = dedupe(ids)
	errs := make([]error, len(ids))

	limit := w.BulkLimit
	if limit <= 0 {
		limit = DefaultBulkLimit
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, id := range ids {
		g.Go(func() error {
			errs[i] = fn(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	res := BulkResult{RejectedPastDateIDs: []string{}, FailedIDs: []string{}}
	if approve {
		res.ApprovedIDs = []string{}
	} else {
		res.DeniedIDs = []string{}
	}
	for i, id := range ids {
		switch {
		case errs[i] == nil && approve:
			res.ApprovedIDs = append(res.ApprovedIDs, id)
		case errs[i] == nil:
			res.DeniedIDs = append(res.DeniedIDs, id)
		case errors.Is(errs[i], booking.ErrPastDate):
			res.RejectedPastDateIDs = append(res.RejectedPastDateIDs, id)
		default:
			w.Log.Info("bulk decision item failed", zap.String("booking_id", id), zap.Error(errs[i]))
			res.FailedIDs = append(res.FailedIDs, id)
		}
	}
	return res
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = booking.NormalizeID(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, booking.ErrPastDate):
		return "past_date"
	case errors.Is(err, booking.ErrNotFound):
		return "not_found"
	case errors.Is(err, booking.ErrAlreadyDecided), errors.Is(err, booking.ErrNotPending):
		return "not_pending"
	case errors.Is(err, booking.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
