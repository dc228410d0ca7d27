package trip

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"fleetbooking/internal/api"
	"fleetbooking/internal/booking"
)

type Handlers struct {
	Trips *Service
	Log   *zap.Logger
}

func (h Handlers) Today(w http.ResponseWriter, r *http.Request) {
	items, err := h.Trips.ListToday(r.Context())
	if err != nil {
		h.fail(w, "list today's trips", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"date": h.Trips.Cal.Today(), "items": items})
}

func (h Handlers) Start(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, "start trip", h.Trips.Start)
}

func (h Handlers) Complete(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, "complete trip", h.Trips.Complete)
}

type transitionFunc func(ctx context.Context, id, actor string) (*booking.Booking, error)

func (h Handlers) move(w http.ResponseWriter, r *http.Request, op string, fn transitionFunc) {
	id := booking.NormalizeID(chi.URLParam(r, "id"))
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	var actor string
	if u := api.UserFromContext(r.Context()); u != nil {
		actor = u.ID
	}

	b, err := fn(r.Context(), id, actor)
	if err != nil {
		h.fail(w, op, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"booking": b})
}

func (h Handlers) fail(w http.ResponseWriter, op string, err error) {
	if h.Log != nil {
		h.Log.Info(op+" failed", zap.Error(err))
	}
	booking.WriteError(w, err)
}
