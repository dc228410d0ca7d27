package booking

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"fleetbooking/internal/api"
	"fleetbooking/internal/events"
	"fleetbooking/internal/user"
)

// Timeline lists the recorded events of one booking.
type Timeline interface {
	ListByBooking(ctx context.Context, bookingID string) ([]events.Event, error)
}

type Handlers struct {
	Bookings *Service
	Timeline Timeline
	Log      *zap.Logger
}

type CreateRequest struct {
	Date         string `json:"date" validate:"required"`
	Time         string `json:"time" validate:"required"`
	Destination  string `json:"destination" validate:"required"`
	Passengers   int    `json:"passengers"`
	VehicleType  string `json:"vehicleType" validate:"required"`
	Purpose      string `json:"purpose" validate:"required"`
	OtherPurpose string `json:"otherPurpose"`
}

type UpdateRequest struct {
	Date         *string `json:"date"`
	Time         *string `json:"time"`
	Destination  *string `json:"destination"`
	Passengers   *int    `json:"passengers"`
	VehicleType  *string `json:"vehicleType"`
	Purpose      *string `json:"purpose"`
	OtherPurpose *string `json:"otherPurpose"`
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	u := api.UserFromContext(r.Context())
	if u == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing user identity")
		return
	}

	var req CreateRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	b, err := h.Bookings.Create(r.Context(), Requester{
		UserID:     u.ID,
		Name:       u.Name,
		Department: u.Department,
		Email:      u.Email,
		Phone:      u.Phone,
	}, Input{
		Date:         req.Date,
		Time:         req.Time,
		Destination:  req.Destination,
		Passengers:   req.Passengers,
		VehicleType:  VehicleType(req.VehicleType),
		Purpose:      Purpose(req.Purpose),
		OtherPurpose: req.OtherPurpose,
	})
	if err != nil {
		h.fail(w, "create booking", err)
		return
	}

	api.WriteJSON(w, http.StatusCreated, map[string]any{"booking": b})
}

// List returns every booking to admins and the caller's own bookings to everyone else.
func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	u := api.UserFromContext(r.Context())
	if u == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing user identity")
		return
	}
	if !u.HasRole(user.RoleAdmin) {
		h.Mine(w, r)
		return
	}

	items, err := h.Bookings.List(r.Context())
	if err != nil {
		h.fail(w, "list bookings", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Mine(w http.ResponseWriter, r *http.Request) {
	u := api.UserFromContext(r.Context())
	if u == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing user identity")
		return
	}

	items, err := h.Bookings.ListByUser(r.Context(), u.ID)
	if err != nil {
		h.fail(w, "list own bookings", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	b, ok := h.load(w, r)
	if !ok {
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"booking": b})
}

func (h Handlers) Update(w http.ResponseWriter, r *http.Request) {
	b, ok := h.load(w, r)
	if !ok {
		return
	}

	var req UpdateRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	p := Patch{
		Date:         req.Date,
		Time:         req.Time,
		Destination:  req.Destination,
		Passengers:   req.Passengers,
		OtherPurpose: req.OtherPurpose,
	}
	if req.VehicleType != nil {
		vt := VehicleType(*req.VehicleType)
		p.VehicleType = &vt
	}
	if req.Purpose != nil {
		pp := Purpose(*req.Purpose)
		p.Purpose = &pp
	}

	updated, err := h.Bookings.Update(r.Context(), b.ID, p, api.UserFromContext(r.Context()).ID)
	if err != nil {
		h.fail(w, "update booking", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"booking": updated})
}

func (h Handlers) Cancel(w http.ResponseWriter, r *http.Request) {
	b, ok := h.load(w, r)
	if !ok {
		return
	}

	updated, err := h.Bookings.Cancel(r.Context(), b.ID, api.UserFromContext(r.Context()).ID)
	if err != nil {
		h.fail(w, "cancel booking", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"booking": updated})
}

func (h Handlers) Events(w http.ResponseWriter, r *http.Request) {
	b, ok := h.load(w, r)
	if !ok {
		return
	}

	items, err := h.Timeline.ListByBooking(r.Context(), b.ID)
	if err != nil {
		h.logger().Error("list booking events", zap.String("booking_id", b.ID), zap.Error(err))
		api.WriteError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "record store unavailable")
		return
	}
	if items == nil {
		items = []events.Event{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

// load fetches the {id} booking and enforces owner-or-admin access. Other users' bookings are reported as
// not found.
func (h Handlers) load(w http.ResponseWriter, r *http.Request) (*Booking, bool) {
	u := api.UserFromContext(r.Context())
	if u == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing user identity")
		return nil, false
	}

	id := NormalizeID(chi.URLParam(r, "id"))
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return nil, false
	}

	b, err := h.Bookings.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get booking", err)
		return nil, false
	}
	if b.UserID != u.ID && !u.HasRole(user.RoleAdmin) {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
		return nil, false
	}
	return b, true
}

func (h Handlers) fail(w http.ResponseWriter, op string, err error) {
	if !IsValidation(err) {
		h.logger().Warn(op, zap.Error(err))
	}
	WriteError(w, err)
}

func (h Handlers) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}
