package admin

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"fleetbooking/internal/api"
	"fleetbooking/internal/booking"
	"fleetbooking/internal/vehicle"
)

type VehicleHandlers struct {
	Vehicles *vehicle.Repository
	Log      *zap.Logger
}

type CreateVehicleRequest struct {
	Name        string `json:"name" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=Sedan SUV Minibus Bus"`
	Capacity    int    `json:"capacity" validate:"gte=0"`
	PlateNumber string `json:"plateNumber" validate:"required"`
	Status      string `json:"status" validate:"omitempty,oneof=available in-use maintenance"`
}

type UpdateVehicleRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Type        *string `json:"type" validate:"omitempty,oneof=Sedan SUV Minibus Bus"`
	Capacity    *int    `json:"capacity" validate:"omitempty,gt=0"`
	PlateNumber *string `json:"plateNumber" validate:"omitempty,min=1"`
	Status      *string `json:"status" validate:"omitempty,oneof=available in-use maintenance"`
}

func (h VehicleHandlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Vehicles.List(r.Context())
	if err != nil {
		h.internal(w, "list vehicles", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h VehicleHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateVehicleRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	v := &vehicle.Vehicle{
		Name:        strings.TrimSpace(req.Name),
		Type:        booking.VehicleType(req.Type),
		Capacity:    req.Capacity,
		PlateNumber: strings.ToUpper(strings.TrimSpace(req.PlateNumber)),
		Status:      vehicle.Status(req.Status),
	}
	if err := h.Vehicles.Create(r.Context(), v); err != nil {
		if errors.Is(err, vehicle.ErrExists) {
			api.WriteError(w, http.StatusConflict, "CONFLICT", "a vehicle with this id already exists")
			return
		}
		h.internal(w, "create vehicle", err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]any{"vehicle": v})
}

func (h VehicleHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	var req UpdateVehicleRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}
	p := vehicle.Patch{Name: req.Name, Capacity: req.Capacity, PlateNumber: req.PlateNumber}
	if req.Type != nil {
		t := booking.VehicleType(*req.Type)
		p.Type = &t
	}
	if req.Status != nil {
		s := vehicle.Status(*req.Status)
		p.Status = &s
	}

	v, err := h.Vehicles.Update(r.Context(), id, p)
	if err != nil {
		if errors.Is(err, vehicle.ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "vehicle not found")
			return
		}
		h.internal(w, "update vehicle", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"vehicle": v})
}

func (h VehicleHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Vehicles.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, vehicle.ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "vehicle not found")
			return
		}
		h.internal(w, "delete vehicle", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h VehicleHandlers) internal(w http.ResponseWriter, op string, err error) {
	if h.Log != nil {
		h.Log.Error(op+" failed", zap.Error(err))
	}
	api.WriteError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "record store unavailable")
}
