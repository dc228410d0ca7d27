// Package admin serves the fleet and user directory screens.
package admin

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"fleetbooking/internal/api"
	"fleetbooking/internal/user"
)

type UserHandlers struct {
	Users *user.Repository
	Log   *zap.Logger
}

type CreateUserRequest struct {
	ID         string `json:"id"`
	AuthID     string `json:"authId"`
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone"`
	Department string `json:"department" validate:"required"`
	Role       string `json:"role" validate:"required,oneof=employee admin driver"`
}

type UpdateUserRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone"`
	Department *string `json:"department" validate:"omitempty,min=1"`
	Role       *string `json:"role" validate:"omitempty,oneof=employee admin driver"`
}

// Me returns the caller's own profile.
func (h UserHandlers) Me(w http.ResponseWriter, r *http.Request) {
	u := api.UserFromContext(r.Context())
	if u == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing user identity")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (h UserHandlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Users.List(r.Context())
	if err != nil {
		h.internal(w, "list users", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h UserHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	if _, err := h.Users.FindByEmail(r.Context(), req.Email); err == nil {
		api.WriteError(w, http.StatusConflict, "CONFLICT", "a user with this email already exists")
		return
	}

	u := &user.User{
		ID:         strings.TrimSpace(req.ID),
		AuthID:     strings.TrimSpace(req.AuthID),
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:      strings.TrimSpace(req.Phone),
		Department: strings.TrimSpace(req.Department),
		Role:       user.Role(req.Role),
	}
	if err := h.Users.Create(r.Context(), u); err != nil {
		if errors.Is(err, user.ErrExists) {
			api.WriteError(w, http.StatusConflict, "CONFLICT", "a user with this id already exists")
			return
		}
		h.internal(w, "create user", err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]any{"user": u})
}

func (h UserHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	var req UpdateUserRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}
	p := user.Patch{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Department: req.Department,
	}
	if req.Role != nil {
		role := user.Role(*req.Role)
		p.Role = &role
	}

	u, err := h.Users.Update(r.Context(), id, p)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "user not found")
			return
		}
		h.internal(w, "update user", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (h UserHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if me := api.UserFromContext(r.Context()); me != nil && me.ID == id {
		api.WriteError(w, http.StatusConflict, "INVALID_STATE", "cannot delete your own account")
		return
	}

	if err := h.Users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "user not found")
			return
		}
		h.internal(w, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h UserHandlers) internal(w http.ResponseWriter, op string, err error) {
	if h.Log != nil {
		h.Log.Error(op+" failed", zap.Error(err))
	}
	api.WriteError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "record store unavailable")
}
