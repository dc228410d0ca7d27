package approval

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"fleetbooking/internal/api"
	"fleetbooking/internal/booking"
)

type Handlers struct {
	Workflow *Workflow
	Log      *zap.Logger
}

type DenyRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type BulkRequest struct {
	IDs    []string `json:"ids" validate:"required,min=1,max=200,dive,required"`
	Reason string   `json:"reason" validate:"max=500"`
}

func filterFrom(r *http.Request) Filter {
	q := r.URL.Query()
	dept := strings.TrimSpace(q.Get("department"))
	if strings.EqualFold(dept, "all") {
		dept = ""
	}
	return Filter{Search: q.Get("q"), Department: dept}
}

// Pending lists the approval queue together with the department facet values.
func (h Handlers) Pending(w http.ResponseWriter, r *http.Request) {
	items, err := h.Workflow.ListPending(r.Context(), filterFrom(r))
	if err != nil {
		h.fail(w, "list pending", err)
		return
	}
	depts, err := h.Workflow.Departments(r.Context())
	if err != nil {
		h.fail(w, "list departments", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items, "departments": depts})
}

func (h Handlers) Past(w http.ResponseWriter, r *http.Request) {
	items, err := h.Workflow.ListPast(r.Context(), filterFrom(r))
	if err != nil {
		h.fail(w, "list past", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Counts(w http.ResponseWriter, r *http.Request) {
	c, err := h.Workflow.Counts(r.Context())
	if err != nil {
		h.fail(w, "counts", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, c)
}

func (h Handlers) Approve(w http.ResponseWriter, r *http.Request) {
	id := booking.NormalizeID(chi.URLParam(r, "id"))
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	b, err := h.Workflow.Approve(r.Context(), id, actor(r))
	if err != nil {
		h.fail(w, "approve", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"booking": b})
}

func (h Handlers) Deny(w http.ResponseWriter, r *http.Request) {
	id := booking.NormalizeID(chi.URLParam(r, "id"))
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	var req DenyRequest
	if !api.DecodeOptionalJSON(w, r, &req) {
		return
	}

	b, err := h.Workflow.Deny(r.Context(), id, req.Reason, actor(r))
	if err != nil {
		h.fail(w, "deny", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"booking": b})
}

func (h Handlers) BulkApprove(w http.ResponseWriter, r *http.Request) {
	var req BulkRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}
	api.WriteJSON(w, http.StatusOK, h.Workflow.BulkApprove(r.Context(), req.IDs, actor(r)))
}

func (h Handlers) BulkDeny(w http.ResponseWriter, r *http.Request) {
	var req BulkRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}
	api.WriteJSON(w, http.StatusOK, h.Workflow.BulkDeny(r.Context(), req.IDs, req.Reason, actor(r)))
}

func actor(r *http.Request) string {
	if u := api.UserFromContext(r.Context()); u != nil {
		return u.ID
	}
	return ""
}

func (h Handlers) fail(w http.ResponseWriter, op string, err error) {
	if h.Log != nil {
		h.Log.Info(op+" failed", zap.Error(err))
	}
	booking.WriteError(w, err)
}
