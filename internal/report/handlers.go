package report

import (
	"bytes"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"fleetbooking/internal/api"
	"fleetbooking/internal/booking"
)

type Handlers struct {
	Reports *Service
	Log     *zap.Logger
}

func filterFrom(r *http.Request) (Filter, bool) {
	q := r.URL.Query()
	f := Filter{
		Search: q.Get("q"),
		From:   strings.TrimSpace(q.Get("from")),
		To:     strings.TrimSpace(q.Get("to")),
	}
	if s := strings.TrimSpace(q.Get("status")); s != "" && !strings.EqualFold(s, "all") {
		st, err := booking.ParseStatus(strings.ToLower(s))
		if err != nil {
			return f, false
		}
		f.Status = st
	}
	return f, true
}

func (h Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	f, ok := filterFrom(r)
	if !ok {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid status")
		return
	}
	s, err := h.Reports.Summary(r.Context(), f)
	if err != nil {
		h.fail(w, "report summary", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, s)
}

func (h Handlers) CSV(w http.ResponseWriter, r *http.Request) {
	f, ok := filterFrom(r)
	if !ok {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid status")
		return
	}
	bs, err := h.Reports.Bookings(r.Context(), f)
	if err != nil {
		h.fail(w, "report csv", err)
		return
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, bs); err != nil {
		h.fail(w, "report csv", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+CSVFilename(h.Reports.Cal.Today())+`"`)
	_, _ = w.Write(buf.Bytes())
}

func (h Handlers) PDF(w http.ResponseWriter, r *http.Request) {
	f, ok := filterFrom(r)
	if !ok {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid status")
		return
	}
	s, err := h.Reports.Summary(r.Context(), f)
	if err != nil {
		h.fail(w, "report pdf", err)
		return
	}
	out, err := RenderPDF(s, h.Reports.Cal.Loc.String())
	if err != nil {
		h.fail(w, "report pdf", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+PDFFilename(h.Reports.Cal.Today())+`"`)
	_, _ = w.Write(out)
}

func (h Handlers) fail(w http.ResponseWriter, op string, err error) {
	if h.Log != nil {
		h.Log.Error(op+" failed", zap.Error(err))
	}
	booking.WriteError(w, err)
}
