package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"fleetbooking/internal/admin"
	"fleetbooking/internal/api"
	"fleetbooking/internal/approval"
	"fleetbooking/internal/booking"
	"fleetbooking/internal/events"
	"fleetbooking/internal/metrics"
	"fleetbooking/internal/report"
	"fleetbooking/internal/store"
	"fleetbooking/internal/trip"
	"fleetbooking/internal/user"
	"fleetbooking/internal/vehicle"
	"fleetbooking/pkg/config"
)

type Dependencies struct {
	Cfg       config.Config
	Store     store.Store
	Log       *zap.Logger
	Metrics   *metrics.Metrics
	Publisher events.Publisher

	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

func NewRouter(deps Dependencies) http.Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	m := deps.Metrics
	if m == nil {
		m = metrics.New()
	}

	cal := booking.NewCalendar(deps.Cfg.Location())
	if deps.Now != nil {
		cal.Now = deps.Now
	}

	usersRepo := user.NewRepository(deps.Store)
	vehiclesRepo := vehicle.NewRepository(deps.Store)
	bookingsRepo := booking.NewRepository(deps.Store, log)
	timeline := events.NewLog(deps.Store, deps.Publisher, log).WithClock(cal.CurrentTime)

	bookings := booking.NewService(bookingsRepo, cal, timeline)
	workflow := approval.NewWorkflow(bookingsRepo, cal, timeline, m, log)
	trips := trip.NewService(bookingsRepo, cal, timeline, m, log)
	reports := &report.Service{Source: bookings, Cal: cal}

	bookingHandlers := booking.Handlers{Bookings: bookings, Timeline: timeline, Log: log}
	approvalHandlers := approval.Handlers{Workflow: workflow, Log: log}
	tripHandlers := trip.Handlers{Trips: trips, Log: log}
	reportHandlers := report.Handlers{Reports: reports, Log: log}
	userHandlers := admin.UserHandlers{Users: usersRepo, Log: log}
	vehicleHandlers := admin.VehicleHandlers{Vehicles: vehiclesRepo, Log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(m.Middleware)
	r.Use(api.CORSMiddleware(api.CORSOptions{AllowedOrigins: deps.Cfg.AllowedOrigins}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())

	// v1
	r.Route("/v1", func(r chi.Router) {
		// Production: Supabase access token auth
		// Dev: falls back to X-User-ID if Authorization is missing.
		r.Use(api.SessionAuth(deps.Cfg, usersRepo, log))

		r.Get("/me", userHandlers.Me)

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", bookingHandlers.Create)
			r.Get("/", bookingHandlers.List)
			r.Get("/mine", bookingHandlers.Mine)
			r.Get("/{id}", bookingHandlers.Get)
			r.Patch("/{id}", bookingHandlers.Update)
			r.Post("/{id}/cancel", bookingHandlers.Cancel)
			r.Get("/{id}/events", bookingHandlers.Events)
		})

		r.Route("/approvals", func(r chi.Router) {
			r.Use(api.RequireRole(user.RoleAdmin))
			r.Get("/pending", approvalHandlers.Pending)
			r.Get("/past", approvalHandlers.Past)
			r.Get("/counts", approvalHandlers.Counts)
			r.Post("/bulk-approve", approvalHandlers.BulkApprove)
			r.Post("/bulk-deny", approvalHandlers.BulkDeny)
			r.Post("/{id}/approve", approvalHandlers.Approve)
			r.Post("/{id}/deny", approvalHandlers.Deny)
		})

		r.Route("/driver/trips", func(r chi.Router) {
			r.Use(api.RequireRole(user.RoleDriver, user.RoleAdmin))
			r.Get("/", tripHandlers.Today)
			r.Post("/{id}/start", tripHandlers.Start)
			r.Post("/{id}/complete", tripHandlers.Complete)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(api.RequireRole(user.RoleAdmin))
			r.Get("/summary", reportHandlers.Summary)
			r.Get("/bookings.csv", reportHandlers.CSV)
			r.Get("/summary.pdf", reportHandlers.PDF)
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", vehicleHandlers.List)
			r.Group(func(r chi.Router) {
				r.Use(api.RequireRole(user.RoleAdmin))
				r.Post("/", vehicleHandlers.Create)
				r.Put("/{id}", vehicleHandlers.Update)
				r.Delete("/{id}", vehicleHandlers.Delete)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(api.RequireRole(user.RoleAdmin))
			r.Get("/", userHandlers.List)
			r.Post("/", userHandlers.Create)
			r.Put("/{id}", userHandlers.Update)
			r.Delete("/{id}", userHandlers.Delete)
		})
	})

	return r
}
