package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"fleetbooking/internal/approval"
	"fleetbooking/internal/booking"
	"fleetbooking/internal/events"
	"fleetbooking/internal/store"
	"fleetbooking/internal/user"
	"fleetbooking/internal/vehicle"
	"fleetbooking/pkg/config"
	"fleetbooking/pkg/logger"
)

// Seeds the demo directory, fleet and a handful of bookings relative to today. Users are upserted and
// vehicles created under fixed ids, so re-runs are safe; bookings are only added to an empty store unless -force.
func main() {
	force := flag.Bool("force", false, "add demo bookings even if bookings already exist")
	flag.Parse()

	cfg := config.Load()
	zl, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	if cfg.IsProd() {
		zl.Fatal("refusing to seed a prod environment")
	}

	ctx := context.Background()
	st, closeStore, err := store.Open(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("store open", zap.Error(err))
	}
	defer closeStore()

	if err := seedUsers(ctx, user.NewRepository(st)); err != nil {
		zl.Fatal("seed users", zap.Error(err))
	}
	if err := seedVehicles(ctx, vehicle.NewRepository(st)); err != nil {
		zl.Fatal("seed vehicles", zap.Error(err))
	}

	cal := booking.NewCalendar(cfg.Location())
	repo := booking.NewRepository(st, zl)
	timeline := events.NewLog(st, nil, zl).WithClock(cal.CurrentTime)
	svc := booking.NewService(repo, cal, timeline)
	wf := approval.NewWorkflow(repo, cal, timeline, nil, zl)

	existing, err := svc.List(ctx)
	if err != nil {
		zl.Fatal("list bookings", zap.Error(err))
	}
	if len(existing) > 0 && !*force {
		zl.Info("bookings already present, skipping", zap.Int("count", len(existing)))
		return
	}

	ids, err := seedBookings(ctx, svc, wf, cal)
	if err != nil {
		zl.Fatal("seed bookings", zap.Error(err))
	}

	fmt.Printf("Seed complete.\n")
	fmt.Printf("bookings: %v\n", ids)
	fmt.Printf("\nDev login (X-User-ID header): admin, employee, driver\n")
}

var users = []user.User{
	{ID: "1", Name: "John Smith", Email: "j.smith@school.edu", Phone: "+1-555-0101", Department: "Mathematics", Role: user.RoleEmployee},
	{ID: "2", Name: "Sarah Johnson", Email: "s.johnson@school.edu", Phone: "+1-555-0102", Department: "Administration", Role: user.RoleAdmin},
	{ID: "3", Name: "Michael Brown", Email: "m.brown@school.edu", Phone: "+1-555-0103", Department: "Sports", Role: user.RoleEmployee},
	{ID: "4", Name: "David Wilson", Email: "d.wilson@school.edu", Phone: "+1-555-0104", Department: "Transport", Role: user.RoleDriver},
	{ID: "5", Name: "Emily Davis", Email: "e.davis@school.edu", Phone: "+1-555-0105", Department: "Science", Role: user.RoleEmployee},
	{ID: "admin", Name: "Test Admin", Email: "admin@school.edu", Department: "Administration", Role: user.RoleAdmin},
	{ID: "employee", Name: "Test Employee", Email: "employee@school.edu", Department: "Mathematics", Role: user.RoleEmployee},
	{ID: "driver", Name: "Test Driver", Email: "driver@school.edu", Department: "Transport", Role: user.RoleDriver},
}

func seedUsers(ctx context.Context, repo *user.Repository) error {
	for i := range users {
		u := users[i]
		if err := repo.Upsert(ctx, &u); err != nil {
			return fmt.Errorf("user %s: %w", u.ID, err)
		}
	}
	return nil
}

func seedVehicles(ctx context.Context, repo *vehicle.Repository) error {
	fleet := []vehicle.Vehicle{
		{ID: "camry", Name: "Toyota Camry 2024", Type: booking.VehicleSedan, PlateNumber: "ABC-1234", Status: vehicle.StatusAvailable},
		{ID: "explorer", Name: "Ford Explorer", Type: booking.VehicleSUV, PlateNumber: "XYZ-5678", Status: vehicle.StatusAvailable},
		{ID: "sprinter", Name: "Mercedes Sprinter", Type: booking.VehicleMinibus, PlateNumber: "MNO-9012", Status: vehicle.StatusInUse},
		{ID: "schoolbus", Name: "School Bus Large", Type: booking.VehicleBus, PlateNumber: "BUS-3456", Status: vehicle.StatusAvailable},
	}
	for i := range fleet {
		// Re-runs keep vehicles an admin has since edited.
		if err := repo.Create(ctx, &fleet[i]); err != nil && !errors.Is(err, vehicle.ErrExists) {
			return fmt.Errorf("vehicle %s: %w", fleet[i].ID, err)
		}
	}
	return nil
}

func requester(u user.User) booking.Requester {
	return booking.Requester{UserID: u.ID, Name: u.Name, Department: u.Department, Email: u.Email, Phone: u.Phone}
}

func seedBookings(ctx context.Context, svc *booking.Service, wf *approval.Workflow, cal booking.Calendar) ([]string, error) {
	day := func(offset int) string {
		return cal.CurrentTime().In(cal.Loc).AddDate(0, 0, offset).Format(booking.DateLayout)
	}
	laterToday := cal.CurrentTime().In(cal.Loc).Add(2 * time.Hour)
	todayTime := laterToday.Format(booking.TimeLayout)
	todayDate := laterToday.Format(booking.DateLayout)

	plans := []struct {
		by      user.User
		in      booking.Input
		approve bool
	}{
		{users[0], booking.Input{Date: day(3), Time: "09:00", Destination: "City Science Museum", Passengers: 15, VehicleType: booking.VehicleMinibus, Purpose: booking.PurposeFieldTrip}, false},
		{users[1], booking.Input{Date: day(5), Time: "14:00", Destination: "District Office", Passengers: 3, VehicleType: booking.VehicleSedan, Purpose: booking.PurposeMeeting}, false},
		{users[2], booking.Input{Date: day(8), Time: "08:00", Destination: "Regional Sports Complex", Passengers: 20, VehicleType: booking.VehicleBus, Purpose: booking.PurposeCompetition}, false},
		{users[0], booking.Input{Date: day(1), Time: "14:00", Destination: "District Office", Passengers: 3, VehicleType: booking.VehicleSedan, Purpose: booking.PurposeMeeting}, true},
		{users[4], booking.Input{Date: todayDate, Time: todayTime, Destination: "University Lab", Passengers: 6, VehicleType: booking.VehicleSUV, Purpose: booking.PurposeOther, OtherPurpose: "Equipment pickup"}, true},
	}

	var ids []string
	for _, p := range plans {
		b, err := svc.Create(ctx, requester(p.by), p.in)
		if err != nil {
			return ids, fmt.Errorf("booking to %s: %w", p.in.Destination, err)
		}
		if p.approve {
			if _, err := wf.Approve(ctx, b.ID, "admin"); err != nil {
				return ids, fmt.Errorf("approve %s: %w", b.ID, err)
			}
		}
		ids = append(ids, b.ID)
	}
	return ids, nil
}
