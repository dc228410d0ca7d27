package vehicle

import (
	"fmt"
	"time"

	"fleetbooking/internal/booking"
)

type Status string

const (
	StatusAvailable   Status = "available"
	StatusInUse       Status = "in-use"
	StatusMaintenance Status = "maintenance"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusAvailable, StatusInUse, StatusMaintenance:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown vehicle status: %s", s)
	}
}

// Vehicle is a fleet entry. It is not linked to bookings; assignment is manual.
type Vehicle struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Type        booking.VehicleType `json:"type"`
	Capacity    int                 `json:"capacity"`
	PlateNumber string              `json:"plateNumber"`
	Status      Status              `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}
