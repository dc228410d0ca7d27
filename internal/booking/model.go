package booking

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusDenied    Status = "denied"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusDenied, StatusCancelled:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status: %s", s)
	}
}

type TripStatus string

const (
	TripUpcoming   TripStatus = "upcoming"
	TripInProgress TripStatus = "in-progress"
	TripCompleted  TripStatus = "completed"
)

func ParseTripStatus(s string) (TripStatus, error) {
	switch TripStatus(s) {
	case "", TripUpcoming, TripInProgress, TripCompleted:
		return TripStatus(s), nil
	default:
		return "", fmt.Errorf("unknown trip status: %s", s)
	}
}

type VehicleType string

const (
	VehicleSedan   VehicleType = "Sedan"
	VehicleSUV     VehicleType = "SUV"
	VehicleMinibus VehicleType = "Minibus"
	VehicleBus     VehicleType = "Bus"
)

var capacities = map[VehicleType]int{
	VehicleSedan:   4,
	VehicleSUV:     7,
	VehicleMinibus: 15,
	VehicleBus:     30,
}

// Capacity is the fixed passenger capacity of a vehicle type; ok is false for unknown types.
func Capacity(t VehicleType) (int, bool) {
	c, ok := capacities[t]
	return c, ok
}

func ParseVehicleType(s string) (VehicleType, error) {
	if _, ok := capacities[VehicleType(s)]; !ok {
		return "", fmt.Errorf("unknown vehicle type: %s", s)
	}
	return VehicleType(s), nil
}

type Purpose string

const (
	PurposeFieldTrip   Purpose = "Field Trip"
	PurposeMeeting     Purpose = "Meeting"
	PurposeCompetition Purpose = "Competition"
	PurposeTraining    Purpose = "Training"
	PurposeOther       Purpose = "Other"
)

func validPurpose(p Purpose) bool {
	switch p {
	case PurposeFieldTrip, PurposeMeeting, PurposeCompetition, PurposeTraining, PurposeOther:
		return true
	}
	return false
}

// Booking is a trip request. Requester fields are a snapshot taken at submission time.
type Booking struct {
	ID           string      `json:"id"`
	UserID       string      `json:"userId"`
	EmployeeName string      `json:"employeeName"`
	Department   string      `json:"department"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	Date         string      `json:"date"`
	Time         string      `json:"time"`
	Destination  string      `json:"destination"`
	Passengers   int         `json:"passengers"`
	VehicleType  VehicleType `json:"vehicleType"`
	Purpose      Purpose     `json:"purpose"`
	OtherPurpose string      `json:"otherPurpose,omitempty"`
	Status       Status      `json:"status"`
	TripStatus   TripStatus  `json:"tripStatus,omitempty"`
	DenialReason string      `json:"denialReason,omitempty"`
	DecidedBy    string      `json:"decidedBy,omitempty"`
	DecidedAt    *time.Time  `json:"decidedAt,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`

	// Version is the store version this copy was read at.
	Version int64 `json:"version"`
}

// EffectiveTripStatus reports an unset trip status as upcoming.
func (b *Booking) EffectiveTripStatus() TripStatus {
	if b.TripStatus == "" {
		return TripUpcoming
	}
	return b.TripStatus
}

// Requester is the submitting user's profile snapshot.
type Requester struct {
	UserID     string
	Name       string
	Department string
	Email      string
	Phone      string
}

// Input carries the requester-editable fields of a booking.
type Input struct {
	Date         string
	Time         string
	Destination  string
	Passengers   int
	VehicleType  VehicleType
	Purpose      Purpose
	OtherPurpose string
}

// Patch overwrites the non-nil fields of a pending booking.
type Patch struct {
	Date         *string
	Time         *string
	Destination  *string
	Passengers   *int
	VehicleType  *VehicleType
	Purpose      *Purpose
	OtherPurpose *string
}

func (b *Booking) input() Input {
	return Input{
		Date:         b.Date,
		Time:         b.Time,
		Destination:  b.Destination,
		Passengers:   b.Passengers,
		VehicleType:  b.VehicleType,
		Purpose:      b.Purpose,
		OtherPurpose: b.OtherPurpose,
	}
}

func (p Patch) apply(in Input) Input {
	if p.Date != nil {
		in.Date = *p.Date
	}
	if p.Time != nil {
		in.Time = *p.Time
	}
	if p.Destination != nil {
		in.Destination = *p.Destination
	}
	if p.Passengers != nil {
		in.Passengers = *p.Passengers
	}
	if p.VehicleType != nil {
		in.VehicleType = *p.VehicleType
	}
	if p.Purpose != nil {
		in.Purpose = *p.Purpose
		if in.Purpose != PurposeOther {
			in.OtherPurpose = ""
		}
	}
	if p.OtherPurpose != nil {
		in.OtherPurpose = *p.OtherPurpose
	}
	return in
}
