package booking

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks a submission or the merged result of an update. The capacity check is a hard precondition.
func Validate(in Input, cal Calendar) error {
	if strings.TrimSpace(in.Destination) == "" {
		return ValidationError{Code: "DESTINATION_REQUIRED", Message: "destination is required"}
	}
	if in.Passengers <= 0 {
		return ValidationError{Code: "PASSENGERS_INVALID", Message: "passengers must be a positive integer"}
	}
	capacity, ok := Capacity(in.VehicleType)
	if !ok {
		return ValidationError{Code: "VEHICLE_TYPE_INVALID", Message: "vehicle type must be one of Sedan, SUV, Minibus, Bus"}
	}
	if in.Passengers > capacity {
		return ValidationError{
			Code:    "CAPACITY_EXCEEDED",
			Message: fmt.Sprintf("%d passengers exceed %s capacity of %d", in.Passengers, in.VehicleType, capacity),
		}
	}
	if _, err := time.Parse(DateLayout, in.Date); err != nil {
		return ValidationError{Code: "DATE_INVALID", Message: "date must be YYYY-MM-DD"}
	}
	if cal.BeforeToday(in.Date) {
		return ValidationError{Code: "DATE_IN_PAST", Message: "cannot book a trip for a past date"}
	}
	if _, err := time.Parse(TimeLayout, in.Time); err != nil {
		return ValidationError{Code: "TIME_INVALID", Message: "time must be HH:MM"}
	}
	if !validPurpose(in.Purpose) {
		return ValidationError{Code: "PURPOSE_INVALID", Message: "purpose must be one of Field Trip, Meeting, Competition, Training, Other"}
	}
	if in.Purpose == PurposeOther && strings.TrimSpace(in.OtherPurpose) == "" {
		return ValidationError{Code: "OTHER_PURPOSE_REQUIRED", Message: "please specify the purpose"}
	}
	return nil
}
