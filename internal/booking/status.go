package booking

var allowedTransitions = map[Status]map[Status]bool{
	StatusPending:   {StatusApproved: true, StatusDenied: true, StatusCancelled: true},
	StatusApproved:  {},
	StatusDenied:    {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}

var allowedTripTransitions = map[TripStatus]map[TripStatus]bool{
	TripUpcoming:   {TripInProgress: true},
	TripInProgress: {TripCompleted: true},
	TripCompleted:  {},
}

// CanTransitionTrip checks the driver sub-state machine; an unset status counts as upcoming.
func CanTransitionTrip(from, to TripStatus) bool {
	if from == "" {
		from = TripUpcoming
	}
	m, ok := allowedTripTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}
