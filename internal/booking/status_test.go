package booking

import "testing"

func TestCanTransition_PendingIsOnlySource(t *testing.T) {
	for _, to := range []Status{StatusApproved, StatusDenied, StatusCancelled} {
		if !CanTransition(StatusPending, to) {
			t.Fatalf("expected pending -> %s allowed", to)
		}
	}
	for _, from := range []Status{StatusApproved, StatusDenied, StatusCancelled} {
		for _, to := range []Status{StatusPending, StatusApproved, StatusDenied, StatusCancelled} {
			if CanTransition(from, to) {
				t.Fatalf("expected %s -> %s rejected", from, to)
			}
		}
	}
}

func TestCanTransitionTrip(t *testing.T) {
	cases := []struct {
		from, to TripStatus
		want     bool
	}{
		{"", TripInProgress, true},
		{TripUpcoming, TripInProgress, true},
		{TripInProgress, TripCompleted, true},
		{TripInProgress, TripInProgress, false},
		{TripCompleted, TripInProgress, false},
		{"", TripCompleted, false},
		{TripUpcoming, TripCompleted, false},
	}
	for _, c := range cases {
		if got := CanTransitionTrip(c.from, c.to); got != c.want {
			t.Fatalf("%q -> %q: got %v want %v", c.from, c.to, got, c.want)
		}
	}
}
