package report

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestShares_RoundingDeltaAppliedToLargest(t *testing.T) {
	got := Shares(map[string]int{"Sedan": 1, "SUV": 1, "Bus": 1}, DefaultScale)
	if len(got) != 3 {
		t.Fatalf("expected 3 shares, got %d", len(got))
	}

	sum := decimal.Zero
	for _, s := range got {
		sum = sum.Add(s.Percent)
	}
	if !sum.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected sum 100, got %s", sum)
	}
	// Ties order by key, so Bus is first and carries the delta.
	if got[0].Key != "Bus" || !got[0].Percent.Equal(decimal.RequireFromString("33.34")) {
		t.Fatalf("expected Bus 33.34 first, got %s %s", got[0].Key, got[0].Percent)
	}
	if !got[1].Percent.Equal(decimal.RequireFromString("33.33")) {
		t.Fatalf("expected 33.33, got %s", got[1].Percent)
	}
}

func TestShares_OrderByCount(t *testing.T) {
	got := Shares(map[string]int{"pending": 1, "approved": 3, "denied": 0}, DefaultScale)
	if len(got) != 2 {
		t.Fatalf("expected zero-count group dropped, got %d shares", len(got))
	}
	if got[0].Key != "approved" || !got[0].Percent.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("unexpected first share %+v", got[0])
	}
	if got[1].Key != "pending" || !got[1].Percent.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("unexpected second share %+v", got[1])
	}
}

func TestShares_Empty(t *testing.T) {
	if got := Shares(map[string]int{}, DefaultScale); len(got) != 0 {
		t.Fatalf("expected no shares, got %d", len(got))
	}
}
