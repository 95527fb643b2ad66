package model

import (
	"testing"
	"time"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	hour := time.Hour

	tests := []struct {
		name   string
		bStart time.Time
		bEnd   time.Time
		want   bool
	}{
		{"identical", base, base.Add(hour), true},
		{"adjacent after", base.Add(hour), base.Add(2 * hour), false},
		{"adjacent before", base.Add(-hour), base, false},
		{"contained", base.Add(15 * time.Minute), base.Add(30 * time.Minute), true},
		{"straddles start", base.Add(-30 * time.Minute), base.Add(30 * time.Minute), true},
		{"disjoint", base.Add(3 * hour), base.Add(4 * hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(base, base.Add(hour), tt.bStart, tt.bEnd); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCourt_OperatingHours(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	court := Court{Opens: "08:00", Closes: "22:00"}
	day := time.Date(2026, 5, 4, 12, 0, 0, 0, loc)

	openAt, closeAt, err := court.OperatingHours(day, loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if openAt.Hour() != 8 || closeAt.Hour() != 22 {
		t.Errorf("got %v - %v", openAt, closeAt)
	}

	if !court.Covers(openAt, openAt.Add(time.Hour), loc) {
		t.Error("first hour should be covered")
	}
	if court.Covers(closeAt.Add(-30*time.Minute), closeAt.Add(30*time.Minute), loc) {
		t.Error("interval crossing closing time should not be covered")
	}

	bad := Court{Opens: "22:00", Closes: "08:00"}
	if _, _, err := bad.OperatingHours(day, loc); err == nil {
		t.Error("expected error when closing precedes opening")
	}
}

func TestTariff_Predicates(t *testing.T) {
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	until := now.Add(24 * time.Hour)
	maxAge := 25
	tariff := Tariff{
		MinAge:     18,
		MaxAge:     &maxAge,
		ValidFrom:  now.Add(-time.Hour),
		ValidUntil: &until,
		CourtIDs:   []string{"court-1"},
	}

	if !tariff.InValidity(now) {
		t.Error("expected tariff in validity")
	}
	if tariff.InValidity(until) {
		t.Error("validUntil is exclusive")
	}
	if !tariff.AppliesToCourt("court-1") || tariff.AppliesToCourt("court-2") {
		t.Error("court scoping mismatch")
	}
	if (Tariff{}).AppliesToCourt("anything") != true {
		t.Error("unscoped tariff applies everywhere")
	}
	for age, want := range map[int]bool{17: false, 18: true, 25: true, 26: false} {
		if got := tariff.CoversAge(age); got != want {
			t.Errorf("CoversAge(%d) = %v, want %v", age, got, want)
		}
	}
}

func TestParseEnums(t *testing.T) {
	if _, err := ParsePaymentMethod("CARD"); err != nil {
		t.Errorf("CARD should parse: %v", err)
	}
	if _, err := ParsePaymentMethod("card"); err == nil {
		t.Error("method parsing is case sensitive")
	}
	if _, err := ParseReservationStatus("NO_SHOW"); err != nil {
		t.Errorf("NO_SHOW should parse: %v", err)
	}
	if _, err := ParseReservationStatus("DONE"); err == nil {
		t.Error("unknown status should fail")
	}
	if _, err := ParseEnrollmentDecision("MAYBE"); err == nil {
		t.Error("unknown decision should fail")
	}
	if ReservationCancelled.Occupies() || ReservationNoShow.Occupies() || !ReservationPaid.Occupies() {
		t.Error("Occupies mismatch")
	}
	if EnrollmentRejected.Blocking() || EnrollmentExpired.Blocking() || !EnrollmentPending.Blocking() {
		t.Error("Blocking mismatch")
	}
}
