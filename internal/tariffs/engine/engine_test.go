package engine

import (
	"testing"
	"time"

	"courtside/pkg/model"
)

var now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func tariff(id string, pct int, approval bool) model.Tariff {
	return model.Tariff{
		ID:                     id,
		Name:                   id,
		MinAge:                 65,
		DiscountPercent:        pct,
		RequiresManualApproval: approval,
		ValidFrom:              now.AddDate(-1, 0, 0),
		Active:                 true,
		CreatedAt:              now.AddDate(-1, 0, 0),
	}
}

func TestAgeEligibleTariffs(t *testing.T) {
	youth := tariff("youth", 20, false)
	youth.MinAge, youth.MaxAge = 0, intPtr(17)
	expired := tariff("expired", 40, false)
	expired.ValidUntil = timePtr(now)
	inactive := tariff("inactive", 40, false)
	inactive.Active = false
	scoped := tariff("scoped", 10, false)
	scoped.CourtIDs = []string{"court-b"}
	future := tariff("future", 10, false)
	future.ValidFrom = now.Add(time.Hour)

	all := []model.Tariff{tariff("senior", 30, false), youth, expired, inactive, scoped, future}

	tests := []struct {
		name    string
		courtID string
		age     int
		want    []string
	}{
		{"senior on court a", "court-a", 70, []string{"senior"}},
		{"senior on scoped court", "court-b", 70, []string{"senior", "scoped"}},
		{"teen", "court-a", 17, []string{"youth"}},
		{"adult", "court-a", 30, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AgeEligibleTariffs(all, tt.courtID, tt.age, now)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %d tariffs", tt.want, len(got))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("position %d: got %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestVerifiedApprovals(t *testing.T) {
	enrollments := []model.TariffEnrollment{
		{TariffID: "a", UserID: "u1", Status: model.EnrollmentApproved},
		{TariffID: "b", UserID: "u1", Status: model.EnrollmentApproved, ExpiresAt: timePtr(now)},
		{TariffID: "c", UserID: "u1", Status: model.EnrollmentPending},
		{TariffID: "d", UserID: "u2", Status: model.EnrollmentApproved},
		{TariffID: "e", UserID: "u1", Status: model.EnrollmentApproved, ExpiresAt: timePtr(now.Add(time.Minute))},
	}

	got := VerifiedApprovals(enrollments, "u1", now)
	if len(got) != 2 {
		t.Fatalf("expected 2 verified tariffs, got %v", got)
	}
	for _, id := range []string{"a", "e"} {
		if _, ok := got[id]; !ok {
			t.Errorf("expected %s to be verified", id)
		}
	}
}

func TestFindApplicableTariff(t *testing.T) {
	plain := tariff("plain-30", 30, false)
	regulated := tariff("regulated-50", 50, true)
	older := tariff("older-30", 30, false)
	older.CreatedAt = plain.CreatedAt.Add(-time.Hour)

	approved := model.TariffEnrollment{TariffID: "regulated-50", UserID: "u1", Status: model.EnrollmentApproved}

	tests := []struct {
		name        string
		tariffs     []model.Tariff
		enrollments []model.TariffEnrollment
		age         int
		wantApplied string
		wantPending string
	}{
		{
			name:        "unverified 50 loses to 30 and is flagged",
			tariffs:     []model.Tariff{plain, regulated},
			age:         70,
			wantApplied: "plain-30",
			wantPending: "regulated-50",
		},
		{
			name:        "verified 50 wins",
			tariffs:     []model.Tariff{plain, regulated},
			enrollments: []model.TariffEnrollment{approved},
			age:         70,
			wantApplied: "regulated-50",
		},
		{
			name:        "tie goes to most recent",
			tariffs:     []model.Tariff{older, plain},
			age:         70,
			wantApplied: "plain-30",
		},
		{
			name:        "only unverified tariff",
			tariffs:     []model.Tariff{regulated},
			age:         70,
			wantPending: "regulated-50",
		},
		{
			name:    "not age eligible",
			tariffs: []model.Tariff{plain, regulated},
			age:     40,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindApplicableTariff(tt.tariffs, tt.enrollments, "u1", "court-a", tt.age, now)
			if got.TariffID() != tt.wantApplied {
				t.Errorf("applied: got %q, want %q", got.TariffID(), tt.wantApplied)
			}
			pending := ""
			if got.PendingVerification != nil {
				pending = got.PendingVerification.ID
			}
			if pending != tt.wantPending {
				t.Errorf("pending: got %q, want %q", pending, tt.wantPending)
			}
		})
	}
}
