// Package engine selects the discount tariff that applies to a booking. It is
// pure: callers load tariffs and enrollments and pass the evaluation time.
package engine

import (
	"time"

	"courtside/pkg/model"
)

type Evaluation struct {
	// Applied is the tariff to price with, nil when none applies.
	Applied *model.Tariff `json:"applied,omitempty"`
	// PendingVerification is set when the best age-eligible tariff needs an
	// approved enrollment the user does not have yet.
	PendingVerification *model.Tariff `json:"pending_verification,omitempty"`
}

func (e Evaluation) DiscountPercent() int {
	if e.Applied == nil {
		return 0
	}
	return e.Applied.DiscountPercent
}

func (e Evaluation) TariffID() string {
	if e.Applied == nil {
		return ""
	}
	return e.Applied.ID
}

func AgeEligibleTariffs(tariffs []model.Tariff, courtID string, age int, now time.Time) []model.Tariff {
	eligible := []model.Tariff{}
	for _, t := range tariffs {
		if t.Active && t.InValidity(now) && t.AppliesToCourt(courtID) && t.CoversAge(age) {
			eligible = append(eligible, t)
		}
	}
	return eligible
}

// VerifiedApprovals returns the ids of tariffs the user holds an approved,
// unexpired enrollment for.
func VerifiedApprovals(enrollments []model.TariffEnrollment, userID string, now time.Time) map[string]struct{} {
	verified := make(map[string]struct{})
	for _, e := range enrollments {
		if e.UserID == userID && e.VerifiedAt(now) {
			verified[e.TariffID] = struct{}{}
		}
	}
	return verified
}

func FindApplicableTariff(tariffs []model.Tariff, enrollments []model.TariffEnrollment, userID, courtID string, age int, now time.Time) Evaluation {
	eligible := AgeEligibleTariffs(tariffs, courtID, age, now)
	verified := VerifiedApprovals(enrollments, userID, now)

	var result Evaluation
	var best *model.Tariff
	for i := range eligible {
		t := &eligible[i]
		if better(t, best) {
			best = t
		}
		if _, ok := verified[t.ID]; !t.RequiresManualApproval || ok {
			if better(t, result.Applied) {
				result.Applied = t
			}
		}
	}

	if best != nil && best != result.Applied && best.RequiresManualApproval {
		if _, ok := verified[best.ID]; !ok {
			result.PendingVerification = best
		}
	}
	return result
}

// better orders by discount, then by recency.
func better(candidate, current *model.Tariff) bool {
	if current == nil {
		return true
	}
	if candidate.DiscountPercent != current.DiscountPercent {
		return candidate.DiscountPercent > current.DiscountPercent
	}
	return candidate.CreatedAt.After(current.CreatedAt)
}
