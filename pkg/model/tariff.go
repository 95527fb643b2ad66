package model

import (
	"fmt"
	"slices"
	"time"
)

type Tariff struct {
	ID                     string     `json:"id" bson:"_id"`
	Name                   string     `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Segment                string     `json:"segment" bson:"segment" validate:"required,min=2,max=50"`
	MinAge                 int        `json:"min_age" bson:"min_age" validate:"min=0,max=150"`
	MaxAge                 *int       `json:"max_age,omitempty" bson:"max_age,omitempty" validate:"omitempty,min=0,max=150,gtefield=MinAge"`
	DiscountPercent        int        `json:"discount_percent" bson:"discount_percent" validate:"min=0,max=100"`
	RequiresManualApproval bool       `json:"requires_manual_approval" bson:"requires_manual_approval"`
	ValidFrom              time.Time  `json:"valid_from" bson:"valid_from" validate:"required"`
	ValidUntil             *time.Time `json:"valid_until,omitempty" bson:"valid_until,omitempty"`
	Active                 bool       `json:"active" bson:"active"`
	CourtIDs               []string   `json:"court_ids" bson:"court_ids" validate:"omitempty,dive,uuid"`
	CreatedAt              time.Time  `json:"created_at" bson:"created_at"`
}

func (t Tariff) InValidity(now time.Time) bool {
	if now.Before(t.ValidFrom) {
		return false
	}
	return t.ValidUntil == nil || now.Before(*t.ValidUntil)
}

func (t Tariff) AppliesToCourt(courtID string) bool {
	return len(t.CourtIDs) == 0 || slices.Contains(t.CourtIDs, courtID)
}

func (t Tariff) CoversAge(age int) bool {
	if age < t.MinAge {
		return false
	}
	return t.MaxAge == nil || age <= *t.MaxAge
}

type EnrollmentStatus string

const (
	EnrollmentPending  EnrollmentStatus = "PENDING"
	EnrollmentApproved EnrollmentStatus = "APPROVED"
	EnrollmentRejected EnrollmentStatus = "REJECTED"
	EnrollmentExpired  EnrollmentStatus = "EXPIRED"
)

// Blocking reports whether an enrollment in this status prevents the same user
// from requesting the same tariff again.
func (s EnrollmentStatus) Blocking() bool {
	return s == EnrollmentPending || s == EnrollmentApproved
}

type EnrollmentDecision string

const (
	DecisionApprove EnrollmentDecision = "APPROVE"
	DecisionReject  EnrollmentDecision = "REJECT"
)

func ParseEnrollmentDecision(s string) (EnrollmentDecision, error) {
	switch d := EnrollmentDecision(s); d {
	case DecisionApprove, DecisionReject:
		return d, nil
	default:
		return "", fmt.Errorf("unknown enrollment decision %q", s)
	}
}

type TariffEnrollment struct {
	ID          string           `json:"id" bson:"_id"`
	TariffID    string           `json:"tariff_id" bson:"tariff_id"`
	UserID      string           `json:"user_id" bson:"user_id"`
	Status      EnrollmentStatus `json:"status" bson:"status"`
	RequestedAt time.Time        `json:"requested_at" bson:"requested_at"`
	DecidedAt   *time.Time       `json:"decided_at,omitempty" bson:"decided_at,omitempty"`
	DecidedBy   string           `json:"decided_by,omitempty" bson:"decided_by,omitempty"`
	Notes       string           `json:"notes,omitempty" bson:"notes,omitempty"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
	// BlockingKey is "tariffID|userID" while the enrollment is PENDING or
	// APPROVED and empty otherwise; a unique sparse index enforces one blocking
	// enrollment per (tariff, user).
	BlockingKey string `json:"-" bson:"blocking_key,omitempty"`
}

func EnrollmentBlockingKey(tariffID, userID string) string {
	return tariffID + "|" + userID
}

func (e TariffEnrollment) VerifiedAt(now time.Time) bool {
	if e.Status != EnrollmentApproved {
		return false
	}
	return e.ExpiresAt == nil || now.Before(*e.ExpiresAt)
}

type TariffUpdate struct {
	Name                   *string    `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	DiscountPercent        *int       `json:"discount_percent,omitempty" validate:"omitempty,min=0,max=100"`
	RequiresManualApproval *bool      `json:"requires_manual_approval,omitempty"`
	ValidUntil             *time.Time `json:"valid_until,omitempty"`
	Active                 *bool      `json:"active,omitempty"`
	CourtIDs               []string   `json:"court_ids,omitempty" validate:"omitempty,dive,uuid"`
}

type EnrollmentRequest struct {
	TariffID string `json:"tariff_id" validate:"required,uuid"`
	Notes    string `json:"notes,omitempty" validate:"max=1000"`
}

type EnrollmentDecisionRequest struct {
	Decision EnrollmentDecision `json:"decision" validate:"required,oneof=APPROVE REJECT"`
	Notes    string             `json:"notes,omitempty" validate:"max=1000"`
}
