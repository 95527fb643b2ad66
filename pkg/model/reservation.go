package model

import (
	"fmt"
	"time"
)

type ReservationStatus string

const (
	ReservationPending    ReservationStatus = "PENDING"
	ReservationPaid       ReservationStatus = "PAID"
	ReservationInProgress ReservationStatus = "IN_PROGRESS"
	ReservationCompleted  ReservationStatus = "COMPLETED"
	ReservationCancelled  ReservationStatus = "CANCELLED"
	ReservationNoShow     ReservationStatus = "NO_SHOW"
)

var reservationStatuses = map[ReservationStatus]struct{}{
	ReservationPending:    {},
	ReservationPaid:       {},
	ReservationInProgress: {},
	ReservationCompleted:  {},
	ReservationCancelled:  {},
	ReservationNoShow:     {},
}

func (s ReservationStatus) Valid() bool {
	_, ok := reservationStatuses[s]
	return ok
}

// Occupies reports whether a reservation in this status holds its slot.
func (s ReservationStatus) Occupies() bool {
	return s != ReservationCancelled && s != ReservationNoShow
}

func ParseReservationStatus(s string) (ReservationStatus, error) {
	status := ReservationStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown reservation status %q", s)
	}
	return status, nil
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

type PaymentMethod string

const (
	MethodCard     PaymentMethod = "CARD"
	MethodBizum    PaymentMethod = "BIZUM"
	MethodOnsite   PaymentMethod = "ONSITE"
	MethodCredits  PaymentMethod = "CREDITS"
	MethodTransfer PaymentMethod = "TRANSFER"
	MethodCourtesy PaymentMethod = "COURTESY"
)

var PaymentMethods = []PaymentMethod{
	MethodCard, MethodBizum, MethodOnsite, MethodCredits, MethodTransfer, MethodCourtesy,
}

func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	method := PaymentMethod(s)
	if !method.Valid() {
		return "", fmt.Errorf("unknown payment method %q", s)
	}
	return method, nil
}

type OverrideAdjustment struct {
	DeltaCents int64  `json:"delta_cents" bson:"delta_cents"`
	Reason     string `json:"reason" bson:"reason"`
	Actor      string `json:"actor" bson:"actor"`
}

type Reservation struct {
	ID                     string              `json:"id" bson:"_id"`
	CourtID                string              `json:"court_id" bson:"court_id"`
	UserID                 string              `json:"user_id" bson:"user_id"`
	Start                  time.Time           `json:"start" bson:"start"`
	End                    time.Time           `json:"end" bson:"end"`
	DurationMinutes        int                 `json:"duration_minutes" bson:"duration_minutes"`
	Status                 ReservationStatus   `json:"status" bson:"status"`
	PaymentStatus          PaymentStatus       `json:"payment_status" bson:"payment_status"`
	BaseAmountCents        int64               `json:"base_amount_cents" bson:"base_amount_cents"`
	TotalAmountCents       int64               `json:"total_amount_cents" bson:"total_amount_cents"`
	PaymentMethod          *PaymentMethod      `json:"payment_method,omitempty" bson:"payment_method,omitempty"`
	AppliedTariffID        string              `json:"applied_tariff_id,omitempty" bson:"applied_tariff_id,omitempty"`
	AppliedDiscountPercent int                 `json:"applied_discount_percent" bson:"applied_discount_percent"`
	AppliedPromoCode       string              `json:"applied_promo_code,omitempty" bson:"applied_promo_code,omitempty"`
	PromoDiscountCents     int64               `json:"promo_discount_cents" bson:"promo_discount_cents"`
	Override               *OverrideAdjustment `json:"override_adjustment,omitempty" bson:"override_adjustment,omitempty"`
	Version                int64               `json:"version" bson:"version"`
	CreatedAt              time.Time           `json:"created_at" bson:"created_at"`
	PaidAt                 *time.Time          `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
	CheckedInAt            *time.Time          `json:"checked_in_at,omitempty" bson:"checked_in_at,omitempty"`
	CompletedAt            *time.Time          `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CancelledAt            *time.Time          `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CancelledBy            string              `json:"cancelled_by,omitempty" bson:"cancelled_by,omitempty"`
}

func (r Reservation) Overlaps(start, end time.Time) bool {
	return Overlaps(r.Start, r.End, start, end)
}

func (r Reservation) IsFree() bool {
	return r.TotalAmountCents == 0
}

type CreateReservationRequest struct {
	CourtID         string           `json:"court_id" validate:"required,uuid"`
	UserID          string           `json:"user_id,omitempty" validate:"omitempty,max=128"`
	Start           time.Time        `json:"start" validate:"required"`
	DurationMinutes int              `json:"duration_minutes" validate:"required,min=15,max=480"`
	Age             *int             `json:"age,omitempty" validate:"omitempty,min=0,max=150"`
	PromoCode       string           `json:"promo_code,omitempty" validate:"omitempty,max=32"`
	Override        *OverrideRequest `json:"override,omitempty"`
}

type OverrideRequest struct {
	DeltaCents int64  `json:"delta_cents" validate:"min=-1000000,max=1000000"`
	Reason     string `json:"reason" validate:"max=500"`
}
