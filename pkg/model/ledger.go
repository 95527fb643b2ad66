package model

import "time"

type LedgerDirection string

const (
	DirectionCharge LedgerDirection = "CHARGE"
	DirectionRefund LedgerDirection = "REFUND"
)

type LedgerStatus string

const (
	LedgerPending   LedgerStatus = "PENDING"
	LedgerSucceeded LedgerStatus = "SUCCEEDED"
	LedgerFailed    LedgerStatus = "FAILED"
)

func (s LedgerStatus) Final() bool {
	return s == LedgerSucceeded || s == LedgerFailed
}

type FailureKind string

const (
	FailureTransient FailureKind = "TRANSIENT"
	FailurePermanent FailureKind = "PERMANENT"
)

// LedgerEntry is append-only. After insert the only permitted write is the
// PENDING -> SUCCEEDED|FAILED finalization.
type LedgerEntry struct {
	ID                string          `json:"id" bson:"_id"`
	ReservationID     string          `json:"reservation_id" bson:"reservation_id"`
	UserID            string          `json:"user_id" bson:"user_id"`
	Direction         LedgerDirection `json:"direction" bson:"direction"`
	AmountCents       int64           `json:"amount_cents" bson:"amount_cents"`
	Method            PaymentMethod   `json:"method" bson:"method"`
	ExternalReference string          `json:"external_reference,omitempty" bson:"external_reference,omitempty"`
	Status            LedgerStatus    `json:"status" bson:"status"`
	FailureKind       FailureKind     `json:"failure_kind,omitempty" bson:"failure_kind,omitempty"`
	FailureReason     string          `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	Reason            string          `json:"reason,omitempty" bson:"reason,omitempty"`
	Actor             string          `json:"actor" bson:"actor"`
	// ChargeSlot is set to the reservation id while a CHARGE is PENDING or
	// SUCCEEDED; a unique partial index on it admits one live charge.
	ChargeSlot  string     `json:"-" bson:"charge_slot,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty" bson:"finalized_at,omitempty"`
}

// Finalization is the single permitted mutation of a ledger entry.
type Finalization struct {
	Status            LedgerStatus
	ExternalReference string
	FailureKind       FailureKind
	FailureReason     string
	At                time.Time
}

type LedgerSummary struct {
	ReservationID string        `json:"reservation_id"`
	ChargedCents  int64         `json:"charged_cents"`
	RefundedCents int64         `json:"refunded_cents"`
	NetPaidCents  int64         `json:"net_paid_cents"`
	Entries       []LedgerEntry `json:"entries"`
}

type Wallet struct {
	UserID       string    `json:"user_id" bson:"_id"`
	BalanceCents int64     `json:"balance_cents" bson:"balance_cents"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

type ChargeRequest struct {
	ReservationID string        `json:"reservation_id" validate:"required,uuid"`
	Method        PaymentMethod `json:"method" validate:"required,oneof=CARD BIZUM ONSITE CREDITS TRANSFER COURTESY"`
	AmountCents   int64         `json:"amount_cents" validate:"min=0,max=100000000"`
	// PaymentToken is the gateway payment method for CARD charges.
	PaymentToken string `json:"payment_token,omitempty" validate:"omitempty,max=255"`
}

type RefundRequest struct {
	ReservationID string `json:"reservation_id" validate:"required,uuid"`
	AmountCents   int64  `json:"amount_cents" validate:"required,min=1,max=100000000"`
	Reason        string `json:"reason" validate:"required,min=3,max=500"`
}

// SettlementConfirmation is the payload of a gateway callback or a staff
// confirmation of an asynchronous settlement.
type SettlementConfirmation struct {
	Succeeded         bool   `json:"succeeded"`
	ExternalReference string `json:"external_reference,omitempty" validate:"omitempty,max=255"`
	Reason            string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type TopUpRequest struct {
	AmountCents int64 `json:"amount_cents" validate:"required,min=1,max=10000000"`
}
