// Package settler moves money for one payment method. Settlers never touch
// the ledger; the payments service records what they report.
package settler

import (
	"context"
	"time"

	"courtside/pkg/model"
)

type Outcome string

const (
	OutcomeSucceeded Outcome = "SUCCEEDED"
	OutcomePending   Outcome = "PENDING"
	OutcomeFailed    Outcome = "FAILED"
	// OutcomeTimedOut means the result is unknown. The entry stays PENDING.
	OutcomeTimedOut Outcome = "TIMED_OUT"
)

const ReasonInsufficientBalance = "insufficient balance"

type Request struct {
	EntryID       string
	ReservationID string
	UserID        string
	AmountCents   int64
	Actor         model.Actor
	PaymentToken  string
	// ChargeReference is the external reference of the charge a refund
	// reverses.
	ChargeReference string
}

type Result struct {
	Outcome           Outcome
	ExternalReference string
	RedirectURL       string
	FailureKind       model.FailureKind
	FailureReason     string
}

func Succeeded(reference string) Result {
	return Result{Outcome: OutcomeSucceeded, ExternalReference: reference}
}

func Pending(reference string) Result {
	return Result{Outcome: OutcomePending, ExternalReference: reference}
}

func Declined(reason string) Result {
	return Result{Outcome: OutcomeFailed, FailureKind: model.FailurePermanent, FailureReason: reason}
}

func Transient(reason string) Result {
	return Result{Outcome: OutcomeFailed, FailureKind: model.FailureTransient, FailureReason: reason}
}

func TimedOut() Result {
	return Result{Outcome: OutcomeTimedOut}
}

// Finalization converts a final result into the ledger write.
func (r Result) Finalization(at time.Time) model.Finalization {
	f := model.Finalization{ExternalReference: r.ExternalReference, At: at}
	if r.Outcome == OutcomeSucceeded {
		f.Status = model.LedgerSucceeded
		return f
	}
	f.Status = model.LedgerFailed
	f.FailureKind = r.FailureKind
	f.FailureReason = r.FailureReason
	return f
}

type Settler interface {
	Method() model.PaymentMethod
	// Charge and Refund run outside any store transaction.
	Charge(ctx context.Context, req Request) Result
	Refund(ctx context.Context, req Request) Result
}

// Committer is implemented by settlers whose funds live in the store. The
// commit runs inside the finalize transaction and may turn a success into a
// failure.
type Committer interface {
	CommitCharge(ctx context.Context, req Request, now time.Time) (Result, error)
	CommitRefund(ctx context.Context, req Request, now time.Time) (Result, error)
}

type Registry map[model.PaymentMethod]Settler

func NewRegistry(settlers ...Settler) Registry {
	r := make(Registry, len(settlers))
	for _, s := range settlers {
		r[s.Method()] = s
	}
	return r
}

func (r Registry) Get(method model.PaymentMethod) (Settler, bool) {
	s, ok := r[method]
	return s, ok
}
