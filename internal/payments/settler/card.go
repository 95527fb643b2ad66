package settler

import (
	"context"
	"errors"
	"net"
	"time"

	"courtside/pkg/model"
)

var ErrGatewayTimeout = errors.New("card gateway timed out")

// DeclineError is a final refusal by the card network or the gateway.
type DeclineError struct {
	Reason string
}

func (e *DeclineError) Error() string {
	return "card declined: " + e.Reason
}

type CardPayment struct {
	AmountCents    int64
	Currency       string
	PaymentMethod  string
	ReservationID  string
	IdempotencyKey string
}

type CardRefund struct {
	PaymentReference string
	AmountCents      int64
	IdempotencyKey   string
}

type CardOutcome struct {
	Reference string
	// Pending is set when the gateway accepted the request but settles it
	// asynchronously.
	Pending bool
}

type CardGateway interface {
	Charge(ctx context.Context, p CardPayment) (CardOutcome, error)
	Refund(ctx context.Context, p CardRefund) (CardOutcome, error)
}

type CardSettler struct {
	gateway  CardGateway
	currency string
	timeout  time.Duration
}

func NewCardSettler(gateway CardGateway, currency string, timeout time.Duration) *CardSettler {
	return &CardSettler{
		gateway:  gateway,
		currency: currency,
		timeout:  timeout,
	}
}

func (s *CardSettler) Method() model.PaymentMethod { return model.MethodCard }

func (s *CardSettler) Charge(ctx context.Context, req Request) Result {
	if req.PaymentToken == "" {
		return Declined("missing card payment token")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outcome, err := s.gateway.Charge(ctx, CardPayment{
		AmountCents:    req.AmountCents,
		Currency:       s.currency,
		PaymentMethod:  req.PaymentToken,
		ReservationID:  req.ReservationID,
		IdempotencyKey: req.EntryID,
	})
	return cardResult(outcome, err)
}

func (s *CardSettler) Refund(ctx context.Context, req Request) Result {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outcome, err := s.gateway.Refund(ctx, CardRefund{
		PaymentReference: req.ChargeReference,
		AmountCents:      req.AmountCents,
		IdempotencyKey:   req.EntryID,
	})
	return cardResult(outcome, err)
}

func cardResult(outcome CardOutcome, err error) Result {
	if err == nil {
		if outcome.Pending {
			return Pending(outcome.Reference)
		}
		return Succeeded(outcome.Reference)
	}

	var decline *DeclineError
	if errors.As(err, &decline) {
		return Declined(decline.Reason)
	}
	if isTimeout(err) {
		return TimedOut()
	}
	return Transient(err.Error())
}

func isTimeout(err error) bool {
	if errors.Is(err, ErrGatewayTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
