package settler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/refund"
)

// StripeGateway charges cards with confirmed PaymentIntents.
type StripeGateway struct {
	intents *paymentintent.Client
	refunds *refund.Client
}

func NewStripeGateway(secretKey string) *StripeGateway {
	backend := stripe.GetBackend(stripe.APIBackend)
	return &StripeGateway{
		intents: &paymentintent.Client{B: backend, Key: secretKey},
		refunds: &refund.Client{B: backend, Key: secretKey},
	}
}

func (g *StripeGateway) Charge(ctx context.Context, p CardPayment) (CardOutcome, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(p.AmountCents),
		Currency:      stripe.String(p.Currency),
		PaymentMethod: stripe.String(p.PaymentMethod),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(p.IdempotencyKey)
	params.AddMetadata("reservation_id", p.ReservationID)
	params.AddMetadata("ledger_entry_id", p.IdempotencyKey)

	intent, err := g.intents.New(params)
	if err != nil {
		return CardOutcome{}, classifyStripeError(err)
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return CardOutcome{Reference: intent.ID}, nil
	case stripe.PaymentIntentStatusProcessing, stripe.PaymentIntentStatusRequiresAction:
		return CardOutcome{Reference: intent.ID, Pending: true}, nil
	default:
		return CardOutcome{}, &DeclineError{Reason: fmt.Sprintf("payment intent %s ended in status %s", intent.ID, intent.Status)}
	}
}

func (g *StripeGateway) Refund(ctx context.Context, p CardRefund) (CardOutcome, error) {
	if p.PaymentReference == "" {
		return CardOutcome{}, &DeclineError{Reason: "charge has no payment intent reference"}
	}
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(p.PaymentReference),
		Amount:        stripe.Int64(p.AmountCents),
	}
	params.Context = ctx
	params.SetIdempotencyKey(p.IdempotencyKey)

	r, err := g.refunds.New(params)
	if err != nil {
		return CardOutcome{}, classifyStripeError(err)
	}

	switch r.Status {
	case stripe.RefundStatusSucceeded:
		return CardOutcome{Reference: r.ID}, nil
	case stripe.RefundStatusPending:
		return CardOutcome{Reference: r.ID, Pending: true}, nil
	default:
		return CardOutcome{}, &DeclineError{Reason: fmt.Sprintf("refund %s ended in status %s", r.ID, r.Status)}
	}
}

// classifyStripeError keeps card and request errors final and lets server
// side failures be retried.
func classifyStripeError(err error) error {
	if isTimeout(err) {
		return fmt.Errorf("%w: %v", ErrGatewayTimeout, err)
	}
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return err
	}
	switch {
	case stripeErr.Type == stripe.ErrorTypeCard:
		reason := stripeErr.Msg
		if stripeErr.DeclineCode != "" {
			reason = string(stripeErr.DeclineCode)
		}
		return &DeclineError{Reason: reason}
	case stripeErr.HTTPStatusCode >= http.StatusInternalServerError, stripeErr.HTTPStatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("stripe %d: %s", stripeErr.HTTPStatusCode, stripeErr.Msg)
	default:
		return &DeclineError{Reason: stripeErr.Msg}
	}
}
