package settler

import (
	"context"
	"errors"
	"net/url"
	"time"

	paymentserrors "courtside/internal/payments/errors"
	"courtside/internal/payments/repository"
	"courtside/pkg/model"
)

// BizumSettler hands the user a redirect; the channel confirms through the
// settlement callback.
type BizumSettler struct {
	redirect string
}

func NewBizumSettler(redirect string) *BizumSettler {
	return &BizumSettler{redirect: redirect}
}

func (s *BizumSettler) Method() model.PaymentMethod { return model.MethodBizum }

func (s *BizumSettler) Charge(_ context.Context, req Request) Result {
	result := Pending("bizum:" + req.EntryID)
	result.RedirectURL = s.redirect + "?" + url.Values{"reference": {req.EntryID}}.Encode()
	return result
}

func (s *BizumSettler) Refund(_ context.Context, req Request) Result {
	return Pending("bizum-refund:" + req.EntryID)
}

// OnsiteSettler records cash or terminal payments taken by staff at the desk.
type OnsiteSettler struct{}

func (OnsiteSettler) Method() model.PaymentMethod { return model.MethodOnsite }

func (OnsiteSettler) Charge(_ context.Context, req Request) Result {
	return Succeeded("onsite:" + req.Actor.String())
}

func (OnsiteSettler) Refund(_ context.Context, req Request) Result {
	return Succeeded("onsite:" + req.Actor.String())
}

// TransferSettler waits for staff to confirm that the bank transfer arrived.
type TransferSettler struct{}

func (TransferSettler) Method() model.PaymentMethod { return model.MethodTransfer }

func (TransferSettler) Charge(_ context.Context, req Request) Result {
	return Pending("transfer:" + req.EntryID)
}

func (TransferSettler) Refund(_ context.Context, req Request) Result {
	return Pending("transfer-refund:" + req.EntryID)
}

// CourtesySettler settles zero amounts.
type CourtesySettler struct{}

func (CourtesySettler) Method() model.PaymentMethod { return model.MethodCourtesy }

func (CourtesySettler) Charge(_ context.Context, req Request) Result {
	if req.AmountCents != 0 {
		return Declined("courtesy settles only zero amounts")
	}
	return Succeeded("courtesy:" + req.Actor.String())
}

func (CourtesySettler) Refund(context.Context, Request) Result {
	return Declined("courtesy charges cannot be refunded")
}

// CreditsSettler pays from the user's wallet. The debit happens in the
// finalize transaction as a conditional decrement.
type CreditsSettler struct {
	wallets repository.WalletRepository
}

func NewCreditsSettler(wallets repository.WalletRepository) *CreditsSettler {
	return &CreditsSettler{wallets: wallets}
}

func (s *CreditsSettler) Method() model.PaymentMethod { return model.MethodCredits }

func (s *CreditsSettler) Charge(_ context.Context, req Request) Result {
	return Succeeded("credits:" + req.EntryID)
}

func (s *CreditsSettler) Refund(_ context.Context, req Request) Result {
	return Succeeded("credits:" + req.EntryID)
}

func (s *CreditsSettler) CommitCharge(ctx context.Context, req Request, now time.Time) (Result, error) {
	if _, err := s.wallets.Debit(ctx, req.UserID, req.AmountCents, now); err != nil {
		if errors.Is(err, paymentserrors.ErrInsufficientBalance) {
			return Declined(ReasonInsufficientBalance), nil
		}
		return Result{}, err
	}
	return Succeeded("credits:" + req.EntryID), nil
}

func (s *CreditsSettler) CommitRefund(ctx context.Context, req Request, now time.Time) (Result, error) {
	if _, err := s.wallets.Credit(ctx, req.UserID, req.AmountCents, now); err != nil {
		return Result{}, err
	}
	return Succeeded("credits:" + req.EntryID), nil
}
