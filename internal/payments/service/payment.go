package service

import (
	"context"
	"errors"

	auditservice "courtside/internal/audit/service"
	paymentserrors "courtside/internal/payments/errors"
	"courtside/internal/payments/repository"
	"courtside/internal/payments/settler"
	"courtside/internal/payments/validator"
	"courtside/pkg/clock"
	"courtside/pkg/config"
	"courtside/pkg/db"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/model"
	"courtside/pkg/sanitizer"
	"courtside/pkg/validation"

	"github.com/google/uuid"
)

const sweepBatchSize = 200

// Reservations is the slice of the reservation state machine that settlement
// drives.
type Reservations interface {
	Get(ctx context.Context, id string) (*model.Reservation, error)
	MarkPaid(ctx context.Context, id, ledgerEntryID string, method model.PaymentMethod) (*model.Reservation, error)
	MarkRefunded(ctx context.Context, id, ledgerEntryID string) (*model.Reservation, error)
}

type SettlementResult struct {
	Entry *model.LedgerEntry `json:"entry"`
	// Reservation is set once the entry is final and succeeded.
	Reservation *model.Reservation `json:"reservation,omitempty"`
	RedirectURL string             `json:"redirect_url,omitempty"`
}

type PaymentService interface {
	// Charge settles the reservation's total through one method. At most one
	// charge per reservation is PENDING or SUCCEEDED at any time.
	Charge(ctx context.Context, actor model.Actor, req *model.ChargeRequest) (*SettlementResult, error)
	Refund(ctx context.Context, actor model.Actor, req *model.RefundRequest) (*SettlementResult, error)
	// ConfirmSettlement finalizes a PENDING entry from a gateway callback or a
	// staff confirmation. Final entries are returned unchanged.
	ConfirmSettlement(ctx context.Context, actor model.Actor, entryID string, req *model.SettlementConfirmation) (*SettlementResult, error)
	// SweepPending fails PENDING charges older than their method's timeout
	// and returns how many it finalized. PENDING refunds are never swept:
	// they keep counting against the refund bound until ConfirmSettlement
	// resolves them.
	SweepPending(ctx context.Context) (int, error)
	Ledger(ctx context.Context, actor model.Actor, reservationID string) (*model.LedgerSummary, error)
	TopUp(ctx context.Context, actor model.Actor, userID string, req *model.TopUpRequest) (*model.Wallet, error)
	Wallet(ctx context.Context, actor model.Actor, userID string) (*model.Wallet, error)
}

type paymentService struct {
	ledger       repository.LedgerRepository
	wallets      repository.WalletRepository
	reservations Reservations
	settlers     settler.Registry
	tx           db.TransactionManager
	validator    *validator.PaymentValidator
	audit        *auditservice.Recorder
	clock        clock.Clock
	cfg          *config.Config
}

func NewPaymentService(
	ledger repository.LedgerRepository,
	wallets repository.WalletRepository,
	reservations Reservations,
	settlers settler.Registry,
	tx db.TransactionManager,
	validator *validator.PaymentValidator,
	audit *auditservice.Recorder,
	clk clock.Clock,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		ledger:       ledger,
		wallets:      wallets,
		reservations: reservations,
		settlers:     settlers,
		tx:           tx,
		validator:    validator,
		audit:        audit,
		clock:        clk,
		cfg:          cfg,
	}
}

func (s *paymentService) Charge(ctx context.Context, actor model.Actor, req *model.ChargeRequest) (*SettlementResult, error) {
	req.ReservationID = sanitizer.SanitizeID(req.ReservationID)
	if err := s.validator.ValidateCharge(req); err != nil {
		s.cfg.Log.Warn("Charge validation failed", "reservation_id", req.ReservationID, "error", err)
		return nil, validation.ToAppError("Invalid charge", err)
	}
	st, ok := s.settlers.Get(req.Method)
	if !ok {
		return nil, apperrors.InvalidInput("payment method " + string(req.Method) + " is not available")
	}
	if req.Method == model.MethodOnsite && !actor.IsStaff() {
		return nil, apperrors.Forbidden("onsite payments are recorded by staff")
	}

	entry := &model.LedgerEntry{
		ID:            uuid.New().String(),
		ReservationID: req.ReservationID,
		Direction:     model.DirectionCharge,
		AmountCents:   req.AmountCents,
		Method:        req.Method,
		Status:        model.LedgerPending,
		Actor:         actor.String(),
		ChargeSlot:    req.ReservationID,
		CreatedAt:     s.clock.Now(),
	}

	batch := s.audit.NewBatch()
	err := s.tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		batch.Reset()
		reservation, err := s.reservations.Get(ctx, req.ReservationID)
		if err != nil {
			return err
		}
		if !actor.IsStaff() && actor.ID != reservation.UserID {
			return apperrors.Forbidden("reservation belongs to another user")
		}
		if reservation.Status == model.ReservationCancelled || reservation.Status == model.ReservationNoShow {
			return apperrors.InvalidTransition(string(reservation.Status), "charge")
		}
		if reservation.PaymentStatus != model.PaymentPending {
			return apperrors.AlreadySettled(reservation.ID)
		}
		if req.AmountCents != reservation.TotalAmountCents {
			return apperrors.InvalidInput("amount must equal the reservation total").
				WithDetail("total_amount_cents", reservation.TotalAmountCents)
		}
		entry.UserID = reservation.UserID

		if err := s.ledger.Guard(ctx, reservation.ID); err != nil {
			return apperrors.Internal("Failed to lock ledger", err)
		}
		if err := s.ledger.Insert(ctx, entry); err != nil {
			if errors.Is(err, paymentserrors.ErrChargeExists) {
				return apperrors.AlreadySettled(reservation.ID)
			}
			return apperrors.Internal("Failed to record charge", err)
		}
		return batch.Record(ctx, model.AuditEvent{
			SubjectType: model.SubjectLedgerEntry,
			SubjectID:   entry.ID,
			EventType:   "payment.charge_initiated",
			Summary:     string(entry.Method) + " charge started",
			Actor:       actor.String(),
			Metadata: map[string]any{
				"reservation_id": entry.ReservationID,
				"amount_cents":   entry.AmountCents,
				"method":         entry.Method,
			},
		})
	})
	if err != nil {
		s.logRejection("Charge rejected", "Failed to start charge", req.ReservationID, err)
		return nil, err
	}
	batch.Publish(ctx)

	settleReq := s.request(entry, actor, req.PaymentToken, "")
	result := st.Charge(ctx, settleReq)
	return s.conclude(ctx, actor, entry, st, settleReq, result)
}

func (s *paymentService) Refund(ctx context.Context, actor model.Actor, req *model.RefundRequest) (*SettlementResult, error) {
	if !actor.IsStaff() {
		return nil, apperrors.Forbidden("refunds are issued by staff")
	}
	req.ReservationID = sanitizer.SanitizeID(req.ReservationID)
	req.Reason = sanitizer.NormalizeReason(req.Reason)
	if err := s.validator.ValidateRefund(req); err != nil {
		s.cfg.Log.Warn("Refund validation failed", "reservation_id", req.ReservationID, "error", err)
		return nil, validation.ToAppError("Invalid refund", err)
	}

	var (
		entry  *model.LedgerEntry
		charge *model.LedgerEntry
	)
	batch := s.audit.NewBatch()
	err := s.tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		batch.Reset()
		if _, err := s.reservations.Get(ctx, req.ReservationID); err != nil {
			return err
		}
		if err := s.ledger.Guard(ctx, req.ReservationID); err != nil {
			return apperrors.Internal("Failed to lock ledger", err)
		}
		entries, err := s.ledger.FindByReservation(ctx, req.ReservationID)
		if err != nil {
			return apperrors.Internal("Failed to retrieve ledger", err)
		}

		var refundable int64
		charge, refundable = refundableAmount(entries)
		if charge == nil || req.AmountCents > refundable {
			return apperrors.InvalidRefundAmount(req.AmountCents, refundable)
		}

		entry = &model.LedgerEntry{
			ID:            uuid.New().String(),
			ReservationID: req.ReservationID,
			UserID:        charge.UserID,
			Direction:     model.DirectionRefund,
			AmountCents:   req.AmountCents,
			Method:        charge.Method,
			Status:        model.LedgerPending,
			Reason:        req.Reason,
			Actor:         actor.String(),
			CreatedAt:     s.clock.Now(),
		}
		if err := s.ledger.Insert(ctx, entry); err != nil {
			return apperrors.Internal("Failed to record refund", err)
		}
		return batch.Record(ctx, model.AuditEvent{
			SubjectType: model.SubjectLedgerEntry,
			SubjectID:   entry.ID,
			EventType:   "payment.refund_initiated",
			Summary:     req.Reason,
			Actor:       actor.String(),
			Metadata: map[string]any{
				"reservation_id":   entry.ReservationID,
				"charge_entry_id":  charge.ID,
				"amount_cents":     entry.AmountCents,
				"refundable_cents": refundable,
			},
		})
	})
	if err != nil {
		s.logRejection("Refund rejected", "Failed to start refund", req.ReservationID, err)
		return nil, err
	}
	batch.Publish(ctx)

	st, ok := s.settlers.Get(entry.Method)
	if !ok {
		// The entry stays PENDING for staff to confirm by hand.
		s.cfg.Log.Error("No settler for refund method", "entry_id", entry.ID, "method", entry.Method)
		return &SettlementResult{Entry: entry}, nil
	}
	settleReq := s.request(entry, actor, "", charge.ExternalReference)
	result := st.Refund(ctx, settleReq)
	return s.conclude(ctx, actor, entry, st, settleReq, result)
}

// refundableAmount returns the live successful charge and what is left of it
// after succeeded and in-flight refunds.
func refundableAmount(entries []model.LedgerEntry) (*model.LedgerEntry, int64) {
	var charge *model.LedgerEntry
	var refunded int64
	for i := range entries {
		e := entries[i]
		switch {
		case e.Direction == model.DirectionCharge && e.Status == model.LedgerSucceeded:
			charge = &entries[i]
		case e.Direction == model.DirectionRefund && e.Status != model.LedgerFailed:
			refunded += e.AmountCents
		}
	}
	if charge == nil {
		return nil, 0
	}
	return charge, max(charge.AmountCents-refunded, 0)
}

func (s *paymentService) ConfirmSettlement(ctx context.Context, actor model.Actor, entryID string, req *model.SettlementConfirmation) (*SettlementResult, error) {
	if !actor.IsStaff() {
		return nil, apperrors.Forbidden("staff role required")
	}
	entryID = sanitizer.SanitizeID(entryID)
	req.Reason = sanitizer.NormalizeReason(req.Reason)
	if err := s.validator.ValidateConfirmation(req); err != nil {
		return nil, validation.ToAppError("Invalid settlement confirmation", err)
	}

	entry, err := s.findEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status.Final() {
		s.cfg.Log.Info("Settlement already final", "entry_id", entry.ID, "status", entry.Status)
		return &SettlementResult{Entry: entry}, nil
	}

	result := settler.Succeeded(req.ExternalReference)
	if !req.Succeeded {
		reason := req.Reason
		if reason == "" {
			reason = "settlement rejected"
		}
		result = settler.Declined(reason)
		result.ExternalReference = req.ExternalReference
	}

	st, _ := s.settlers.Get(entry.Method)
	settleReq := s.request(entry, actor, "", "")
	return s.finalize(ctx, actor, entry, st, settleReq, result)
}

func (s *paymentService) SweepPending(ctx context.Context) (int, error) {
	now := s.clock.Now()
	cutoff := now.Add(-min(s.cfg.SettlementTimeout, s.cfg.TransferSettlementTimeout))
	entries, err := s.ledger.FindPendingCharges(ctx, cutoff, sweepBatchSize)
	if err != nil {
		s.cfg.Log.Error("Failed to load pending charges", "error", err)
		return 0, apperrors.Internal("Failed to retrieve pending charges", err)
	}

	swept := 0
	for i := range entries {
		entry := &entries[i]
		timeout := s.cfg.SettlementTimeout
		if entry.Method == model.MethodTransfer {
			timeout = s.cfg.TransferSettlementTimeout
		}
		if entry.CreatedAt.After(now.Add(-timeout)) {
			continue
		}

		st, _ := s.settlers.Get(entry.Method)
		settleReq := s.request(entry, model.SystemActor, "", "")
		if _, err := s.finalize(ctx, model.SystemActor, entry, st, settleReq, settler.Transient("settlement timed out")); err != nil {
			s.cfg.Log.Error("Failed to expire pending charge", "entry_id", entry.ID, "error", err)
			continue
		}
		swept++
	}

	if swept > 0 {
		s.cfg.Log.Info("Pending charges expired", "count", swept)
	}
	return swept, nil
}

func (s *paymentService) Ledger(ctx context.Context, actor model.Actor, reservationID string) (*model.LedgerSummary, error) {
	reservation, err := s.reservations.Get(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && actor.ID != reservation.UserID {
		return nil, apperrors.Forbidden("reservation belongs to another user")
	}

	entries, err := s.ledger.FindByReservation(ctx, reservationID)
	if err != nil {
		s.cfg.Log.Error("Failed to list ledger", "reservation_id", reservationID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve ledger", err)
	}

	summary := &model.LedgerSummary{ReservationID: reservationID, Entries: entries}
	for _, e := range entries {
		if e.Status != model.LedgerSucceeded {
			continue
		}
		if e.Direction == model.DirectionCharge {
			summary.ChargedCents += e.AmountCents
		} else {
			summary.RefundedCents += e.AmountCents
		}
	}
	summary.NetPaidCents = summary.ChargedCents - summary.RefundedCents
	return summary, nil
}

func (s *paymentService) TopUp(ctx context.Context, actor model.Actor, userID string, req *model.TopUpRequest) (*model.Wallet, error) {
	if !actor.IsStaff() {
		return nil, apperrors.Forbidden("staff role required")
	}
	userID = sanitizer.SanitizeID(userID)
	if userID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}
	if err := s.validator.ValidateTopUp(req); err != nil {
		return nil, validation.ToAppError("Invalid top-up", err)
	}

	var wallet *model.Wallet
	batch := s.audit.NewBatch()
	err := s.tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		batch.Reset()
		var err error
		if wallet, err = s.wallets.Credit(ctx, userID, req.AmountCents, s.clock.Now()); err != nil {
			return apperrors.Internal("Failed to credit wallet", err)
		}
		return batch.Record(ctx, model.AuditEvent{
			SubjectType: model.SubjectWallet,
			SubjectID:   userID,
			EventType:   "wallet.topped_up",
			Summary:     "wallet credited",
			Actor:       actor.String(),
			Metadata: map[string]any{
				"amount_cents":  req.AmountCents,
				"balance_cents": wallet.BalanceCents,
			},
		})
	})
	if err != nil {
		s.cfg.Log.Error("Failed to top up wallet", "user_id", userID, "error", err)
		return nil, err
	}
	batch.Publish(ctx)

	s.cfg.Log.Info("Wallet topped up", "user_id", userID, "amount_cents", req.AmountCents)
	return wallet, nil
}

func (s *paymentService) Wallet(ctx context.Context, actor model.Actor, userID string) (*model.Wallet, error) {
	if !actor.IsStaff() && actor.ID != userID {
		return nil, apperrors.Forbidden("wallet belongs to another user")
	}
	wallet, err := s.wallets.Find(ctx, userID)
	if err != nil {
		s.cfg.Log.Error("Failed to load wallet", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve wallet", err)
	}
	return wallet, nil
}

// conclude turns a settler result into the caller's answer. Pending and timed
// out results leave the entry PENDING.
func (s *paymentService) conclude(ctx context.Context, actor model.Actor, entry *model.LedgerEntry, st settler.Settler, req settler.Request, result settler.Result) (*SettlementResult, error) {
	switch result.Outcome {
	case settler.OutcomePending:
		s.cfg.Log.Info("Settlement pending",
			"entry_id", entry.ID,
			"direction", entry.Direction,
			"method", entry.Method,
			"reference", result.ExternalReference,
		)
		return &SettlementResult{Entry: entry, RedirectURL: result.RedirectURL}, nil
	case settler.OutcomeTimedOut:
		s.cfg.Log.Warn("Settlement gateway timed out", "entry_id", entry.ID, "method", entry.Method)
		return nil, apperrors.GatewayTimeout(entry.ID)
	}

	settled, err := s.finalize(ctx, actor, entry, st, req, result)
	if err != nil {
		return nil, err
	}
	if settled.Entry.Status == model.LedgerSucceeded {
		return settled, nil
	}
	return nil, s.failure(ctx, settled.Entry)
}

// finalize writes the PENDING -> final transition and, on success, moves the
// reservation's payment status in the same transaction.
func (s *paymentService) finalize(ctx context.Context, actor model.Actor, entry *model.LedgerEntry, st settler.Settler, req settler.Request, result settler.Result) (*SettlementResult, error) {
	settled := &SettlementResult{}
	batch := s.audit.NewBatch()
	err := s.tx.ExecuteTransaction(batch.Enclose(ctx), func(ctx context.Context) error {
		batch.Reset()
		now := s.clock.Now()
		outcome := result

		if committer, ok := st.(settler.Committer); ok && outcome.Outcome == settler.OutcomeSucceeded {
			var err error
			if entry.Direction == model.DirectionCharge {
				outcome, err = committer.CommitCharge(ctx, req, now)
			} else {
				outcome, err = committer.CommitRefund(ctx, req, now)
			}
			if err != nil {
				return apperrors.Internal("Failed to move wallet funds", err)
			}
		}
		if outcome.ExternalReference == "" {
			outcome.ExternalReference = entry.ExternalReference
		}

		final, err := s.ledger.Finalize(ctx, entry.ID, outcome.Finalization(now))
		if err != nil {
			if errors.Is(err, paymentserrors.ErrNotPending) {
				return apperrors.Conflict("ledger entry was finalized concurrently")
			}
			return apperrors.Internal("Failed to finalize ledger entry", err)
		}
		settled.Entry = final

		if final.Status == model.LedgerSucceeded {
			if final.Direction == model.DirectionCharge {
				settled.Reservation, err = s.reservations.MarkPaid(ctx, final.ReservationID, final.ID, final.Method)
			} else {
				settled.Reservation, err = s.reservations.MarkRefunded(ctx, final.ReservationID, final.ID)
			}
			if err != nil {
				return err
			}
		}

		return batch.Record(ctx, model.AuditEvent{
			SubjectType: model.SubjectLedgerEntry,
			SubjectID:   final.ID,
			EventType:   eventType(final),
			Summary:     string(final.Direction) + " " + string(final.Status),
			Actor:       actor.String(),
			Metadata: map[string]any{
				"reservation_id":     final.ReservationID,
				"amount_cents":       final.AmountCents,
				"method":             final.Method,
				"external_reference": final.ExternalReference,
				"failure_kind":       final.FailureKind,
				"failure_reason":     final.FailureReason,
			},
		})
	})
	if err != nil {
		s.logRejection("Settlement finalize rejected", "Failed to finalize settlement", entry.ReservationID, err)
		return nil, err
	}
	batch.Publish(ctx)

	s.cfg.Log.Info("Settlement finalized",
		"entry_id", settled.Entry.ID,
		"direction", settled.Entry.Direction,
		"method", settled.Entry.Method,
		"status", settled.Entry.Status,
	)
	return settled, nil
}

func eventType(e *model.LedgerEntry) string {
	prefix := "payment.charge_"
	if e.Direction == model.DirectionRefund {
		prefix = "payment.refund_"
	}
	if e.Status == model.LedgerSucceeded {
		return prefix + "succeeded"
	}
	return prefix + "failed"
}

// failure maps a FAILED entry to the error returned to the caller.
func (s *paymentService) failure(ctx context.Context, entry *model.LedgerEntry) error {
	switch {
	case entry.FailureReason == settler.ReasonInsufficientBalance:
		var balance int64
		if wallet, err := s.wallets.Find(ctx, entry.UserID); err == nil {
			balance = wallet.BalanceCents
		}
		return apperrors.InsufficientBalance(balance, entry.AmountCents)
	case entry.FailureKind == model.FailureTransient:
		return apperrors.GatewayError(entry.ID, entry.FailureReason)
	default:
		return apperrors.PaymentDeclined(entry.ID, entry.FailureReason)
	}
}

func (s *paymentService) request(entry *model.LedgerEntry, actor model.Actor, token, chargeReference string) settler.Request {
	return settler.Request{
		EntryID:         entry.ID,
		ReservationID:   entry.ReservationID,
		UserID:          entry.UserID,
		AmountCents:     entry.AmountCents,
		Actor:           actor,
		PaymentToken:    token,
		ChargeReference: chargeReference,
	}
}

func (s *paymentService) findEntry(ctx context.Context, id string) (*model.LedgerEntry, error) {
	entry, err := s.ledger.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, paymentserrors.ErrEntryNotFound) {
			return nil, apperrors.NotFoundWithID("Ledger entry", id)
		}
		s.cfg.Log.Error("Failed to load ledger entry", "entry_id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve ledger entry", err)
	}
	return entry, nil
}

func (s *paymentService) logRejection(rejected, failed, reservationID string, err error) {
	if appErr := apperrors.AsAppError(err); appErr.Code == apperrors.CodeInternal {
		s.cfg.Log.Error(failed, "reservation_id", reservationID, "error", err)
		return
	}
	s.cfg.Log.Warn(rejected, "reservation_id", reservationID, "error", err)
}
