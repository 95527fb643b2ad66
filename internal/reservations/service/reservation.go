package service

import (
	"context"
	"errors"
	"strings"
	"time"

	auditservice "courtside/internal/audit/service"
	courtserrors "courtside/internal/courts/errors"
	courtsrepo "courtside/internal/courts/repository"
	maintenancerepo "courtside/internal/maintenance/repository"
	"courtside/internal/pricing"
	reservationerrors "courtside/internal/reservations/errors"
	"courtside/internal/reservations/repository"
	"courtside/internal/reservations/validator"
	"courtside/internal/tariffs/engine"
	"courtside/pkg/clock"
	"courtside/pkg/config"
	"courtside/pkg/db"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/model"
	"courtside/pkg/sanitizer"
	"courtside/pkg/validation"

	"github.com/google/uuid"
)

const noShowBatchSize = 200

type TariffEvaluator interface {
	Evaluate(ctx context.Context, userID, courtID string, age *int) (engine.Evaluation, error)
}

type PromoResolver interface {
	Resolve(ctx context.Context, code string) (*model.PromoCode, error)
}

type Quote struct {
	CourtID             string            `json:"court_id"`
	UserID              string            `json:"user_id"`
	Start               time.Time         `json:"start"`
	End                 time.Time         `json:"end"`
	DurationMinutes     int               `json:"duration_minutes"`
	Breakdown           pricing.Breakdown `json:"breakdown"`
	AppliedTariffID     string            `json:"applied_tariff_id,omitempty"`
	DiscountPercent     int               `json:"applied_discount_percent"`
	PromoCode           string            `json:"promo_code,omitempty"`
	PendingVerification *model.Tariff     `json:"pending_verification,omitempty"`
}

type CreateResult struct {
	Reservation *model.Reservation `json:"reservation"`
	// PendingVerification names a better tariff the user could enroll in.
	PendingVerification *model.Tariff `json:"pending_verification,omitempty"`
}

type ReservationService interface {
	Quote(ctx context.Context, actor model.Actor, req *model.CreateReservationRequest) (*Quote, error)
	Create(ctx context.Context, actor model.Actor, req *model.CreateReservationRequest) (*CreateResult, error)
	Get(ctx context.Context, id string) (*model.Reservation, error)
	GetForActor(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error)
	ListForCourt(ctx context.Context, courtID string, from, to time.Time) ([]model.Reservation, error)
	ListForUser(ctx context.Context, userID string, limit int, offset int64) ([]model.Reservation, int64, error)

	// MarkPaid records a successful charge. It is idempotent on PAID. A
	// reservation cancelled while its charge was in flight keeps its status and
	// only has its payment recorded.
	MarkPaid(ctx context.Context, id, ledgerEntryID string, method model.PaymentMethod) (*model.Reservation, error)
	// MarkRefunded sets paymentStatus REFUNDED whatever the lifecycle status.
	MarkRefunded(ctx context.Context, id, ledgerEntryID string) (*model.Reservation, error)
	CheckIn(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error)
	CheckOut(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error)
	Cancel(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error)
	MarkNoShow(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error)
	// SweepNoShows marks every PAID reservation whose check-in window has
	// closed and returns how many it changed.
	SweepNoShows(ctx context.Context) (int, error)
}

type reservationService struct {
	repo        repository.ReservationRepository
	courts      courtsrepo.CourtRepository
	maintenance maintenancerepo.MaintenanceRepository
	tariffs     TariffEvaluator
	promos      PromoResolver
	tx          db.TransactionManager
	validator   *validator.ReservationValidator
	audit       *auditservice.Recorder
	clock       clock.Clock
	cfg         *config.Config
}

func NewReservationService(
	repo repository.ReservationRepository,
	courts courtsrepo.CourtRepository,
	maintenance maintenancerepo.MaintenanceRepository,
	tariffs TariffEvaluator,
	promos PromoResolver,
	tx db.TransactionManager,
	validator *validator.ReservationValidator,
	audit *auditservice.Recorder,
	clk clock.Clock,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:        repo,
		courts:      courts,
		maintenance: maintenance,
		tariffs:     tariffs,
		promos:      promos,
		tx:          tx,
		validator:   validator,
		audit:       audit,
		clock:       clk,
		cfg:         cfg,
	}
}

func (s *reservationService) Quote(ctx context.Context, actor model.Actor, req *model.CreateReservationRequest) (*Quote, error) {
	quote, _, err := s.quote(ctx, actor, req)
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// quote validates the request and prices it. It reads without locking; Create
// re-checks the interval inside its transaction.
func (s *reservationService) quote(ctx context.Context, actor model.Actor, req *model.CreateReservationRequest) (*Quote, *model.Court, error) {
	req.CourtID = sanitizer.SanitizeID(req.CourtID)
	req.UserID = strings.TrimSpace(req.UserID)
	req.PromoCode = sanitizer.SanitizePromoCode(req.PromoCode)
	req.Start = req.Start.UTC().Truncate(time.Minute)
	if req.Override != nil {
		req.Override.Reason = sanitizer.NormalizeReason(req.Override.Reason)
	}

	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "court_id", req.CourtID, "error", err)
		return nil, nil, validation.ToAppError("Invalid reservation", err)
	}

	userID := actor.ID
	if req.UserID != "" && req.UserID != actor.ID {
		if !actor.IsStaff() {
			return nil, nil, apperrors.Forbidden("only staff can book for another user")
		}
		userID = req.UserID
	}
	var delta int64
	if req.Override != nil && req.Override.DeltaCents != 0 {
		if !actor.IsStaff() {
			return nil, nil, apperrors.Forbidden("only staff can override the price")
		}
		delta = req.Override.DeltaCents
	}

	if !req.Start.After(s.clock.Now()) {
		return nil, nil, apperrors.InvalidInput("start must be in the future")
	}
	end := req.Start.Add(time.Duration(req.DurationMinutes) * time.Minute)

	court, err := s.findCourt(ctx, req.CourtID)
	if err != nil {
		return nil, nil, err
	}
	if !court.Active {
		return nil, nil, apperrors.InvalidInput("court is not accepting reservations")
	}
	if !court.Covers(req.Start, end, s.cfg.Location) {
		return nil, nil, apperrors.InvalidInput("interval is outside the court's operating hours")
	}

	evaluation, err := s.tariffs.Evaluate(ctx, userID, court.ID, req.Age)
	if err != nil {
		return nil, nil, err
	}
	var promo *model.PromoCode
	if req.PromoCode != "" {
		if promo, err = s.promos.Resolve(ctx, req.PromoCode); err != nil {
			return nil, nil, err
		}
	}

	breakdown, err := pricing.Price(court.HourlyRateCents, req.DurationMinutes, evaluation.DiscountPercent(), promo, delta)
	if err != nil {
		s.cfg.Log.Error("Failed to price reservation", "court_id", court.ID, "error", err)
		return nil, nil, apperrors.Internal("Failed to price reservation", err)
	}

	return &Quote{
		CourtID:             court.ID,
		UserID:              userID,
		Start:               req.Start,
		End:                 end,
		DurationMinutes:     req.DurationMinutes,
		Breakdown:           breakdown,
		AppliedTariffID:     evaluation.TariffID(),
		DiscountPercent:     evaluation.DiscountPercent(),
		PromoCode:           req.PromoCode,
		PendingVerification: evaluation.PendingVerification,
	}, court, nil
}

// Create claims the slot atomically. The court's booking version is bumped
// first so that concurrent claims on the same court conflict in the store and
// re-run their overlap checks against committed data.
func (s *reservationService) Create(ctx context.Context, actor model.Actor, req *model.CreateReservationRequest) (*CreateResult, error) {
	quote, court, err := s.quote(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	reservation := &model.Reservation{
		ID:                     uuid.New().String(),
		CourtID:                court.ID,
		UserID:                 quote.UserID,
		Start:                  quote.Start,
		End:                    quote.End,
		DurationMinutes:        quote.DurationMinutes,
		Status:                 model.ReservationPending,
		PaymentStatus:          model.PaymentPending,
		BaseAmountCents:        quote.Breakdown.BaseCents,
		TotalAmountCents:       quote.Breakdown.TotalCents,
		AppliedTariffID:        quote.AppliedTariffID,
		AppliedDiscountPercent: quote.DiscountPercent,
		AppliedPromoCode:       quote.PromoCode,
		PromoDiscountCents:     quote.Breakdown.PromoDiscountCents,
		Version:                1,
		CreatedAt:              s.clock.Now(),
	}
	if quote.Breakdown.OverrideDeltaCents != 0 {
		reservation.Override = &model.OverrideAdjustment{
			DeltaCents: quote.Breakdown.OverrideDeltaCents,
			Reason:     req.Override.Reason,
			Actor:      actor.String(),
		}
	}

	batch := s.audit.NewBatch()
	err = s.tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		batch.Reset()
		if err := s.claimSlot(ctx, reservation); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, reservation); err != nil {
			return apperrors.Internal("Failed to create reservation", err)
		}

		if err := batch.Record(ctx, model.AuditEvent{
			SubjectType: model.SubjectReservation,
			SubjectID:   reservation.ID,
			EventType:   "reservation.created",
			Summary:     "reservation created on court " + court.Name,
			Actor:       actor.String(),
			Metadata: map[string]any{
				"court_id":           reservation.CourtID,
				"user_id":            reservation.UserID,
				"start":              reservation.Start,
				"end":                reservation.End,
				"total_amount_cents": reservation.TotalAmountCents,
				"applied_tariff_id":  reservation.AppliedTariffID,
				"promo_code":         reservation.AppliedPromoCode,
			},
		}); err != nil {
			return err
		}
		if reservation.Override == nil {
			return nil
		}
		return batch.Record(ctx, model.AuditEvent{
			SubjectType: model.SubjectReservation,
			SubjectID:   reservation.ID,
			EventType:   "reservation.price_overridden",
			Summary:     reservation.Override.Reason,
			Actor:       actor.String(),
			Metadata:    map[string]any{"delta_cents": reservation.Override.DeltaCents},
		})
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeSlotConflict) {
			s.cfg.Log.Warn("Reservation slot conflict", "court_id", reservation.CourtID, "start", reservation.Start, "end", reservation.End)
		} else {
			s.cfg.Log.Error("Failed to create reservation", "court_id", reservation.CourtID, "error", err)
		}
		return nil, err
	}
	batch.Publish(ctx)

	s.cfg.Log.Info("Reservation created",
		"id", reservation.ID,
		"court_id", reservation.CourtID,
		"user_id", reservation.UserID,
		"start", reservation.Start,
		"total_amount_cents", reservation.TotalAmountCents,
	)
	return &CreateResult{Reservation: reservation, PendingVerification: quote.PendingVerification}, nil
}

func (s *reservationService) claimSlot(ctx context.Context, reservation *model.Reservation) error {
	if err := s.courts.BumpBookingVersion(ctx, reservation.CourtID); err != nil {
		if errors.Is(err, courtserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Court", reservation.CourtID)
		}
		return apperrors.Internal("Failed to lock court", err)
	}

	windows, err := s.maintenance.FindOverlapping(ctx, reservation.CourtID, reservation.Start, reservation.End)
	if err != nil {
		return apperrors.Internal("Failed to check maintenance windows", err)
	}
	if len(windows) > 0 {
		return apperrors.SlotConflict("court is under maintenance during the requested interval").
			WithDetail("maintenance_id", windows[0].ID)
	}

	existing, err := s.repo.FindOverlapping(ctx, reservation.CourtID, reservation.Start, reservation.End)
	if err != nil {
		return apperrors.Internal("Failed to check reservations", err)
	}
	if len(existing) > 0 {
		return apperrors.SlotConflict("the requested interval is already booked")
	}
	return nil
}

func (s *reservationService) Get(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}
	return reservation, nil
}

func (s *reservationService) GetForActor(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error) {
	reservation, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, reservation); err != nil {
		return nil, err
	}
	return reservation, nil
}

func (s *reservationService) ListForCourt(ctx context.Context, courtID string, from, to time.Time) ([]model.Reservation, error) {
	if !to.After(from) {
		return nil, apperrors.InvalidInput("to must be after from")
	}
	reservations, err := s.repo.FindByCourtRange(ctx, courtID, from, to)
	if err != nil {
		s.cfg.Log.Error("Failed to list reservations", "court_id", courtID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve reservations", err)
	}
	return reservations, nil
}

func (s *reservationService) ListForUser(ctx context.Context, userID string, limit int, offset int64) ([]model.Reservation, int64, error) {
	count, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		s.cfg.Log.Error("Failed to count reservations", "user_id", userID, "error", err)
		return nil, 0, apperrors.Internal("Failed to count reservations", err)
	}
	reservations, err := s.repo.FindByUser(ctx, userID, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list reservations", "user_id", userID, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve reservations", err)
	}
	return reservations, count, nil
}

func (s *reservationService) MarkPaid(ctx context.Context, id, ledgerEntryID string, method model.PaymentMethod) (*model.Reservation, error) {
	return s.mutate(ctx, model.SystemActor, id, func(_ context.Context, r *model.Reservation, now time.Time) (string, error) {
		switch {
		case r.Status == model.ReservationPaid && r.PaymentStatus == model.PaymentPaid:
			return "", nil
		case r.Status == model.ReservationPending:
			r.Status = model.ReservationPaid
		case r.PaymentStatus == model.PaymentPending:
			// Settled after leaving PENDING: record the payment, keep the status.
		default:
			return "", apperrors.InvalidTransition(string(r.Status), string(EventMarkPaid))
		}
		r.PaymentStatus = model.PaymentPaid
		r.PaidAt = &now
		r.PaymentMethod = &method
		if r.Status == model.ReservationPaid {
			return "reservation.paid", nil
		}
		return "reservation.late_settlement", nil
	}, map[string]any{"ledger_entry_id": ledgerEntryID, "method": method})
}

func (s *reservationService) MarkRefunded(ctx context.Context, id, ledgerEntryID string) (*model.Reservation, error) {
	return s.mutate(ctx, model.SystemActor, id, func(_ context.Context, r *model.Reservation, _ time.Time) (string, error) {
		if r.PaymentStatus == model.PaymentRefunded {
			return "", nil
		}
		r.PaymentStatus = model.PaymentRefunded
		return "reservation.refunded", nil
	}, map[string]any{"ledger_entry_id": ledgerEntryID})
}

// CheckIn checks, in order, the transition, the check-in window
// [start - tolerance, end] and the payment.
func (s *reservationService) CheckIn(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error) {
	return s.transition(ctx, actor, id, EventCheckIn, func(r *model.Reservation, now time.Time) error {
		opens := r.Start.Add(-s.cfg.CheckInTolerance)
		if now.Before(opens) || now.After(r.End) {
			return apperrors.CheckInWindowClosed("check-in is only possible from " + opens.In(s.cfg.Location).Format(time.RFC3339) + " until the reservation ends")
		}
		if r.PaymentStatus != model.PaymentPaid && !r.IsFree() {
			return apperrors.PaymentRequired("reservation must be paid before check-in")
		}
		r.CheckedInAt = &now
		return nil
	})
}

func (s *reservationService) CheckOut(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error) {
	return s.transition(ctx, actor, id, EventCheckOut, func(r *model.Reservation, now time.Time) error {
		r.CompletedAt = &now
		return nil
	})
}

// Cancel never refunds; refunds go through payments explicitly.
func (s *reservationService) Cancel(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error) {
	return s.transition(ctx, actor, id, EventCancel, func(r *model.Reservation, now time.Time) error {
		r.CancelledAt = &now
		r.CancelledBy = actor.String()
		return nil
	})
}

func (s *reservationService) MarkNoShow(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error) {
	if !actor.IsStaff() {
		return nil, apperrors.Forbidden("staff role required")
	}
	return s.transition(ctx, actor, id, EventNoShow, func(r *model.Reservation, now time.Time) error {
		if !now.After(r.End) {
			return apperrors.InvalidTransition(string(r.Status), string(EventNoShow)).
				WithDetail("reason", "check-in window still open")
		}
		return nil
	})
}

func (s *reservationService) SweepNoShows(ctx context.Context) (int, error) {
	candidates, err := s.repo.FindNoShowCandidates(ctx, s.clock.Now(), noShowBatchSize)
	if err != nil {
		s.cfg.Log.Error("Failed to load no-show candidates", "error", err)
		return 0, apperrors.Internal("Failed to retrieve reservations", err)
	}

	marked := 0
	for _, candidate := range candidates {
		if _, err := s.MarkNoShow(ctx, model.SystemActor, candidate.ID); err != nil {
			if apperrors.HasCode(err, apperrors.CodeInvalidTransition) || apperrors.HasCode(err, apperrors.CodeConflict) {
				continue
			}
			s.cfg.Log.Error("Failed to mark no-show", "id", candidate.ID, "error", err)
			continue
		}
		marked++
	}

	if marked > 0 {
		s.cfg.Log.Info("No-shows marked", "count", marked)
	}
	return marked, nil
}

var eventTypes = map[Event]string{
	EventCheckIn:  "reservation.checked_in",
	EventCheckOut: "reservation.completed",
	EventCancel:   "reservation.cancelled",
	EventNoShow:   "reservation.no_show",
}

// transition applies a lifecycle event through the transition table. guard
// runs after the table check and may reject or fill in timestamps.
func (s *reservationService) transition(ctx context.Context, actor model.Actor, id string, event Event, guard func(r *model.Reservation, now time.Time) error) (*model.Reservation, error) {
	return s.mutate(ctx, actor, id, func(ctx context.Context, r *model.Reservation, now time.Time) (string, error) {
		if err := authorize(actor, r); err != nil {
			return "", err
		}
		from := r.Status
		to, ok := nextStatus(event, from)
		if !ok {
			return "", apperrors.InvalidTransition(string(from), string(event))
		}
		if err := guard(r, now); err != nil {
			return "", err
		}
		if event == EventCancel {
			if err := s.courts.BumpBookingVersion(ctx, r.CourtID); err != nil {
				return "", apperrors.Internal("Failed to lock court", err)
			}
		}
		r.Status = to
		return eventTypes[event], nil
	}, nil)
}

// mutate loads the reservation inside a transaction, lets change modify a
// copy and writes it back under optimistic versioning. change returns the
// audit event type, or "" for a no-op.
func (s *reservationService) mutate(ctx context.Context, actor model.Actor, id string, change func(ctx context.Context, r *model.Reservation, now time.Time) (string, error), metadata map[string]any) (*model.Reservation, error) {
	var result *model.Reservation
	batch := s.audit.NewBatch()
	err := s.tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		batch.Reset()
		current, err := s.Get(ctx, id)
		if err != nil {
			return err
		}

		updated := *current
		eventType, err := change(ctx, &updated, s.clock.Now())
		if err != nil {
			return err
		}
		if eventType == "" {
			result = current
			return nil
		}

		updated.Version = current.Version + 1
		if err := s.repo.Update(ctx, &updated, current.Version); err != nil {
			if errors.Is(err, reservationerrors.ErrVersionConflict) {
				return apperrors.Conflict("reservation was modified concurrently")
			}
			return apperrors.Internal("Failed to update reservation", err)
		}
		result = &updated

		meta := map[string]any{
			"from":           current.Status,
			"to":             updated.Status,
			"payment_status": updated.PaymentStatus,
			"court_id":       updated.CourtID,
		}
		for k, v := range metadata {
			meta[k] = v
		}
		return batch.Record(ctx, model.AuditEvent{
			SubjectType: model.SubjectReservation,
			SubjectID:   id,
			EventType:   eventType,
			Summary:     string(current.Status) + " -> " + string(updated.Status),
			Actor:       actor.String(),
			Metadata:    meta,
		})
	})
	if err != nil {
		if appErr := apperrors.AsAppError(err); appErr.Code == apperrors.CodeInternal {
			s.cfg.Log.Error("Failed to update reservation", "id", id, "error", err)
		} else {
			s.cfg.Log.Warn("Reservation change rejected", "id", id, "code", appErr.Code, "error", err)
		}
		return nil, err
	}
	batch.Publish(ctx)

	if len(batch.Events()) > 0 {
		s.cfg.Log.Info("Reservation updated", "id", id, "status", result.Status, "payment_status", result.PaymentStatus)
	}
	return result, nil
}

func (s *reservationService) findCourt(ctx context.Context, id string) (*model.Court, error) {
	court, err := s.courts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, courtserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Court", id)
		}
		s.cfg.Log.Error("Failed to load court", "court_id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve court", err)
	}
	return court, nil
}

func authorize(actor model.Actor, r *model.Reservation) error {
	if actor.IsStaff() || actor.ID == r.UserID {
		return nil
	}
	return apperrors.Forbidden("reservation belongs to another user")
}
