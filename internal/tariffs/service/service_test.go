package service

import (
	"context"
	"testing"
	"time"

	auditrepo "courtside/internal/audit/repository"
	auditservice "courtside/internal/audit/service"
	"courtside/internal/tariffs/repository"
	"courtside/internal/tariffs/validator"
	"courtside/pkg/clock"
	"courtside/pkg/config"
	"courtside/pkg/db/memory"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/logger"
	"courtside/pkg/model"
)

var (
	staff  = model.Actor{ID: "staff-1", Role: model.RoleStaff}
	senior = model.Actor{ID: "user-1", Role: model.RoleUser}
	start  = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
)

type fixture struct {
	tariffs     TariffService
	enrollments EnrollmentService
	promos      PromoService
	audit       auditrepo.AuditRepository
	clock       *clock.Fixed
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.Discard()
	store := memory.NewStore()
	clk := clock.NewFixed(start)
	cfg := &config.Config{Log: log, Location: time.UTC, EnrollmentTTL: 30 * 24 * time.Hour, RejectionReasonMinLength: 10}

	tariffRepo := repository.NewMemoryTariffRepository(store)
	enrollmentRepo := repository.NewMemoryEnrollmentRepository(store)
	audits := auditrepo.NewMemoryAuditRepository(store)
	recorder := auditservice.NewRecorder(audits, nil, clk, log)
	v := validator.NewTariffValidator(log, cfg.RejectionReasonMinLength)

	return &fixture{
		tariffs:     NewTariffService(tariffRepo, enrollmentRepo, store, v, recorder, clk, cfg),
		enrollments: NewEnrollmentService(enrollmentRepo, tariffRepo, store, v, recorder, clk, cfg),
		promos:      NewPromoService(repository.NewMemoryPromoRepository(store), store, v, recorder, clk, cfg),
		audit:       audits,
		clock:       clk,
	}
}

func (f *fixture) createTariff(t *testing.T, name string, pct int, approval bool, validUntil *time.Time) *model.Tariff {
	t.Helper()
	tariff := &model.Tariff{
		Name:                   name,
		Segment:                "Mayores 65",
		MinAge:                 65,
		DiscountPercent:        pct,
		RequiresManualApproval: approval,
		ValidFrom:              start.AddDate(0, -1, 0),
		ValidUntil:             validUntil,
		Active:                 true,
	}
	if err := f.tariffs.Create(context.Background(), staff, tariff); err != nil {
		t.Fatalf("create tariff: %v", err)
	}
	return tariff
}

func TestTariffService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	before := start.AddDate(0, -2, 0)
	tests := []struct {
		name   string
		tariff model.Tariff
	}{
		{"missing name", model.Tariff{Segment: "x1", ValidFrom: start}},
		{"discount over 100", model.Tariff{Name: "Bad", Segment: "x1", DiscountPercent: 120, ValidFrom: start}},
		{"validity inverted", model.Tariff{Name: "Bad", Segment: "x1", ValidFrom: start, ValidUntil: &before}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.tariffs.Create(context.Background(), staff, &tt.tariff)
			if !apperrors.HasCode(err, apperrors.CodeValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestTariffService_Evaluate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createTariff(t, "Senior", 30, false, nil)
	regulated := f.createTariff(t, "Senior regulated", 50, true, nil)

	age := 70
	eval, err := f.tariffs.Evaluate(ctx, senior.ID, "court-a", &age)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eval.DiscountPercent() != 30 || eval.PendingVerification == nil || eval.PendingVerification.ID != regulated.ID {
		t.Fatalf("expected 30%% applied with regulated pending, got %+v", eval)
	}

	enrollment, err := f.enrollments.Request(ctx, senior, &model.EnrollmentRequest{TariffID: regulated.ID})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := f.enrollments.DecideEnrollment(ctx, staff, enrollment.ID, &model.EnrollmentDecisionRequest{Decision: model.DecisionApprove}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	eval, err = f.tariffs.Evaluate(ctx, senior.ID, "court-a", &age)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eval.TariffID() != regulated.ID || eval.PendingVerification != nil {
		t.Errorf("expected verified regulated tariff, got %+v", eval)
	}

	eval, err = f.tariffs.Evaluate(ctx, senior.ID, "court-a", nil)
	if err != nil || eval.Applied != nil {
		t.Errorf("expected empty evaluation without age, got %+v, %v", eval, err)
	}
}

func TestEnrollmentService_Workflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	until := start.AddDate(0, 0, 10)
	tariff := f.createTariff(t, "Regulated", 50, true, &until)

	enrollment, err := f.enrollments.Request(ctx, senior, &model.EnrollmentRequest{TariffID: tariff.ID, Notes: "DNI attached"})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if enrollment.Status != model.EnrollmentPending {
		t.Fatalf("expected PENDING, got %s", enrollment.Status)
	}

	_, err = f.enrollments.Request(ctx, senior, &model.EnrollmentRequest{TariffID: tariff.ID})
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected duplicate request conflict, got %v", err)
	}

	approve := &model.EnrollmentDecisionRequest{Decision: model.DecisionApprove}
	approved, err := f.enrollments.DecideEnrollment(ctx, staff, enrollment.ID, approve)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != model.EnrollmentApproved || approved.ExpiresAt == nil || !approved.ExpiresAt.Equal(until) {
		t.Fatalf("expected APPROVED capped at tariff validity, got %+v", approved)
	}

	f.clock.Advance(time.Hour)
	again, err := f.enrollments.DecideEnrollment(ctx, staff, enrollment.ID, approve)
	if err != nil {
		t.Fatalf("re-approve should be a no-op: %v", err)
	}
	if !again.DecidedAt.Equal(*approved.DecidedAt) {
		t.Errorf("re-approve changed decidedAt")
	}
	events, _ := f.audit.FindBySubject(ctx, model.SubjectEnrollment, enrollment.ID, 10, 0)
	if len(events) != 2 {
		t.Errorf("expected requested+approved events only, got %d", len(events))
	}

	_, err = f.enrollments.DecideEnrollment(ctx, staff, enrollment.ID, &model.EnrollmentDecisionRequest{Decision: model.DecisionReject, Notes: "documents were forged"})
	if !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
		t.Errorf("expected invalid transition rejecting APPROVED, got %v", err)
	}

	_, err = f.enrollments.DecideEnrollment(ctx, senior, enrollment.ID, approve)
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected forbidden for non-staff, got %v", err)
	}
}

func TestEnrollmentService_RejectFreesPair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tariff := f.createTariff(t, "Regulated", 50, true, nil)

	first, err := f.enrollments.Request(ctx, senior, &model.EnrollmentRequest{TariffID: tariff.ID})
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	_, err = f.enrollments.DecideEnrollment(ctx, staff, first.ID, &model.EnrollmentDecisionRequest{Decision: model.DecisionReject, Notes: "short"})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected short reason to fail validation, got %v", err)
	}

	rejected, err := f.enrollments.DecideEnrollment(ctx, staff, first.ID, &model.EnrollmentDecisionRequest{Decision: model.DecisionReject, Notes: "no proof of age was provided"})
	if err != nil || rejected.Status != model.EnrollmentRejected {
		t.Fatalf("expected REJECTED, got %+v, %v", rejected, err)
	}

	_, err = f.enrollments.DecideEnrollment(ctx, staff, first.ID, &model.EnrollmentDecisionRequest{Decision: model.DecisionApprove})
	if !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
		t.Errorf("expected invalid transition approving REJECTED, got %v", err)
	}

	second, err := f.enrollments.Request(ctx, senior, &model.EnrollmentRequest{TariffID: tariff.ID})
	if err != nil || second.Status != model.EnrollmentPending {
		t.Fatalf("rejected enrollment should not block a new request: %+v, %v", second, err)
	}
}

func TestEnrollmentService_ExpireDue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	until := start.AddDate(0, 0, 1)
	lapsing := f.createTariff(t, "Lapsing", 40, true, &until)
	open := f.createTariff(t, "Open", 40, true, nil)

	if _, err := f.enrollments.Request(ctx, senior, &model.EnrollmentRequest{TariffID: lapsing.ID}); err != nil {
		t.Fatalf("request: %v", err)
	}
	approved, err := f.enrollments.Request(ctx, senior, &model.EnrollmentRequest{TariffID: open.ID})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := f.enrollments.DecideEnrollment(ctx, staff, approved.ID, &model.EnrollmentDecisionRequest{Decision: model.DecisionApprove}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if n, err := f.enrollments.ExpireDue(ctx); err != nil || n != 0 {
		t.Fatalf("expected nothing due yet, got %d, %v", n, err)
	}

	f.clock.Advance(48 * time.Hour)
	if n, err := f.enrollments.ExpireDue(ctx); err != nil || n != 1 {
		t.Fatalf("expected the lapsed tariff's enrollment to expire, got %d, %v", n, err)
	}

	f.clock.Advance(31 * 24 * time.Hour)
	if n, err := f.enrollments.ExpireDue(ctx); err != nil || n != 1 {
		t.Fatalf("expected the TTL-expired approval to expire, got %d, %v", n, err)
	}

	mine, _ := f.enrollments.ListForUser(ctx, senior.ID)
	for _, e := range mine {
		if e.Status != model.EnrollmentExpired {
			t.Errorf("enrollment %s: expected EXPIRED, got %s", e.ID, e.Status)
		}
	}

	again, err := f.enrollments.Request(ctx, senior, &model.EnrollmentRequest{TariffID: open.ID})
	if err != nil || again.Status != model.EnrollmentPending {
		t.Errorf("expired enrollment should not block a new request: %v", err)
	}
}

func TestEnrollmentService_UndecidedRequestExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	open := f.createTariff(t, "Open", 40, true, nil)

	pending, err := f.enrollments.Request(ctx, senior, &model.EnrollmentRequest{TariffID: open.ID})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if pending.ExpiresAt == nil || !pending.ExpiresAt.Equal(start.Add(30*24*time.Hour)) {
		t.Fatalf("expected a pending request to expire after the TTL, got %v", pending.ExpiresAt)
	}

	f.clock.Advance(29 * 24 * time.Hour)
	if n, err := f.enrollments.ExpireDue(ctx); err != nil || n != 0 {
		t.Fatalf("expected nothing due before the TTL, got %d, %v", n, err)
	}

	f.clock.Advance(365 * 24 * time.Hour)
	if n, err := f.enrollments.ExpireDue(ctx); err != nil || n != 1 {
		t.Fatalf("expected the undecided request to expire, got %d, %v", n, err)
	}
	mine, _ := f.enrollments.ListForUser(ctx, senior.ID)
	if len(mine) != 1 || mine[0].Status != model.EnrollmentExpired {
		t.Fatalf("expected EXPIRED, got %+v", mine)
	}

	again, err := f.enrollments.Request(ctx, senior, &model.EnrollmentRequest{TariffID: open.ID})
	if err != nil || again.Status != model.EnrollmentPending {
		t.Errorf("expired request should not block a new one: %v", err)
	}
}

func TestPromoService_Resolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.promos.Create(ctx, staff, &model.PromoCode{Code: " summer-10 ", Kind: model.PromoPercent, Value: 10, Active: true}); err != nil {
		t.Fatalf("create: %v", err)
	}

	promo, err := f.promos.Resolve(ctx, "summer10")
	if err != nil || promo.Code != "SUMMER10" {
		t.Fatalf("expected SUMMER10, got %+v, %v", promo, err)
	}

	if err := f.promos.SetActive(ctx, staff, "SUMMER10", false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := f.promos.Resolve(ctx, "SUMMER10"); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected inactive code rejection, got %v", err)
	}
	if _, err := f.promos.Resolve(ctx, "NOPE"); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	err = f.promos.Create(ctx, staff, &model.PromoCode{Code: "HALF", Kind: model.PromoPercent, Value: 150, Active: true})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected percent over 100 to fail validation, got %v", err)
	}
}
