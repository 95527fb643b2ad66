package validator

import (
	"strings"
	"unicode/utf8"

	"courtside/pkg/logger"
	"courtside/pkg/model"
	"courtside/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type TariffValidator struct {
	validate                 *validator.Validate
	logger                   *logger.Logger
	rejectionReasonMinLength int
}

func NewTariffValidator(log *logger.Logger, rejectionReasonMinLength int) *TariffValidator {
	return &TariffValidator{
		validate:                 validation.New(),
		logger:                   log,
		rejectionReasonMinLength: rejectionReasonMinLength,
	}
}

func (v *TariffValidator) Validate(tariff *model.Tariff) error {
	if err := validation.Struct(v.validate, tariff); err != nil {
		return err
	}
	if tariff.ValidUntil != nil && !tariff.ValidUntil.After(tariff.ValidFrom) {
		return validation.Fail("valid_until", "valid_until must be after valid_from")
	}
	return nil
}

func (v *TariffValidator) ValidateUpdate(update *model.TariffUpdate) error {
	return validation.Struct(v.validate, update)
}

func (v *TariffValidator) ValidatePromo(promo *model.PromoCode) error {
	if err := validation.Struct(v.validate, promo); err != nil {
		return err
	}
	if promo.Kind == model.PromoPercent && promo.Value > 100 {
		return validation.Fail("value", "value must be at most 100 for PERCENT codes")
	}
	if promo.ValidUntil != nil && !promo.ValidUntil.After(promo.ValidFrom) {
		return validation.Fail("valid_until", "valid_until must be after valid_from")
	}
	return nil
}

func (v *TariffValidator) ValidateEnrollmentRequest(req *model.EnrollmentRequest) error {
	return validation.Struct(v.validate, req)
}

// ValidateDecision requires a rejection reason of the configured minimum
// length.
func (v *TariffValidator) ValidateDecision(req *model.EnrollmentDecisionRequest) error {
	if err := validation.Struct(v.validate, req); err != nil {
		return err
	}
	if req.Decision == model.DecisionReject && utf8.RuneCountInString(strings.TrimSpace(req.Notes)) < v.rejectionReasonMinLength {
		return validation.Fail("notes", "a rejection needs a reason")
	}
	return nil
}
