package validator

import (
	"courtside/pkg/logger"
	"courtside/pkg/model"
	"courtside/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type PaymentValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewPaymentValidator(log *logger.Logger) *PaymentValidator {
	return &PaymentValidator{
		validate: validation.New(),
		logger:   log,
	}
}

func (v *PaymentValidator) ValidateCharge(req *model.ChargeRequest) error {
	if err := validation.Struct(v.validate, req); err != nil {
		return err
	}
	switch {
	case req.Method == model.MethodCourtesy && req.AmountCents != 0:
		return validation.Fail("amount_cents", "COURTESY settles only a zero amount")
	case req.Method != model.MethodCourtesy && req.AmountCents == 0:
		return validation.Fail("method", "a zero amount settles through COURTESY")
	}
	return nil
}

func (v *PaymentValidator) ValidateRefund(req *model.RefundRequest) error {
	return validation.Struct(v.validate, req)
}

func (v *PaymentValidator) ValidateConfirmation(req *model.SettlementConfirmation) error {
	return validation.Struct(v.validate, req)
}

func (v *PaymentValidator) ValidateTopUp(req *model.TopUpRequest) error {
	return validation.Struct(v.validate, req)
}
