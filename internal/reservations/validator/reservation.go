package validator

import (
	"strings"

	"courtside/pkg/logger"
	"courtside/pkg/model"
	"courtside/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const DurationStepMinutes = 15

type ReservationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewReservationValidator(log *logger.Logger) *ReservationValidator {
	return &ReservationValidator{
		validate: validation.New(),
		logger:   log,
	}
}

func (v *ReservationValidator) ValidateCreate(req *model.CreateReservationRequest) error {
	if err := validation.Struct(v.validate, req); err != nil {
		return err
	}
	if req.DurationMinutes%DurationStepMinutes != 0 {
		return validation.Fail("duration_minutes", "duration_minutes must be a multiple of 15")
	}
	if req.Override != nil && req.Override.DeltaCents != 0 && strings.TrimSpace(req.Override.Reason) == "" {
		return validation.Fail("override.reason", "a price override needs a reason")
	}
	return nil
}
