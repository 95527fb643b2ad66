package validator

import (
	"time"

	"courtside/pkg/logger"
	"courtside/pkg/model"
	"courtside/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type CourtValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewCourtValidator(log *logger.Logger) *CourtValidator {
	return &CourtValidator{
		validate: validation.New(),
		logger:   log,
	}
}

func (v *CourtValidator) Validate(court *model.Court) error {
	if err := validation.Struct(v.validate, court); err != nil {
		return err
	}

	opens, _ := time.Parse(model.HoursLayout, court.Opens)
	closes, _ := time.Parse(model.HoursLayout, court.Closes)
	if !closes.After(opens) {
		return validation.Fail("closes", "closes must be after opens")
	}
	return nil
}

func (v *CourtValidator) ValidateUpdate(update *model.CourtUpdate) error {
	return validation.Struct(v.validate, update)
}
