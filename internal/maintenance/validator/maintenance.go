package validator

import (
	"courtside/pkg/logger"
	"courtside/pkg/model"
	"courtside/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type MaintenanceValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewMaintenanceValidator(log *logger.Logger) *MaintenanceValidator {
	return &MaintenanceValidator{
		validate: validation.New(),
		logger:   log,
	}
}

func (v *MaintenanceValidator) Validate(window *model.MaintenanceWindow) error {
	return validation.Struct(v.validate, window)
}
