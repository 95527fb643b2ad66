package errors

import "errors"

var (
	ErrTariffNotFound     = errors.New("tariff not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrPromoNotFound      = errors.New("promo code not found")

	// ErrDuplicateEnrollment is returned when the (tariff, user) pair already
	// has a PENDING or APPROVED enrollment.
	ErrDuplicateEnrollment = errors.New("enrollment already pending or approved")
	ErrDuplicatePromo      = errors.New("promo code already exists")

	// ErrStatusChanged means the enrollment left the expected status between
	// read and write.
	ErrStatusChanged = errors.New("enrollment status changed")
)
