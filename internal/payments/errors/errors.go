package errors

import "errors"

var (
	ErrEntryNotFound = errors.New("ledger entry not found")

	// ErrChargeExists means the reservation already has a PENDING or
	// SUCCEEDED charge.
	ErrChargeExists = errors.New("reservation already has an active charge")

	// ErrNotPending means the entry was finalized by someone else first.
	ErrNotPending = errors.New("ledger entry is not pending")

	ErrInsufficientBalance = errors.New("insufficient wallet balance")
)
