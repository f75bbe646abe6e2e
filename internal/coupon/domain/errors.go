package domain

import "errors"

var (
	ErrIdentityRequired     = errors.New("identity_required")
	ErrValidation           = errors.New("invalid_request")
	ErrCouponNotFound       = errors.New("coupon_not_found")
	ErrCouponAlreadyUsed    = errors.New("coupon_already_used")
	ErrCouponInactive       = errors.New("coupon_inactive")
	ErrOrganizationNotFound = errors.New("organization_not_found")

	// ErrReconcileFailed wraps an identifier-source failure; the whole pass
	// aborts because deduplication needs the complete identifier set.
	ErrReconcileFailed = errors.New("reconcile_failed")

	// ErrTransactionRejected: the write failed before a receipt existed.
	ErrTransactionRejected = errors.New("transaction_rejected")
	// ErrTransactionReverted: the write was mined but did not apply.
	ErrTransactionReverted = errors.New("transaction_reverted")

	// ErrWriteInFlight enforces the one-write-at-a-time-per-identity
	// discipline while a transaction awaits its receipt.
	ErrWriteInFlight = errors.New("transaction_in_flight")
)
