package domain

import "errors"

// Error taxonomy shared by both engines. Handlers map these to HTTP codes
// without rewording; only ErrConflict and ErrUnavailable are retryable.
var (
	ErrNotFound              = errors.New("entity not found")
	ErrForbidden             = errors.New("caller does not own this entity")
	ErrIllegalTransition     = errors.New("illegal status transition")
	ErrInvalidQuantity       = errors.New("quantity must be positive")
	ErrInvalidDeviceType     = errors.New("unknown device type")
	ErrInvalidRuleCondition  = errors.New("unknown rule condition")
	ErrListingUnavailable    = errors.New("listing is not available")
	ErrDuplicateSerialNumber = errors.New("serial number already in use")
	ErrOutOfOrderTelemetry   = errors.New("telemetry timestamp older than last reading")
	ErrConflict              = errors.New("concurrent modification, retry")
	ErrUnavailable           = errors.New("store unavailable, retry later")
)
