package services

import "errors"

// Sentinel errors for the raffle operations. Controllers map these onto HTTP
// status codes; everything else is treated as an internal failure.
var (
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrPaymentRequired    = errors.New("payment required")
	ErrPaymentUnavailable = errors.New("payment gate not configured")
	ErrPaymentIncomplete  = errors.New("payment not completed")
	ErrMalformedSession   = errors.New("checkout session metadata incomplete")
	ErrStoreUnavailable   = errors.New("store unavailable")
)
