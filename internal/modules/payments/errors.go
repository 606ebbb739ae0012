package payments

import "errors"

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrInvalidTransition    = errors.New("invalid payment status transition")
	ErrInvalidSignature     = errors.New("invalid signature")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrMissingFields        = errors.New("missing required fields")
	ErrDuplicateOrder       = errors.New("gateway order already recorded")
	ErrGateway              = errors.New("payment gateway error")
	ErrMalformedEvent       = errors.New("malformed webhook event")
)
