package utils

import "errors"

// Common application-specific errors.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrValidation          = errors.New("invalid input provided")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidTransition   = errors.New("invalid ride transition")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvoiceConflict     = errors.New("invoice already exists for ride")
	ErrUpstreamTimeout     = errors.New("upstream call timed out")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrConfiguration       = errors.New("missing required configuration")
)
