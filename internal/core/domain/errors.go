package domain

import "errors"

// Errors returned by the ledger. Every one of them is reported synchronously
// with the failed call and leaves the campaign exactly as it was.
var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidUnit     = errors.New("invalid unit")
	ErrInvalidGoal     = errors.New("invalid goal")
	ErrInvalidMetadata = errors.New("invalid campaign metadata")
	ErrOverflow        = errors.New("amount overflow")
	ErrCampaignClosed  = errors.New("campaign closed")
	ErrGoalNotReached  = errors.New("goal not reached")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("campaign not found")
)
