package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrBidNotFound     = errors.New("bid not found")
	ErrNoBids          = errors.New("no bids for auction")
	ErrEmailTaken      = errors.New("email already in use")
)

// Timing and arbitration errors
var (
	ErrAuctionNotStarted = errors.New("auction has not started yet")
	ErrAuctionEnded      = errors.New("auction has ended")
	ErrBidTooLow         = errors.New("bid must be higher than the current highest bid")
)

// Authorization and state-machine errors. Callers need to tell a wrong
// actor apart from a wrong state, so these stay distinct.
var (
	ErrForbidden      = errors.New("forbidden")
	ErrNotOwner       = errors.New("forbidden: not the owner")
	ErrNotEligible    = errors.New("forbidden: not the eligible bidder")
	ErrInvalidState   = errors.New("action not allowed in current state")
	ErrAuctionHasBids = errors.New("auction has bids and cannot be deleted")
	ErrCounterTooLow  = errors.New("counter-offer must exceed the highest bid")
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvoiceUnavailable = errors.New("invoice not available")
)
