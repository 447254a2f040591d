package wallet

import "errors"

// Validation failures surfaced to the user in plain language. Storage
// errors stay wrapped and are reported generically by the transports.
var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidRecipient     = errors.New("invalid recipient")
	ErrLimitExceeded        = errors.New("transfer limit exceeded")
	ErrTierNotFound         = errors.New("unknown tier")
	ErrAlreadyAtOrAboveTier = errors.New("already at or above tier")
	ErrBelowMinimum         = errors.New("amount below minimum")
	ErrAlreadyTerminal      = errors.New("request already settled")
	ErrBonusAlreadyClaimed  = errors.New("daily bonus already claimed")
	ErrUnknownService       = errors.New("unknown service kind")
)
