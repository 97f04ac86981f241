package models

import (
	"errors"
	"fmt"
)

// Business-rule and concurrency rejections. Validation and business errors
// leave no state behind; conflict errors mean the caller lost a race and
// should retry.
var (
	// ErrInsufficientCredits rejects a stake larger than the user's balance
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrDuplicatePendingBet rejects a second pending bet for the same
	// (user, round, subRound)
	ErrDuplicatePendingBet = errors.New("a pending bet already exists for this round")

	// ErrResultAlreadyPublished rejects overwriting a recorded result
	ErrResultAlreadyPublished = errors.New("result already published for this sub-round")

	// ErrSettlementConflict means another settlement pass holds the
	// (round, subRound) lock
	ErrSettlementConflict = errors.New("settlement already in progress for this sub-round")

	ErrUserNotFound  = errors.New("user not found")
	ErrRoundNotFound = errors.New("round not found")
	ErrBetNotFound   = errors.New("bet not found")

	// ErrNameTaken rejects a login for an active name from a different address
	ErrNameTaken = errors.New("name is already taken by an active player")
)

// ValidationError reports caller-fault input outside a round's domain
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation checks whether err is a caller-fault validation rejection
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
