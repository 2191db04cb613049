package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientBalance matches any *InsufficientBalanceError via errors.Is.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrPersistence wraps every ledger store failure.
	ErrPersistence = errors.New("ledger persistence failure")

	// ErrInvalidAmount indicates a negative credit amount.
	ErrInvalidAmount = errors.New("amount must be a non-negative integer")

	// ErrInvalidRequest indicates a request missing required fields.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrDuplicateSettlement indicates a settlement attempt id was already used.
	ErrDuplicateSettlement = errors.New("settlement attempt already processed")

	// ErrStrategyNotFound indicates no pricing strategy is registered under a name.
	ErrStrategyNotFound = errors.New("pricing strategy not found")
)

// InsufficientBalanceError reports a settlement rejected for lack of credits.
// The records of the batch have already been marked failed when it is returned.
type InsufficientBalanceError struct {
	Required  int64
	Available int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: required %d, available %d", e.Required, e.Available)
}

// Is makes errors.Is(err, ErrInsufficientBalance) match.
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// Shortfall returns how many credits the user is missing.
func (e *InsufficientBalanceError) Shortfall() int64 {
	return e.Required - e.Available
}
