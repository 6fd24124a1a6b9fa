package deferred

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOperand is returned when an operand is NaN or infinite.
	ErrInvalidOperand = errors.New("invalid operand")

	// ErrNilOperation is returned when no operation is given.
	ErrNilOperation = errors.New("nil operation")

	// ErrNegativeDelay is returned when a deferred call is given a delay below zero.
	ErrNegativeDelay = errors.New("negative delay")

	// ErrNilScheduler is returned by RunDeferred on a Runner created without a scheduler.
	ErrNilScheduler = errors.New("nil scheduler")

	// ErrAlreadyFired is returned when a deferred task is executed a second time.
	ErrAlreadyFired = errors.New("deferred callback already fired")
)

// OperandError reports which operand was rejected.
type OperandError struct {
	Position int
	Value    float64
}

// Error implements the error interface
func (e *OperandError) Error() string {
	return fmt.Sprintf("%s at position %d: %v", ErrInvalidOperand, e.Position, e.Value)
}

// Unwrap returns ErrInvalidOperand for errors.Is
func (e *OperandError) Unwrap() error {
	return ErrInvalidOperand
}
