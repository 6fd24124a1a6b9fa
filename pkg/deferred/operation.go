// Package deferred runs numeric operations and hands their results to callbacks,
// either before the call returns or after a delay on a scheduler's event loop.
//
// The result is always computed when the call is made. Only its delivery is deferred.
package deferred

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Number is the set of operand types a Runner accepts.
type Number interface {
	constraints.Integer | constraints.Float
}

// Operation computes a result from two operands. Operations must be pure.
type Operation[T Number] func(a, b T) T

// Callback receives a computed result.
type Callback[T any] func(result T)

// Add returns a + b.
func Add[T Number](a, b T) T { return a + b }

// Sub returns a - b.
func Sub[T Number](a, b T) T { return a - b }

// Mul returns a * b.
func Mul[T Number](a, b T) T { return a * b }

// checkOperands fails on the first NaN or infinite operand.
func checkOperands[T Number](operands ...T) error {
	for i, v := range operands {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return &OperandError{Position: i, Value: f}
		}
	}
	return nil
}
