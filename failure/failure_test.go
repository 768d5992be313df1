package failure

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIs(t *testing.T) {
	testCases := []struct {
		err  error
		kind error
	}{
		{Invariantf("removing last strategy of player %d", 1), ErrInvariantViolation},
		{Numericalf("lp did not converge"), ErrNumericalFailure},
		{DidNotTerminatef("exceeded %d pivots", 10), ErrDidNotTerminate},
		{errors.Wrap(ErrCanceled, "solving support"), ErrCanceled},
		{errors.Wrap(errors.Wrap(ErrArithmetic, "quo"), "pivot"), ErrArithmetic},
	}

	kinds := []error{ErrInvariantViolation, ErrArithmetic, ErrNumericalFailure, ErrDidNotTerminate, ErrCanceled}
	for _, tc := range testCases {
		for _, kind := range kinds {
			assert.Equal(t, kind == tc.kind, Is(tc.err, kind), "%v is %v", tc.err, kind)
		}
	}
}

func TestInvariantf_Message(t *testing.T) {
	err := Invariantf("label %d out of range", 7)
	assert.Equal(t, "label 7 out of range: invariant violation", err.Error())
}
