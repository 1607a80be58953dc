package errkit_test

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/ajs/poefixer/internal/errkit"
)

func TestError_Error(t *testing.T) {
	c := qt.New(t)

	err := errors.New("some error")
	e := errkit.Wrap(err, "wrapped error")

	c.Assert(e.Error(), qt.Equals, "wrapped error: some error")
}

func TestError_WithFields(t *testing.T) {
	c := qt.New(t)

	err := errors.New("some error")
	e := errkit.WithMessage(err, "wrapped error")

	newErr := e.WithFields(errkit.Fields{
		"key1": "value1",
		"key2": 2,
	})

	c.Assert(newErr.Error(), qt.Matches, `wrapped error: some error \((key1=value1, key2=2|key2=2, key1=value1)\)`)
	c.Assert(newErr.WithField("key3", true).Error(), qt.Matches, `.*key3=true.*`)
}

func TestWrap_Is(t *testing.T) {
	c := qt.New(t)

	sentinel := errors.New("sentinel")
	wrapped := errkit.Wrap(sentinel, "context")

	c.Assert(errors.Is(wrapped, sentinel), qt.IsTrue)
}

func TestWithEquivalents(t *testing.T) {
	c := qt.New(t)

	sentinelA := errors.New("a")
	sentinelB := errors.New("b")

	eq := errkit.WithEquivalents(errors.New("driver-specific"), sentinelA, sentinelB)

	c.Assert(errors.Is(eq, sentinelA), qt.IsTrue)
	c.Assert(errors.Is(eq, sentinelB), qt.IsTrue)
}

func TestNewEquivalent(t *testing.T) {
	c := qt.New(t)

	sentinel := errors.New("sentinel")
	eq := errkit.NewEquivalent("human readable", sentinel)

	c.Assert(eq.Error(), qt.Equals, "human readable")
	c.Assert(errors.Is(eq, sentinel), qt.IsTrue)
}
