package irmux

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestToleranceForPicksLargerOfRelativeAndAbsolute(t *testing.T) {
	r := &Remote{Eps: 10, Aeps: 50}
	// 10% of 1000 = 100, which beats aeps=50.
	assert.Equal(t, uint32(100), toleranceFor(1000, r, 0))
	// 10% of 100 = 10, which loses to aeps=50.
	assert.Equal(t, uint32(50), toleranceFor(100, r, 0))
	// driver resolution floors aeps.
	assert.Equal(t, uint32(200), toleranceFor(100, r, 200))
}

func TestIsWithinAtLeastAtMost(t *testing.T) {
	r := &Remote{Eps: 0, Aeps: 10}
	assert.True(t, IsWithin(105, 100, r, 0))
	assert.True(t, IsWithin(95, 100, r, 0))
	assert.False(t, IsWithin(111, 100, r, 0))
	assert.True(t, AtLeast(95, 100, r, 0))
	assert.False(t, AtLeast(89, 100, r, 0))
	assert.True(t, AtMost(105, 100, r, 0))
	assert.False(t, AtMost(111, 100, r, 0))
}

func TestUpperLowerLimit(t *testing.T) {
	r := &Remote{Eps: 0, Aeps: 10}
	assert.Equal(t, uint32(110), UpperLimit(100, r, 0))
	assert.Equal(t, uint32(90), LowerLimit(100, r, 0))
}

func TestLowerLimitFloorsAtOne(t *testing.T) {
	r := &Remote{Eps: 0, Aeps: 1000}
	assert.Equal(t, uint32(1), LowerLimit(100, r, 0))
}

// TestToleranceMonotonicity is testable property #2: perturbing a duration
// that the decoder accepts by at most the tolerance slack minus one
// microsecond still passes IsWithin.
func TestToleranceMonotonicity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		r := &Remote{
			Eps:  uint32(rapid.IntRange(0, 20).Draw(rt, "eps")),
			Aeps: uint32(rapid.IntRange(0, 500).Draw(rt, "aeps")),
		}
		resolution := uint32(rapid.IntRange(0, 50).Draw(rt, "resolution"))
		target := uint32(rapid.IntRange(1, 20000).Draw(rt, "target"))

		slack := toleranceFor(target, r, resolution)
		if slack == 0 {
			return
		}
		perturb := int64(rapid.IntRange(-int(slack)+1, int(slack)-1).Draw(rt, "perturb"))
		measured := int64(target) + perturb
		if measured < 0 {
			return
		}
		assert.True(rt, IsWithin(uint32(measured), target, r, resolution))
	})
}
