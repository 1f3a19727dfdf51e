package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLCGFullCycle(t *testing.T) {
	lcg, err := NewLCG(0, 256, 5, 3, 42)
	assert.NoError(t, err)

	seen := make(map[int]bool)
	for i := 0; i < 256; i++ {
		value := lcg.Next()
		assert.GreaterOrEqual(t, value, 0)
		assert.Less(t, value, 256)
		assert.False(t, seen[value], "value %d produced twice", value)
		seen[value] = true
	}
	assert.Len(t, seen, 256)
}

func TestLCGDeterministic(t *testing.T) {
	a, err := NewLCG(0, 256, 5, 3, 7)
	assert.NoError(t, err)
	b, err := NewLCG(0, 256, 5, 3, 7)
	assert.NoError(t, err)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestLCGShiftedInterval(t *testing.T) {
	lcg, err := NewLCG(100, 104, 5, 3, 101)
	assert.NoError(t, err)
	for i := 0; i < 8; i++ {
		value := lcg.Next()
		assert.GreaterOrEqual(t, value, 100)
		assert.Less(t, value, 104)
	}
}

func TestLCGRejectsBadParameters(t *testing.T) {
	// seed outside interval
	_, err := NewLCG(0, 256, 5, 3, 300)
	assert.Error(t, err)
	// even increment shares a factor with the modulus
	_, err = NewLCG(0, 256, 5, 2, 0)
	assert.Error(t, err)
	// multiplier - 1 not divisible by the modulus prime factors
	_, err = NewLCG(0, 256, 4, 3, 0)
	assert.Error(t, err)
	// empty interval
	_, err = NewLCG(10, 10, 5, 3, 10)
	assert.Error(t, err)
}
