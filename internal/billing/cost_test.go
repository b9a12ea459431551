package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCost(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		e := start.Add(d)
		return &e
	}

	t.Run("open reservation costs nothing", func(t *testing.T) {
		assert.Equal(t, 0.0, Cost(start, nil, 50))
	})

	t.Run("partial hours round up", func(t *testing.T) {
		// 90 minutes at 50/hr bills two full hours
		assert.Equal(t, 100.0, Cost(start, at(90*time.Minute), 50))
	})

	t.Run("zero duration bills the one hour minimum", func(t *testing.T) {
		assert.Equal(t, 50.0, Cost(start, at(0), 50))
	})

	t.Run("negative duration bills the one hour minimum", func(t *testing.T) {
		assert.Equal(t, 50.0, Cost(start, at(-5*time.Minute), 50))
	})

	t.Run("exact hours are not rounded up", func(t *testing.T) {
		assert.Equal(t, 150.0, Cost(start, at(3*time.Hour), 50))
	})

	t.Run("amount rounds to two decimals", func(t *testing.T) {
		// 2h05m at 12.345/hr -> 3 * 12.345 = 37.035 -> 37.04
		assert.Equal(t, 37.04, Cost(start, at(125*time.Minute), 12.345))
	})
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.01, Round2(10.006))
	assert.Equal(t, 10.0, Round2(10.004))
	assert.Equal(t, -2.5, Round2(-2.496))
}
