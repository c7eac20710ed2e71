package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/dynamix/internal/clock"
)

func TestMock(t *testing.T) {
	t.Parallel()

	clk := clock.NewMock(time.Time{})
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), clk.Now())

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clk.Set(ts)
	assert.Equal(t, ts, clk.Now())

	clk.Advance(10 * time.Second)
	assert.Equal(t, 10*time.Second, clk.Now().Sub(ts))
}

func TestReal(t *testing.T) {
	t.Parallel()

	before := time.Now()
	got := clock.Real{}.Now()
	after := time.Now()
	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
	assert.Equal(t, time.UTC, got.Location())
}
