package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockClock_AdvanceReturnsNewTime(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	got := clock.Advance(90 * time.Second)

	assert.Equal(t, start.Add(90*time.Second), got)
	assert.Equal(t, got, clock.Now())
}

func TestMockClock_Until(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	assert.Equal(t, 4*time.Second, clock.Until(start.Add(4*time.Second)))
	assert.Equal(t, -time.Minute, clock.Until(start.Add(-time.Minute)))

	clock.SetTime(start.Add(time.Hour))
	assert.Equal(t, time.Duration(0), clock.Until(start.Add(time.Hour)))
}

func TestMockClock_ZeroStartDefaultsToNow(t *testing.T) {
	clock := NewMockClock(time.Time{})

	assert.WithinDuration(t, time.Now().UTC(), clock.Now(), time.Second)
}

func TestRealClock_Until(t *testing.T) {
	clock := NewRealClock()

	assert.InDelta(t, time.Minute, clock.Until(time.Now().UTC().Add(time.Minute)), float64(time.Second))
	assert.Negative(t, clock.Until(time.Now().UTC().Add(-time.Minute)))
}
