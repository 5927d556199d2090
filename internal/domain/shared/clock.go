package shared

import "time"

// Clock abstracts time so schedulers and tests can share one source of
// truth for "now" and for how far away a deadline is.
type Clock interface {
	Now() time.Time
	// Until returns how long remains before t, measured against this
	// clock. Negative when t is already in the past.
	Until(t time.Time) time.Duration
}

// RealClock implements Clock using the actual system time
type RealClock struct{}

// Now returns the current system time in UTC
func (r *RealClock) Now() time.Time {
	return time.Now().UTC()
}

// Until returns the duration from the system clock until t
func (r *RealClock) Until(t time.Time) time.Duration {
	return t.Sub(r.Now())
}

// NewRealClock creates a RealClock instance
func NewRealClock() Clock {
	return &RealClock{}
}

// MockClock implements Clock with a controllable time for testing
type MockClock struct {
	CurrentTime time.Time
}

// NewMockClock creates a MockClock starting at the given time.
// If zero time is provided, starts at current time.
func NewMockClock(startTime time.Time) *MockClock {
	if startTime.IsZero() {
		startTime = time.Now().UTC()
	}
	return &MockClock{CurrentTime: startTime}
}

// Now returns the mock's current time
func (m *MockClock) Now() time.Time {
	return m.CurrentTime
}

// Until returns the duration from the mock's current time until t
func (m *MockClock) Until(t time.Time) time.Duration {
	return t.Sub(m.CurrentTime)
}

// Advance moves the mock clock forward by the given duration and
// returns the new time
func (m *MockClock) Advance(d time.Duration) time.Time {
	m.CurrentTime = m.CurrentTime.Add(d)
	return m.CurrentTime
}

// SetTime sets the mock clock to a specific time
func (m *MockClock) SetTime(t time.Time) {
	m.CurrentTime = t
}
