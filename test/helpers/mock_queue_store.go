package helpers

import (
	"context"
	"sync"

	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/shared"
)

type queueKey struct {
	characterID shared.CharacterID
	station     production.StationKind
}

// MockQueueStore is an in-memory implementation of production.QueueStore for
// testing. A nil Put is stored as an explicit cleared marker, matching the
// real repository's semantics.
type MockQueueStore struct {
	mu    sync.Mutex
	slots map[queueKey]*production.BatchJob

	// Error injection
	PutErr error
	GetErr error

	// Call recording
	PutCount int
	NilPuts  int
}

// NewMockQueueStore creates a new mock queue store
func NewMockQueueStore() *MockQueueStore {
	return &MockQueueStore{
		slots: make(map[queueKey]*production.BatchJob),
	}
}

// Put mirrors the job, or the cleared marker when job is nil
func (m *MockQueueStore) Put(ctx context.Context, characterID shared.CharacterID, station production.StationKind, job *production.BatchJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	m.PutCount++
	if job == nil {
		m.NilPuts++
	}
	m.slots[queueKey{characterID: characterID, station: station}] = job
	return nil
}

// Get returns the mirrored job, nil when the slot is empty or cleared
func (m *MockQueueStore) Get(ctx context.Context, characterID shared.CharacterID, station production.StationKind) (*production.BatchJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.slots[queueKey{characterID: characterID, station: station}], nil
}

// Seed installs a job directly, as if a previous process persisted it
func (m *MockQueueStore) Seed(job *production.BatchJob) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[queueKey{characterID: job.CharacterID(), station: job.Station()}] = job
}

// Stored returns the current slot contents without error injection
func (m *MockQueueStore) Stored(characterID shared.CharacterID, station production.StationKind) *production.BatchJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slots[queueKey{characterID: characterID, station: station}]
}
