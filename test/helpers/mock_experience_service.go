package helpers

import (
	"context"
	"sync"

	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/shared"
)

type skillKey struct {
	characterID shared.CharacterID
	skill       string
}

// MockExperienceService is an in-memory implementation of
// production.ExperienceService for testing
type MockExperienceService struct {
	mu     sync.Mutex
	totals map[skillKey]int

	// Error injection
	GrantErr error

	// Call recording
	Grants []production.ExperienceGrant
}

// NewMockExperienceService creates a new mock experience service
func NewMockExperienceService() *MockExperienceService {
	return &MockExperienceService{
		totals: make(map[skillKey]int),
	}
}

// Grant accumulates experience and returns the new total. Levels are not
// modeled here; NewLevel is always 1.
func (m *MockExperienceService) Grant(ctx context.Context, characterID shared.CharacterID, skill string, amount int) (production.ExperienceGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GrantErr != nil {
		return production.ExperienceGrant{}, m.GrantErr
	}

	key := skillKey{characterID: characterID, skill: skill}
	m.totals[key] += amount
	grant := production.ExperienceGrant{
		Skill:         skill,
		Amount:        amount,
		NewExperience: m.totals[key],
		NewLevel:      1,
	}
	m.Grants = append(m.Grants, grant)
	return grant, nil
}

// Total returns the accumulated experience for one skill
func (m *MockExperienceService) Total(characterID shared.CharacterID, skill string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals[skillKey{characterID: characterID, skill: skill}]
}

// GrantCount returns how many grants were applied
func (m *MockExperienceService) GrantCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Grants)
}
