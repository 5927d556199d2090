package helpers

import (
	"context"
	"sync"

	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/shared"
)

// MockInventoryService is an in-memory implementation of
// production.InventoryService for testing
type MockInventoryService struct {
	mu    sync.Mutex
	Items map[shared.CharacterID]map[production.ItemID]int

	// Error injection
	DeductErr error
	CreditErr error

	// Call recording
	DeductCalls []map[production.ItemID]int
	CreditCalls []map[production.ItemID]int
}

// NewMockInventoryService creates a new mock inventory service
func NewMockInventoryService() *MockInventoryService {
	return &MockInventoryService{
		Items: make(map[shared.CharacterID]map[production.ItemID]int),
	}
}

// Set stocks the character's inventory with an item
func (m *MockInventoryService) Set(characterID shared.CharacterID, item production.ItemID, quantity int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Items[characterID] == nil {
		m.Items[characterID] = make(map[production.ItemID]int)
	}
	m.Items[characterID][item] = quantity
}

// Quantity returns the held amount of one item
func (m *MockInventoryService) Quantity(characterID shared.CharacterID, item production.ItemID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Items[characterID][item]
}

// Deduct removes items atomically, mirroring the real repository's
// all-or-nothing semantics
func (m *MockInventoryService) Deduct(ctx context.Context, characterID shared.CharacterID, items map[production.ItemID]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeductErr != nil {
		return m.DeductErr
	}

	held := m.Items[characterID]
	missing := make(map[production.ItemID]int)
	for item, needed := range items {
		if held[item] < needed {
			missing[item] = needed - held[item]
		}
	}
	if len(missing) > 0 {
		return &production.ErrInsufficientInputs{CharacterID: characterID, Missing: missing}
	}

	for item, needed := range items {
		held[item] -= needed
	}
	m.DeductCalls = append(m.DeductCalls, copyItems(items))
	return nil
}

// Credit adds items, creating missing lines
func (m *MockInventoryService) Credit(ctx context.Context, characterID shared.CharacterID, items map[production.ItemID]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreditErr != nil {
		return m.CreditErr
	}

	if m.Items[characterID] == nil {
		m.Items[characterID] = make(map[production.ItemID]int)
	}
	for item, quantity := range items {
		m.Items[characterID][item] += quantity
	}
	m.CreditCalls = append(m.CreditCalls, copyItems(items))
	return nil
}

func copyItems(items map[production.ItemID]int) map[production.ItemID]int {
	out := make(map[production.ItemID]int, len(items))
	for item, quantity := range items {
		out[item] = quantity
	}
	return out
}
