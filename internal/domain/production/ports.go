package production

import (
	"context"

	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/shared"
)

// InventoryService mutates item counts in a character's inventory.
// Deduct applies the whole map atomically: either every line is deducted or
// none is, returning *ErrInsufficientInputs when any line falls short.
type InventoryService interface {
	Deduct(ctx context.Context, characterID shared.CharacterID, items map[ItemID]int) error
	Credit(ctx context.Context, characterID shared.CharacterID, items map[ItemID]int) error
}

// ExperienceGrant is the result of granting skill experience
type ExperienceGrant struct {
	Skill         string
	Amount        int
	NewExperience int
	NewLevel      int
}

// ExperienceService grants skill experience and reports the new totals
type ExperienceService interface {
	Grant(ctx context.Context, characterID shared.CharacterID, skill string, amount int) (ExperienceGrant, error)
}

// QueueStore durably mirrors at most one BatchJob per (character, station).
// Put with a nil job records an explicit "no active job" marker that is
// distinguishable from a slot that was never written. While a scheduler is
// live in memory the store is a write-through cache, never a second source
// of truth.
type QueueStore interface {
	Put(ctx context.Context, characterID shared.CharacterID, station StationKind, job *BatchJob) error
	Get(ctx context.Context, characterID shared.CharacterID, station StationKind) (*BatchJob, error)
}

// ProgressObserver receives scheduler lifecycle callbacks. Observer layers
// (session push, UI projection) subscribe here at construction time instead
// of registering global callbacks. Implementations must be fast and must not
// call back into the scheduler.
type ProgressObserver interface {
	BatchStarted(characterID shared.CharacterID, progress Progress)
	UnitCompleted(characterID shared.CharacterID, progress Progress)
	BatchCompleted(characterID shared.CharacterID, station StationKind, recipeID RecipeID)
	BatchCancelled(characterID shared.CharacterID, station StationKind, refunded map[ItemID]int)
	ExperienceGained(characterID shared.CharacterID, grant ExperienceGrant)
}

// NoopObserver is the default observer when none is injected
type NoopObserver struct{}

func (NoopObserver) BatchStarted(shared.CharacterID, Progress)                   {}
func (NoopObserver) UnitCompleted(shared.CharacterID, Progress)                  {}
func (NoopObserver) BatchCompleted(shared.CharacterID, StationKind, RecipeID)    {}
func (NoopObserver) BatchCancelled(shared.CharacterID, StationKind, map[ItemID]int) {}
func (NoopObserver) ExperienceGained(shared.CharacterID, ExperienceGrant)        {}
