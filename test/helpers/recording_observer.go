package helpers

import (
	"sync"

	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/shared"
)

// RecordingObserver captures scheduler lifecycle callbacks for assertions
type RecordingObserver struct {
	mu sync.Mutex

	Started    []production.Progress
	Units      []production.Progress
	Completed  []production.RecipeID
	Cancelled  []map[production.ItemID]int
	Experience []production.ExperienceGrant
}

// NewRecordingObserver creates a new recording observer
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{}
}

func (o *RecordingObserver) BatchStarted(characterID shared.CharacterID, progress production.Progress) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Started = append(o.Started, progress)
}

func (o *RecordingObserver) UnitCompleted(characterID shared.CharacterID, progress production.Progress) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Units = append(o.Units, progress)
}

func (o *RecordingObserver) BatchCompleted(characterID shared.CharacterID, station production.StationKind, recipeID production.RecipeID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Completed = append(o.Completed, recipeID)
}

func (o *RecordingObserver) BatchCancelled(characterID shared.CharacterID, station production.StationKind, refunded map[production.ItemID]int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Cancelled = append(o.Cancelled, refunded)
}

func (o *RecordingObserver) ExperienceGained(characterID shared.CharacterID, grant production.ExperienceGrant) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Experience = append(o.Experience, grant)
}

// UnitCount returns how many unit completions were observed
func (o *RecordingObserver) UnitCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.Units)
}

// CompletedCount returns how many batch completions were observed
func (o *RecordingObserver) CompletedCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.Completed)
}
