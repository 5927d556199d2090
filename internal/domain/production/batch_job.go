package production

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/shared"
)

// BatchJob is the in-flight descriptor of one multi-unit production run at a
// single station for a single character.
//
// Invariants:
//   - 0 <= remainingUnits <= totalUnits
//   - unitDuration is captured from the recipe at creation and never changes
//     mid-job, even if the recipe table is edited
//   - at most one BatchJob exists per (character, station) at any time;
//     enforcement lives in the StationScheduler
//
// The whole batch's input cost is deducted up front when the job is created.
// Completed units are sunk cost; only unprocessed units are refundable.
type BatchJob struct {
	id             string
	characterID    shared.CharacterID
	station        StationKind
	recipeID       RecipeID
	totalUnits     int
	remainingUnits int
	unitDuration   time.Duration
	unitStartedAt  time.Time
}

// NewBatchJob creates a job for a freshly started batch. The current unit
// begins at now.
func NewBatchJob(characterID shared.CharacterID, recipe *RecipeDefinition, units int, now time.Time) (*BatchJob, error) {
	if units < 1 {
		return nil, &ErrInvalidUnitCount{Count: units}
	}
	return &BatchJob{
		id:             uuid.New().String(),
		characterID:    characterID,
		station:        recipe.Station,
		recipeID:       recipe.ID,
		totalUnits:     units,
		remainingUnits: units,
		unitDuration:   recipe.UnitDuration,
		unitStartedAt:  now,
	}, nil
}

// ReconstituteBatchJob rebuilds a job from persisted data (for repository use
// only). Invariants are re-checked because the store is a mirror, not a
// source of truth, and a bad row must not leak into the scheduler.
func ReconstituteBatchJob(
	id string,
	characterID shared.CharacterID,
	station StationKind,
	recipeID RecipeID,
	totalUnits int,
	remainingUnits int,
	unitDuration time.Duration,
	unitStartedAt time.Time,
) (*BatchJob, error) {
	if id == "" {
		return nil, fmt.Errorf("batch job id cannot be empty")
	}
	if !station.IsValid() {
		return nil, fmt.Errorf("batch job %s: unknown station kind %q", id, station)
	}
	if totalUnits < 1 {
		return nil, &ErrInvalidUnitCount{Count: totalUnits}
	}
	if remainingUnits < 0 || remainingUnits > totalUnits {
		return nil, &ErrInvalidJobTransition{
			JobID:  id,
			Reason: fmt.Sprintf("remaining units %d out of range [0, %d]", remainingUnits, totalUnits),
		}
	}
	if unitDuration <= 0 {
		return nil, fmt.Errorf("batch job %s: unit duration must be positive", id)
	}
	return &BatchJob{
		id:             id,
		characterID:    characterID,
		station:        station,
		recipeID:       recipeID,
		totalUnits:     totalUnits,
		remainingUnits: remainingUnits,
		unitDuration:   unitDuration,
		unitStartedAt:  unitStartedAt,
	}, nil
}

// Getters

func (j *BatchJob) ID() string                      { return j.id }
func (j *BatchJob) CharacterID() shared.CharacterID { return j.characterID }
func (j *BatchJob) Station() StationKind            { return j.station }
func (j *BatchJob) RecipeID() RecipeID              { return j.recipeID }
func (j *BatchJob) TotalUnits() int                 { return j.totalUnits }
func (j *BatchJob) RemainingUnits() int             { return j.remainingUnits }
func (j *BatchJob) UnitDuration() time.Duration     { return j.unitDuration }
func (j *BatchJob) UnitStartedAt() time.Time        { return j.unitStartedAt }

// CompletedUnits returns how many units have already finished
func (j *BatchJob) CompletedUnits() int {
	return j.totalUnits - j.remainingUnits
}

// IsFinished reports whether every unit has completed
func (j *BatchJob) IsFinished() bool {
	return j.remainingUnits == 0
}

// NextTickAt returns when the current unit completes
func (j *BatchJob) NextTickAt() time.Time {
	return j.unitStartedAt.Add(j.unitDuration)
}

// CompleteUnit records one finished unit and starts the next one at now
func (j *BatchJob) CompleteUnit(now time.Time) error {
	if j.remainingUnits == 0 {
		return &ErrInvalidJobTransition{JobID: j.id, Reason: "no units remaining to complete"}
	}
	j.remainingUnits--
	j.unitStartedAt = now
	return nil
}

// FastForward applies units completed during an absence in one step. The
// caller must have bounded units by RemainingUnits; anything larger is a
// programming error and is rejected so the job can never over-complete.
// unitStartedAt is the phase-corrected start of the unit now in progress
// (ignored when the fast-forward exhausts the batch).
func (j *BatchJob) FastForward(units int, unitStartedAt time.Time) error {
	if units < 0 {
		return &ErrInvalidJobTransition{JobID: j.id, Reason: fmt.Sprintf("cannot fast-forward %d units", units)}
	}
	if units > j.remainingUnits {
		return &ErrInvalidJobTransition{
			JobID:  j.id,
			Reason: fmt.Sprintf("fast-forward of %d units exceeds %d remaining", units, j.remainingUnits),
		}
	}
	j.remainingUnits -= units
	if j.remainingUnits > 0 {
		j.unitStartedAt = unitStartedAt
	}
	return nil
}

// Progress returns the read-only projection observers poll to render
// progress bars. It must never be used as a source of truth for mutation.
func (j *BatchJob) Progress() Progress {
	return Progress{
		RecipeID:       j.recipeID,
		Station:        j.station,
		TotalUnits:     j.totalUnits,
		RemainingUnits: j.remainingUnits,
		UnitDuration:   j.unitDuration,
		UnitStartedAt:  j.unitStartedAt,
	}
}

func (j *BatchJob) String() string {
	return fmt.Sprintf("BatchJob[%s, %s/%s, %d/%d remaining]",
		j.id[:8], j.station, j.recipeID, j.remainingUnits, j.totalUnits)
}

// Progress is the poll-only view of a running batch
type Progress struct {
	RecipeID       RecipeID
	Station        StationKind
	TotalUnits     int
	RemainingUnits int
	UnitDuration   time.Duration
	UnitStartedAt  time.Time
}

// ElapsedFraction returns how far the current unit has progressed at now,
// clamped to [0, 1]
func (p Progress) ElapsedFraction(now time.Time) float64 {
	if p.UnitDuration <= 0 {
		return 0
	}
	f := float64(now.Sub(p.UnitStartedAt)) / float64(p.UnitDuration)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
