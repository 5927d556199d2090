package production

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/shared"
)

// ErrBatchAlreadyActive - a batch is already running for this station slot.
// Starting a new job is rejected; jobs are never queued or merged.
type ErrBatchAlreadyActive struct {
	CharacterID shared.CharacterID
	Station     StationKind
}

func (e *ErrBatchAlreadyActive) Error() string {
	return fmt.Sprintf("character %s already has an active batch at %s", e.CharacterID, e.Station)
}

// ErrNoActiveBatch - cancel or progress was requested for an idle station slot
type ErrNoActiveBatch struct {
	CharacterID shared.CharacterID
	Station     StationKind
}

func (e *ErrNoActiveBatch) Error() string {
	return fmt.Sprintf("character %s has no active batch at %s", e.CharacterID, e.Station)
}

// ErrUnknownRecipe - lookup failed for (station, recipe id)
type ErrUnknownRecipe struct {
	Station  StationKind
	RecipeID RecipeID
}

func (e *ErrUnknownRecipe) Error() string {
	return fmt.Sprintf("no recipe %q at station %s", e.RecipeID, e.Station)
}

// ErrInvalidUnitCount - a batch must produce at least one unit
type ErrInvalidUnitCount struct {
	Count int
}

func (e *ErrInvalidUnitCount) Error() string {
	return fmt.Sprintf("invalid unit count %d: must be at least 1", e.Count)
}

// ErrInsufficientInputs - the inventory holds less than inputs x units of at
// least one required item. The batch is rejected with no partial deduction.
type ErrInsufficientInputs struct {
	CharacterID shared.CharacterID
	Missing     map[ItemID]int // item -> shortfall
}

func (e *ErrInsufficientInputs) Error() string {
	lines := make([]string, 0, len(e.Missing))
	for item, short := range e.Missing {
		lines = append(lines, fmt.Sprintf("%s x%d", item, short))
	}
	sort.Strings(lines)
	return fmt.Sprintf("character %s is missing materials: %s", e.CharacterID, strings.Join(lines, ", "))
}

// ErrInvalidJobTransition - a BatchJob method was called in a state that
// does not permit it
type ErrInvalidJobTransition struct {
	JobID  string
	Reason string
}

func (e *ErrInvalidJobTransition) Error() string {
	return fmt.Sprintf("batch job %s: %s", e.JobID, e.Reason)
}
