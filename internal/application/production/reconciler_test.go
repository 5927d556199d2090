package production_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appproduction "github.com/blooprocket-create/ChaosInFull-sub002/internal/application/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/shared"
	"github.com/blooprocket-create/ChaosInFull-sub002/test/helpers"
)

type reconcilerFixture struct {
	reconciler *appproduction.CatchUpReconciler
	scheduler  *appproduction.StationScheduler
	table      *production.RecipeTable
	inventory  *helpers.MockInventoryService
	experience *helpers.MockExperienceService
	store      *helpers.MockQueueStore
	observer   *helpers.RecordingObserver
	clock      *shared.MockClock
}

func newReconcilerFixture(t *testing.T) *reconcilerFixture {
	t.Helper()
	f := &reconcilerFixture{
		table:      catchUpTable(t),
		inventory:  helpers.NewMockInventoryService(),
		experience: helpers.NewMockExperienceService(),
		store:      helpers.NewMockQueueStore(),
		observer:   helpers.NewRecordingObserver(),
		clock:      shared.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	}
	f.scheduler = appproduction.NewStationScheduler(
		f.table, f.inventory, f.experience, f.store, f.observer, f.clock, zerolog.Nop(),
	)
	f.reconciler = appproduction.NewCatchUpReconciler(
		f.table, f.inventory, f.experience, f.store, f.scheduler, f.observer, f.clock, zerolog.Nop(),
	)
	t.Cleanup(f.scheduler.StopAll)
	return f
}

// catchUpTable uses realistic multi-second durations; the mock clock means no
// real waiting happens
func catchUpTable(t *testing.T) *production.RecipeTable {
	t.Helper()
	smelt, err := production.NewRecipeDefinition(
		production.StationSmelting, "copper_bar",
		map[production.ItemID]int{"copper_ore": 1},
		4*time.Second, "copper_bar", 1, 8,
	)
	require.NoError(t, err)
	table, err := production.NewRecipeTable(smelt)
	require.NoError(t, err)
	return table
}

// seedJob persists a job as if a previous process started it at startedAt
func (f *reconcilerFixture) seedJob(t *testing.T, characterID shared.CharacterID, units int, startedAt time.Time) {
	t.Helper()
	recipe, err := f.table.Lookup(production.StationSmelting, "copper_bar")
	require.NoError(t, err)
	job, err := production.NewBatchJob(characterID, recipe, units, startedAt)
	require.NoError(t, err)
	f.store.Seed(job)
}

func TestReconcile_IdleSlotIsNoOp(t *testing.T) {
	f := newReconcilerFixture(t)
	characterID := mustCharacterID(t, 1)

	result, err := f.reconciler.Reconcile(context.Background(), characterID, production.StationSmelting)

	require.NoError(t, err)
	assert.Equal(t, 0, result.CompletedUnits)
	assert.Nil(t, result.Resumed)
}

func TestReconcile_CatchesUpAndPreservesCadence(t *testing.T) {
	// Arrange: 5 units of 4s started 17s ago, so 4 units completed and the
	// fifth is 1s into its run
	f := newReconcilerFixture(t)
	characterID := mustCharacterID(t, 1)
	start := f.clock.Now()
	f.seedJob(t, characterID, 5, start)
	f.clock.Advance(17 * time.Second)

	// Act
	result, err := f.reconciler.Reconcile(context.Background(), characterID, production.StationSmelting)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4, result.CompletedUnits)
	require.NotNil(t, result.Resumed)
	assert.Equal(t, 1, result.Resumed.RemainingUnits)

	// The unit in progress started 1s ago; next tick in 3s, not 4
	assert.Equal(t, f.clock.Now().Add(-1*time.Second), result.Resumed.UnitStartedAt)

	assert.Equal(t, 4, f.inventory.Quantity(characterID, "copper_bar"))
	assert.Equal(t, 32, f.experience.Total(characterID, "smithing"))
	assert.True(t, f.scheduler.HasActive(characterID, production.StationSmelting))

	// The corrected job was persisted
	stored := f.store.Stored(characterID, production.StationSmelting)
	require.NotNil(t, stored)
	assert.Equal(t, 1, stored.RemainingUnits())
}

func TestReconcile_CompletesBatchThatFinishedDuringAbsence(t *testing.T) {
	// Arrange: 5 units of 4s, gone for far longer than 20s
	f := newReconcilerFixture(t)
	characterID := mustCharacterID(t, 1)
	f.seedJob(t, characterID, 5, f.clock.Now())
	f.clock.Advance(90 * time.Minute)

	// Act
	result, err := f.reconciler.Reconcile(context.Background(), characterID, production.StationSmelting)

	// Assert: credits are capped at the 5 queued units no matter how long
	// the absence lasted
	require.NoError(t, err)
	assert.Equal(t, 5, result.CompletedUnits)
	assert.Nil(t, result.Resumed)
	assert.Equal(t, 5, f.inventory.Quantity(characterID, "copper_bar"))
	assert.Equal(t, 40, f.experience.Total(characterID, "smithing"))
	assert.False(t, f.scheduler.HasActive(characterID, production.StationSmelting))
	assert.Nil(t, f.store.Stored(characterID, production.StationSmelting))
	assert.Equal(t, 1, f.observer.CompletedCount())
}

func TestReconcile_BeforeFirstUnitCompletes(t *testing.T) {
	// Arrange: only 2s of a 4s unit elapsed
	f := newReconcilerFixture(t)
	characterID := mustCharacterID(t, 1)
	f.seedJob(t, characterID, 3, f.clock.Now())
	f.clock.Advance(2 * time.Second)

	// Act
	result, err := f.reconciler.Reconcile(context.Background(), characterID, production.StationSmelting)

	// Assert: nothing credited, remaining tick time is 2s
	require.NoError(t, err)
	assert.Equal(t, 0, result.CompletedUnits)
	require.NotNil(t, result.Resumed)
	assert.Equal(t, 3, result.Resumed.RemainingUnits)
	assert.Equal(t, f.clock.Now().Add(-2*time.Second), result.Resumed.UnitStartedAt)
	assert.Equal(t, 0, f.inventory.Quantity(characterID, "copper_bar"))
}

func TestReconcile_SecondCallIsIdempotent(t *testing.T) {
	// Arrange
	f := newReconcilerFixture(t)
	characterID := mustCharacterID(t, 1)
	f.seedJob(t, characterID, 5, f.clock.Now())
	f.clock.Advance(10 * time.Second)

	first, err := f.reconciler.Reconcile(context.Background(), characterID, production.StationSmelting)
	require.NoError(t, err)
	assert.Equal(t, 2, first.CompletedUnits)

	// Act: a second pass while the resumed runner is live
	second, err := f.reconciler.Reconcile(context.Background(), characterID, production.StationSmelting)

	// Assert: the live scheduler is authoritative; nothing double-credited
	require.NoError(t, err)
	assert.Equal(t, 0, second.CompletedUnits)
	require.NotNil(t, second.Resumed)
	assert.Equal(t, 3, second.Resumed.RemainingUnits)
	assert.Equal(t, 2, f.inventory.Quantity(characterID, "copper_bar"))
}

func TestReconcile_RecipeRemovedFromTable(t *testing.T) {
	// Arrange: persist a job whose recipe the table no longer knows
	f := newReconcilerFixture(t)
	characterID := mustCharacterID(t, 1)
	orphan, err := production.NewRecipeDefinition(
		production.StationSmelting, "mithril_bar",
		map[production.ItemID]int{"mithril_ore": 1},
		4*time.Second, "mithril_bar", 1, 50,
	)
	require.NoError(t, err)
	job, err := production.NewBatchJob(characterID, orphan, 3, f.clock.Now())
	require.NoError(t, err)
	f.store.Seed(job)
	f.clock.Advance(time.Minute)

	// Act
	_, err = f.reconciler.Reconcile(context.Background(), characterID, production.StationSmelting)

	// Assert: error surfaces, nothing credited, the row is left in place
	var unknown *production.ErrUnknownRecipe
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, 0, f.inventory.Quantity(characterID, "mithril_bar"))
	assert.NotNil(t, f.store.Stored(characterID, production.StationSmelting))
}

func TestReconcileCharacter_CoversEveryStation(t *testing.T) {
	f := newReconcilerFixture(t)
	characterID := mustCharacterID(t, 1)
	f.seedJob(t, characterID, 2, f.clock.Now())
	f.clock.Advance(30 * time.Second)

	results, err := f.reconciler.ReconcileCharacter(context.Background(), characterID)

	require.NoError(t, err)
	assert.Len(t, results, len(production.AllStationKinds()))
	assert.Equal(t, 2, results[production.StationSmelting].CompletedUnits)
	assert.Equal(t, 0, results[production.StationAssembly].CompletedUnits)
	assert.Equal(t, 0, results[production.StationCutting].CompletedUnits)
}

func TestReconcile_CollaboratorFailuresDoNotBlockCatchUp(t *testing.T) {
	// Arrange: every credit and grant fails during the pass
	f := newReconcilerFixture(t)
	characterID := mustCharacterID(t, 1)
	f.seedJob(t, characterID, 2, f.clock.Now())
	f.clock.Advance(30 * time.Second)
	f.inventory.CreditErr = assert.AnError
	f.experience.GrantErr = assert.AnError

	// Act
	result, err := f.reconciler.Reconcile(context.Background(), characterID, production.StationSmelting)

	// Assert: the job still completes and the slot is cleared
	require.NoError(t, err)
	assert.Equal(t, 2, result.CompletedUnits)
	assert.Nil(t, f.store.Stored(characterID, production.StationSmelting))
}
