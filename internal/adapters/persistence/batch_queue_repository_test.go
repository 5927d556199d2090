package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blooprocket-create/ChaosInFull-sub002/internal/adapters/persistence"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/shared"
	"github.com/blooprocket-create/ChaosInFull-sub002/test/helpers"
)

func newQueueJob(t *testing.T, characterID shared.CharacterID, units int, startedAt time.Time) *production.BatchJob {
	t.Helper()
	recipe, err := production.NewRecipeDefinition(
		production.StationSmelting, "iron_bar",
		map[production.ItemID]int{"iron_ore": 2},
		8*time.Second, "iron_bar", 1, 25,
	)
	require.NoError(t, err)
	job, err := production.NewBatchJob(characterID, recipe, units, startedAt)
	require.NoError(t, err)
	return job
}

func TestBatchQueueRepository_PutGetRoundtrip(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormBatchQueueRepository(db)
	characterID, _ := shared.NewCharacterID(42)
	startedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	job := newQueueJob(t, characterID, 7, startedAt)

	// Act
	require.NoError(t, repo.Put(context.Background(), characterID, production.StationSmelting, job))
	loaded, err := repo.Get(context.Background(), characterID, production.StationSmelting)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, job.ID(), loaded.ID())
	assert.Equal(t, characterID, loaded.CharacterID())
	assert.Equal(t, production.StationSmelting, loaded.Station())
	assert.Equal(t, production.RecipeID("iron_bar"), loaded.RecipeID())
	assert.Equal(t, 7, loaded.TotalUnits())
	assert.Equal(t, 7, loaded.RemainingUnits())
	assert.Equal(t, 8*time.Second, loaded.UnitDuration())
	assert.True(t, startedAt.Equal(loaded.UnitStartedAt()))
}

func TestBatchQueueRepository_UpsertOverwrites(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormBatchQueueRepository(db)
	characterID, _ := shared.NewCharacterID(42)
	job := newQueueJob(t, characterID, 5, time.Now().UTC())

	require.NoError(t, repo.Put(context.Background(), characterID, production.StationSmelting, job))

	// Advance the job and mirror it again
	require.NoError(t, job.CompleteUnit(time.Now().UTC()))
	require.NoError(t, repo.Put(context.Background(), characterID, production.StationSmelting, job))

	loaded, err := repo.Get(context.Background(), characterID, production.StationSmelting)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 4, loaded.RemainingUnits())
}

func TestBatchQueueRepository_NilPutClearsSlot(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormBatchQueueRepository(db)
	characterID, _ := shared.NewCharacterID(42)
	job := newQueueJob(t, characterID, 5, time.Now().UTC())

	require.NoError(t, repo.Put(context.Background(), characterID, production.StationSmelting, job))
	require.NoError(t, repo.Put(context.Background(), characterID, production.StationSmelting, nil))

	loaded, err := repo.Get(context.Background(), characterID, production.StationSmelting)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// The cleared slot does not show up as active either
	slots, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestBatchQueueRepository_GetNeverWrittenSlot(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormBatchQueueRepository(db)
	characterID, _ := shared.NewCharacterID(42)

	loaded, err := repo.Get(context.Background(), characterID, production.StationCutting)

	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestBatchQueueRepository_ListActive(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormBatchQueueRepository(db)
	first, _ := shared.NewCharacterID(1)
	second, _ := shared.NewCharacterID(2)

	require.NoError(t, repo.Put(context.Background(), first, production.StationSmelting, newQueueJob(t, first, 3, time.Now().UTC())))
	require.NoError(t, repo.Put(context.Background(), second, production.StationSmelting, newQueueJob(t, second, 2, time.Now().UTC())))
	// A cleared slot must not be listed
	require.NoError(t, repo.Put(context.Background(), second, production.StationCutting, nil))

	slots, err := repo.ListActive(context.Background())

	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, first, slots[0].CharacterID)
	assert.Equal(t, second, slots[1].CharacterID)
	assert.Equal(t, production.StationSmelting, slots[0].Station)
}
