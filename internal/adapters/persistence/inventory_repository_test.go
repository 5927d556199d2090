package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blooprocket-create/ChaosInFull-sub002/internal/adapters/persistence"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/shared"
	"github.com/blooprocket-create/ChaosInFull-sub002/test/helpers"
)

func TestInventoryRepository_CreditAndQuantity(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormInventoryRepository(db)
	characterID, _ := shared.NewCharacterID(1)

	require.NoError(t, repo.Credit(context.Background(), characterID, map[production.ItemID]int{"copper_ore": 10}))
	require.NoError(t, repo.Credit(context.Background(), characterID, map[production.ItemID]int{"copper_ore": 5, "tin_ore": 3}))

	copper, err := repo.Quantity(context.Background(), characterID, "copper_ore")
	require.NoError(t, err)
	assert.Equal(t, 15, copper)

	tin, err := repo.Quantity(context.Background(), characterID, "tin_ore")
	require.NoError(t, err)
	assert.Equal(t, 3, tin)

	// Missing rows read as zero
	gold, err := repo.Quantity(context.Background(), characterID, "gold_ore")
	require.NoError(t, err)
	assert.Equal(t, 0, gold)
}

func TestInventoryRepository_DeductHappyPath(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormInventoryRepository(db)
	characterID, _ := shared.NewCharacterID(1)
	require.NoError(t, repo.Credit(context.Background(), characterID, map[production.ItemID]int{"copper_ore": 10, "tin_ore": 10}))

	err := repo.Deduct(context.Background(), characterID, map[production.ItemID]int{"copper_ore": 4, "tin_ore": 10})

	require.NoError(t, err)
	copper, _ := repo.Quantity(context.Background(), characterID, "copper_ore")
	tin, _ := repo.Quantity(context.Background(), characterID, "tin_ore")
	assert.Equal(t, 6, copper)
	assert.Equal(t, 0, tin)
}

func TestInventoryRepository_DeductIsAllOrNothing(t *testing.T) {
	// Arrange: enough copper, not enough tin
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormInventoryRepository(db)
	characterID, _ := shared.NewCharacterID(1)
	require.NoError(t, repo.Credit(context.Background(), characterID, map[production.ItemID]int{"copper_ore": 10, "tin_ore": 2}))

	// Act
	err := repo.Deduct(context.Background(), characterID, map[production.ItemID]int{
		"copper_ore": 5,
		"tin_ore":    5,
		"coal":       1,
	})

	// Assert: the error lists every shortfall and nothing was deducted
	var insufficient *production.ErrInsufficientInputs
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, map[production.ItemID]int{"tin_ore": 3, "coal": 1}, insufficient.Missing)

	copper, _ := repo.Quantity(context.Background(), characterID, "copper_ore")
	tin, _ := repo.Quantity(context.Background(), characterID, "tin_ore")
	assert.Equal(t, 10, copper)
	assert.Equal(t, 2, tin)
}

func TestInventoryRepository_ScopedPerCharacter(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormInventoryRepository(db)
	first, _ := shared.NewCharacterID(1)
	second, _ := shared.NewCharacterID(2)

	require.NoError(t, repo.Credit(context.Background(), first, map[production.ItemID]int{"oak_log": 8}))

	err := repo.Deduct(context.Background(), second, map[production.ItemID]int{"oak_log": 1})

	var insufficient *production.ErrInsufficientInputs
	require.ErrorAs(t, err, &insufficient)
	quantity, _ := repo.Quantity(context.Background(), first, "oak_log")
	assert.Equal(t, 8, quantity)
}
