package steps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cucumber/godog"
	"github.com/rs/zerolog"

	appproduction "github.com/blooprocket-create/ChaosInFull-sub002/internal/application/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/shared"
	"github.com/blooprocket-create/ChaosInFull-sub002/test/helpers"
)

type productionContext struct {
	characterID shared.CharacterID
	clock       *shared.MockClock
	inventory   *helpers.MockInventoryService
	experience  *helpers.MockExperienceService
	store       *helpers.MockQueueStore
	observer    *helpers.RecordingObserver
	recipes     []*production.RecipeDefinition
	scheduler   *appproduction.StationScheduler
	reconciler  *appproduction.CatchUpReconciler

	lastErr       error
	lastProgress  production.Progress
	lastRefund    map[production.ItemID]int
	lastReconcile map[production.StationKind]appproduction.ReconcileResult
}

func (pc *productionContext) reset() {
	if pc.scheduler != nil {
		pc.scheduler.StopAll()
	}
	pc.characterID = 0
	pc.clock = shared.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	pc.inventory = helpers.NewMockInventoryService()
	pc.experience = helpers.NewMockExperienceService()
	pc.store = helpers.NewMockQueueStore()
	pc.observer = helpers.NewRecordingObserver()
	pc.recipes = nil
	pc.scheduler = nil
	pc.reconciler = nil
	pc.lastErr = nil
	pc.lastProgress = production.Progress{}
	pc.lastRefund = nil
	pc.lastReconcile = nil
}

func (pc *productionContext) build() error {
	table, err := production.NewRecipeTable(pc.recipes...)
	if err != nil {
		return err
	}
	pc.scheduler = appproduction.NewStationScheduler(
		table, pc.inventory, pc.experience, pc.store, pc.observer, pc.clock, zerolog.Nop(),
	)
	pc.reconciler = appproduction.NewCatchUpReconciler(
		table, pc.inventory, pc.experience, pc.store, pc.scheduler, pc.observer, pc.clock, zerolog.Nop(),
	)
	return nil
}

func (pc *productionContext) aCharacterWithID(raw int) error {
	id, err := shared.NewCharacterID(int64(raw))
	if err != nil {
		return err
	}
	pc.characterID = id
	return nil
}

func (pc *productionContext) theSmeltingRecipe(recipeID string, inputQty int, inputItem string, seconds, xp int) error {
	recipe, err := production.NewRecipeDefinition(
		production.StationSmelting,
		production.RecipeID(recipeID),
		map[production.ItemID]int{production.ItemID(inputItem): inputQty},
		time.Duration(seconds)*time.Second,
		production.ItemID(recipeID),
		1,
		xp,
	)
	if err != nil {
		return err
	}
	pc.recipes = append(pc.recipes, recipe)
	return pc.build()
}

func (pc *productionContext) theCharacterHasInInventory(qty int, item string) error {
	pc.inventory.Set(pc.characterID, production.ItemID(item), qty)
	return nil
}

func (pc *productionContext) theCharacterStartsABatch(units int, recipeID string) error {
	progress, err := pc.scheduler.Start(
		context.Background(), pc.characterID, production.StationSmelting,
		production.RecipeID(recipeID), units,
	)
	pc.lastErr = err
	pc.lastProgress = progress
	return nil
}

func (pc *productionContext) timePassesOffline(amount int, unit string) error {
	// Going offline stops live runners the way a process shutdown would;
	// persisted jobs stay in the store
	pc.scheduler.StopAll()
	switch unit {
	case "seconds":
		pc.clock.Advance(time.Duration(amount) * time.Second)
	case "minutes":
		pc.clock.Advance(time.Duration(amount) * time.Minute)
	default:
		return fmt.Errorf("unknown time unit %q", unit)
	}
	return nil
}

func (pc *productionContext) theSessionIsReconciled() error {
	results, err := pc.reconciler.ReconcileCharacter(context.Background(), pc.characterID)
	pc.lastErr = err
	pc.lastReconcile = results
	return err
}

func (pc *productionContext) theCharacterCancelsTheSmeltingBatch() error {
	refund, err := pc.scheduler.Cancel(context.Background(), pc.characterID, production.StationSmelting)
	pc.lastErr = err
	pc.lastRefund = refund
	return nil
}

// Assertions

func (pc *productionContext) theBatchIsAccepted(remaining int) error {
	if pc.lastErr != nil {
		return fmt.Errorf("expected batch to be accepted, got: %v", pc.lastErr)
	}
	if pc.lastProgress.RemainingUnits != remaining {
		return fmt.Errorf("expected %d units remaining, got %d", remaining, pc.lastProgress.RemainingUnits)
	}
	return nil
}

func (pc *productionContext) theBatchIsRejectedInsufficient() error {
	var insufficient *production.ErrInsufficientInputs
	if !errors.As(pc.lastErr, &insufficient) {
		return fmt.Errorf("expected insufficient inputs rejection, got: %v", pc.lastErr)
	}
	return nil
}

func (pc *productionContext) theBatchIsRejectedBusy() error {
	var active *production.ErrBatchAlreadyActive
	if !errors.As(pc.lastErr, &active) {
		return fmt.Errorf("expected busy station rejection, got: %v", pc.lastErr)
	}
	return nil
}

func (pc *productionContext) theCharacterHolds(qty int, item string) error {
	held := pc.inventory.Quantity(pc.characterID, production.ItemID(item))
	if held != qty {
		return fmt.Errorf("expected %d %s, held %d", qty, item, held)
	}
	return nil
}

func (pc *productionContext) itemsAreRefunded(qty int, item string) error {
	if pc.lastErr != nil {
		return fmt.Errorf("cancel failed: %v", pc.lastErr)
	}
	if pc.lastRefund[production.ItemID(item)] != qty {
		return fmt.Errorf("expected refund of %d %s, got %v", qty, item, pc.lastRefund)
	}
	return nil
}

func (pc *productionContext) unitsAreCredited(units int) error {
	result, ok := pc.lastReconcile[production.StationSmelting]
	if !ok {
		return fmt.Errorf("no reconcile result for the smelting station")
	}
	if result.CompletedUnits != units {
		return fmt.Errorf("expected %d caught-up units, got %d", units, result.CompletedUnits)
	}
	return nil
}

func (pc *productionContext) theCharacterHasExperience(xp int, skill string) error {
	total := pc.experience.Total(pc.characterID, skill)
	if total != xp {
		return fmt.Errorf("expected %d %s experience, got %d", xp, skill, total)
	}
	return nil
}

func (pc *productionContext) theNextUnitCompletesIn(seconds int) error {
	result, ok := pc.lastReconcile[production.StationSmelting]
	if !ok || result.Resumed == nil {
		return fmt.Errorf("no resumed batch to inspect")
	}
	nextTick := result.Resumed.UnitStartedAt.Add(result.Resumed.UnitDuration)
	remaining := nextTick.Sub(pc.clock.Now())
	if remaining != time.Duration(seconds)*time.Second {
		return fmt.Errorf("expected next tick in %ds, got %s", seconds, remaining)
	}
	return nil
}

func (pc *productionContext) theSmeltingSlotIsIdle() error {
	if pc.scheduler.HasActive(pc.characterID, production.StationSmelting) {
		return fmt.Errorf("expected the smelting slot to be idle")
	}
	if pc.store.Stored(pc.characterID, production.StationSmelting) != nil {
		return fmt.Errorf("expected the persisted slot to be cleared")
	}
	return nil
}

// InitializeProductionScenario registers the batch production step definitions
func InitializeProductionScenario(sc *godog.ScenarioContext) {
	pc := &productionContext{}

	sc.Before(func(ctx context.Context, scenario *godog.Scenario) (context.Context, error) {
		pc.reset()
		return ctx, nil
	})
	sc.After(func(ctx context.Context, scenario *godog.Scenario, err error) (context.Context, error) {
		if pc.scheduler != nil {
			pc.scheduler.StopAll()
		}
		return ctx, nil
	})

	sc.Step(`^a character with id (\d+)$`, pc.aCharacterWithID)
	sc.Step(`^the smelting recipe "([^"]+)" consuming (\d+) "([^"]+)" per unit over (\d+) seconds granting (\d+) experience$`, pc.theSmeltingRecipe)
	sc.Step(`^the character has (\d+) "([^"]+)" in inventory$`, pc.theCharacterHasInInventory)
	sc.Step(`^the character starts a batch of (\d+) "([^"]+)" at the smelting station$`, pc.theCharacterStartsABatch)
	sc.Step(`^(\d+) (seconds|minutes) pass while the character is offline$`, pc.timePassesOffline)
	sc.Step(`^the character's session is reconciled$`, pc.theSessionIsReconciled)
	sc.Step(`^the character cancels the smelting batch$`, pc.theCharacterCancelsTheSmeltingBatch)

	sc.Step(`^the batch is accepted with (\d+) units remaining$`, pc.theBatchIsAccepted)
	sc.Step(`^the batch is rejected for insufficient materials$`, pc.theBatchIsRejectedInsufficient)
	sc.Step(`^the batch is rejected because the station is busy$`, pc.theBatchIsRejectedBusy)
	sc.Step(`^the character holds (\d+) "([^"]+)"$`, pc.theCharacterHolds)
	sc.Step(`^(\d+) "([^"]+)" are refunded$`, pc.itemsAreRefunded)
	sc.Step(`^(\d+) units are credited from the absence$`, pc.unitsAreCredited)
	sc.Step(`^the character has (\d+) "([^"]+)" experience$`, pc.theCharacterHasExperience)
	sc.Step(`^the next unit completes in (\d+) seconds$`, pc.theNextUnitCompletesIn)
	sc.Step(`^the smelting slot is idle$`, pc.theSmeltingSlotIsIdle)
}
