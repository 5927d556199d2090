package production

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/shared"
)

// ReconcileResult reports what a catch-up pass did for one station slot
type ReconcileResult struct {
	// CompletedUnits is how many units were credited during the absence
	CompletedUnits int

	// Resumed is the projection of the batch that continues ticking, nil
	// when the slot is idle after reconciliation
	Resumed *production.Progress
}

// CatchUpReconciler fast-forwards a persisted BatchJob across the time no
// live timer was running and hands the corrected job back to the scheduler.
// It runs once per (character, station) when a session (re)acquires a
// character, and on daemon boot for every persisted job.
//
// The number of units credited is capped at the job's remaining units:
// crediting more would fabricate resources that were never queued.
type CatchUpReconciler struct {
	recipes    *production.RecipeTable
	inventory  production.InventoryService
	experience production.ExperienceService
	store      production.QueueStore
	scheduler  *StationScheduler
	observer   production.ProgressObserver
	clock      shared.Clock
	logger     zerolog.Logger

	mu       sync.Mutex
	inFlight map[slotKey]struct{}
}

// NewCatchUpReconciler wires the reconciler to the same collaborators as the
// scheduler it resumes jobs into
func NewCatchUpReconciler(
	recipes *production.RecipeTable,
	inventory production.InventoryService,
	experience production.ExperienceService,
	store production.QueueStore,
	scheduler *StationScheduler,
	observer production.ProgressObserver,
	clock shared.Clock,
	logger zerolog.Logger,
) *CatchUpReconciler {
	if observer == nil {
		observer = production.NoopObserver{}
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &CatchUpReconciler{
		recipes:    recipes,
		inventory:  inventory,
		experience: experience,
		store:      store,
		scheduler:  scheduler,
		observer:   observer,
		clock:      clock,
		logger:     logger.With().Str("component", "catchup_reconciler").Logger(),
		inFlight:   make(map[slotKey]struct{}),
	}
}

// Reconcile computes and credits the units that completed while the slot had
// no live timer, then resumes ticking at the preserved cadence. Calling it
// for an idle slot is a no-op. Calling it while a live runner exists credits
// nothing and returns the live projection; the in-memory scheduler is
// authoritative while it runs. Concurrent invocations for the same slot are
// rejected because a duplicate pass would double-grant.
func (r *CatchUpReconciler) Reconcile(
	ctx context.Context,
	characterID shared.CharacterID,
	station production.StationKind,
) (ReconcileResult, error) {
	key := slotKey{characterID: characterID, station: station}

	r.mu.Lock()
	if _, busy := r.inFlight[key]; busy {
		r.mu.Unlock()
		return ReconcileResult{}, fmt.Errorf("reconcile already in progress for character %s station %s", characterID, station)
	}
	r.inFlight[key] = struct{}{}
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		delete(r.inFlight, key)
		r.mu.Unlock()
	}()

	if r.scheduler.HasActive(characterID, station) {
		progress, err := r.scheduler.Progress(characterID, station)
		if err != nil {
			// Runner finished between the check and the read; treat as idle.
			return ReconcileResult{}, nil
		}
		return ReconcileResult{Resumed: &progress}, nil
	}

	job, err := r.store.Get(ctx, characterID, station)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("failed to load persisted batch job: %w", err)
	}
	if job == nil {
		return ReconcileResult{}, nil
	}

	recipe, err := r.recipes.Lookup(station, job.RecipeID())
	if err != nil {
		// The recipe was removed while the job was in flight. The job keeps
		// its captured duration but its outputs are gone from the table, so
		// nothing can be credited. Leave the row for operator inspection.
		r.logger.Error().
			Str("character", characterID.String()).
			Str("station", station.String()).
			Str("recipe", string(job.RecipeID())).
			Msg("persisted batch references a recipe no longer in the table")
		return ReconcileResult{}, err
	}

	now := r.clock.Now()
	elapsed := now.Sub(job.UnitStartedAt())
	if elapsed < 0 {
		elapsed = 0
	}

	unitsElapsed := int(elapsed / job.UnitDuration())
	if unitsElapsed > job.RemainingUnits() {
		unitsElapsed = job.RemainingUnits()
	}

	// Credit each caught-up unit the same way a live tick would have:
	// output then experience, sequentially, failures swallowed.
	for i := 0; i < unitsElapsed; i++ {
		if err := r.inventory.Credit(ctx, characterID, recipe.OutputFor(1)); err != nil {
			r.logger.Warn().Err(err).
				Str("character", characterID.String()).
				Str("recipe", string(recipe.ID)).
				Msg("catch-up output credit failed")
		}
		grant, err := r.experience.Grant(ctx, characterID, recipe.Station.Skill(), recipe.Experience)
		if err != nil {
			r.logger.Warn().Err(err).
				Str("character", characterID.String()).
				Str("skill", recipe.Station.Skill()).
				Msg("catch-up experience grant failed")
		} else {
			r.observer.ExperienceGained(characterID, grant)
		}
	}

	if unitsElapsed == job.RemainingUnits() {
		if err := job.FastForward(unitsElapsed, now); err != nil {
			return ReconcileResult{}, err
		}
		if err := r.store.Put(ctx, characterID, station, nil); err != nil {
			r.logger.Warn().Err(err).
				Str("character", characterID.String()).
				Str("station", station.String()).
				Msg("failed to clear caught-up batch job")
		}
		r.observer.BatchCompleted(characterID, station, recipe.ID)
		r.logger.Info().
			Str("character", characterID.String()).
			Str("station", station.String()).
			Int("caught_up", unitsElapsed).
			Msg("batch completed during absence")
		return ReconcileResult{CompletedUnits: unitsElapsed}, nil
	}

	// The batch continues. The unit now in progress started partway through
	// the absence, so the next tick must fire after
	// unitDuration - (elapsed mod unitDuration), preserving the original
	// cadence instead of restarting a full unit.
	intoUnit := elapsed % job.UnitDuration()
	if err := job.FastForward(unitsElapsed, now.Add(-intoUnit)); err != nil {
		return ReconcileResult{}, err
	}

	if err := r.store.Put(ctx, characterID, station, job); err != nil {
		r.logger.Warn().Err(err).
			Str("character", characterID.String()).
			Str("station", station.String()).
			Msg("failed to persist reconciled batch job")
	}
	if err := r.scheduler.Resume(job); err != nil {
		return ReconcileResult{}, fmt.Errorf("failed to resume reconciled batch: %w", err)
	}

	progress := job.Progress()
	r.logger.Info().
		Str("character", characterID.String()).
		Str("station", station.String()).
		Int("caught_up", unitsElapsed).
		Int("remaining", progress.RemainingUnits).
		Msg("batch reconciled and resumed")
	return ReconcileResult{CompletedUnits: unitsElapsed, Resumed: &progress}, nil
}

// ReconcileCharacter runs a catch-up pass for every station kind of one
// character. This is the session layer's entry point on load.
func (r *CatchUpReconciler) ReconcileCharacter(
	ctx context.Context,
	characterID shared.CharacterID,
) (map[production.StationKind]ReconcileResult, error) {
	results := make(map[production.StationKind]ReconcileResult, len(production.AllStationKinds()))
	for _, station := range production.AllStationKinds() {
		result, err := r.Reconcile(ctx, characterID, station)
		if err != nil {
			return results, err
		}
		results[station] = result
	}
	return results, nil
}
