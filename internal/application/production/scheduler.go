package production

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/shared"
)

// slotKey identifies one scheduler slot: one station kind of one character
type slotKey struct {
	characterID shared.CharacterID
	station     production.StationKind
}

// StationScheduler owns the lifecycle of at most one BatchJob per
// (character, station) and drives per-unit completion ticks. Timers live
// entirely server-side: each live batch runs a single goroutine that sleeps
// until the current unit's deadline, applies the tick, persists the job and
// re-arms. The client is a thin progress observer.
//
// Collaborator calls on the tick path (inventory credit, experience grant,
// queue persistence) are fire-and-forget: a failure is logged and swallowed,
// never retried, and never blocks the scheduler's own state transition. The
// authoritative state is the in-memory BatchJob plus its last successful
// persistence.
type StationScheduler struct {
	recipes    *production.RecipeTable
	inventory  production.InventoryService
	experience production.ExperienceService
	store      production.QueueStore
	observer   production.ProgressObserver
	clock      shared.Clock
	logger     zerolog.Logger

	mu      sync.Mutex
	runners map[slotKey]*batchRunner
}

// batchRunner is the live state of one running batch. Its mutex serializes
// the tick body against Cancel and Progress, so a timer that fires while a
// cancellation is underway observes the cancelled flag and applies nothing.
type batchRunner struct {
	mu        sync.Mutex
	job       *production.BatchJob
	recipe    *production.RecipeDefinition
	stop      chan struct{}
	done      chan struct{}
	cancelled bool
}

// NewStationScheduler wires the scheduler to its collaborators. A nil
// observer or clock falls back to no-op and real time respectively.
func NewStationScheduler(
	recipes *production.RecipeTable,
	inventory production.InventoryService,
	experience production.ExperienceService,
	store production.QueueStore,
	observer production.ProgressObserver,
	clock shared.Clock,
	logger zerolog.Logger,
) *StationScheduler {
	if observer == nil {
		observer = production.NoopObserver{}
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &StationScheduler{
		recipes:    recipes,
		inventory:  inventory,
		experience: experience,
		store:      store,
		observer:   observer,
		clock:      clock,
		logger:     logger.With().Str("component", "station_scheduler").Logger(),
	}
}

// Start begins a new batch of units at the character's station.
//
// Preconditions: no active batch for this slot, and the inventory holds at
// least inputs x units of every required item. The whole batch cost is
// deducted in a single atomic call before the job exists; on rejection no
// state changes and nothing is deducted.
func (s *StationScheduler) Start(
	ctx context.Context,
	characterID shared.CharacterID,
	station production.StationKind,
	recipeID production.RecipeID,
	units int,
) (production.Progress, error) {
	if units < 1 {
		return production.Progress{}, &production.ErrInvalidUnitCount{Count: units}
	}
	recipe, err := s.recipes.Lookup(station, recipeID)
	if err != nil {
		return production.Progress{}, err
	}

	key := slotKey{characterID: characterID, station: station}
	runner := &batchRunner{
		recipe: recipe,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	// Reserve the slot before touching the inventory so two concurrent
	// starts cannot both deduct. The reservation is rolled back if the
	// deduction is rejected. Until the job lands on the runner the slot
	// reports no active batch to Progress and Cancel.
	s.mu.Lock()
	if _, active := s.runners[key]; active {
		s.mu.Unlock()
		return production.Progress{}, &production.ErrBatchAlreadyActive{CharacterID: characterID, Station: station}
	}
	if s.runners == nil {
		s.runners = make(map[slotKey]*batchRunner)
	}
	s.runners[key] = runner
	s.mu.Unlock()

	if err := s.inventory.Deduct(ctx, characterID, recipe.InputsFor(units)); err != nil {
		s.removeRunner(key, runner)
		return production.Progress{}, err
	}

	job, err := production.NewBatchJob(characterID, recipe, units, s.clock.Now())
	if err != nil {
		// Unit count was validated above; refund to be safe and surface the error.
		s.removeRunner(key, runner)
		if creditErr := s.inventory.Credit(ctx, characterID, recipe.InputsFor(units)); creditErr != nil {
			s.logger.Error().Err(creditErr).
				Str("character", characterID.String()).
				Msg("failed to refund after rejected batch creation")
		}
		return production.Progress{}, err
	}

	// Published under the runner lock; Progress and Cancel read the job
	// under the same lock and treat nil as an idle slot.
	runner.mu.Lock()
	runner.job = job
	runner.mu.Unlock()

	if err := s.store.Put(ctx, characterID, station, job); err != nil {
		s.logger.Warn().Err(err).
			Str("character", characterID.String()).
			Str("station", station.String()).
			Msg("failed to persist new batch job")
	}

	go s.run(key, runner)

	progress := job.Progress()
	s.observer.BatchStarted(characterID, progress)
	s.logger.Info().
		Str("character", characterID.String()).
		Str("station", station.String()).
		Str("recipe", string(recipeID)).
		Int("units", units).
		Msg("batch started")
	return progress, nil
}

// Resume installs a reconciled job and continues ticking at its corrected
// phase offset. No inputs are deducted; the job already paid when it was
// started. The caller (the reconciler) has already persisted the job.
func (s *StationScheduler) Resume(job *production.BatchJob) error {
	recipe, err := s.recipes.Lookup(job.Station(), job.RecipeID())
	if err != nil {
		return err
	}

	key := slotKey{characterID: job.CharacterID(), station: job.Station()}
	runner := &batchRunner{
		job:    job,
		recipe: recipe,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	if _, active := s.runners[key]; active {
		s.mu.Unlock()
		return &production.ErrBatchAlreadyActive{CharacterID: job.CharacterID(), Station: job.Station()}
	}
	if s.runners == nil {
		s.runners = make(map[slotKey]*batchRunner)
	}
	s.runners[key] = runner
	s.mu.Unlock()

	go s.run(key, runner)

	s.logger.Info().
		Str("character", job.CharacterID().String()).
		Str("station", job.Station().String()).
		Int("remaining", job.RemainingUnits()).
		Msg("batch resumed")
	return nil
}

// Cancel stops the pending tick and refunds the inputs of every unprocessed
// unit in the same logical step, so a tick can never fire after cancellation
// has begun. Inputs of completed units are sunk and not refunded. Returns
// the refunded items.
func (s *StationScheduler) Cancel(
	ctx context.Context,
	characterID shared.CharacterID,
	station production.StationKind,
) (map[production.ItemID]int, error) {
	key := slotKey{characterID: characterID, station: station}

	s.mu.Lock()
	runner := s.runners[key]
	s.mu.Unlock()
	if runner == nil {
		return nil, &production.ErrNoActiveBatch{CharacterID: characterID, Station: station}
	}

	runner.mu.Lock()
	defer runner.mu.Unlock()
	if runner.cancelled || runner.job == nil || runner.job.IsFinished() {
		return nil, &production.ErrNoActiveBatch{CharacterID: characterID, Station: station}
	}
	runner.cancelled = true
	close(runner.stop)

	refund := runner.recipe.InputsFor(runner.job.RemainingUnits())
	if err := s.inventory.Credit(ctx, characterID, refund); err != nil {
		s.logger.Error().Err(err).
			Str("character", characterID.String()).
			Str("station", station.String()).
			Msg("failed to refund cancelled batch")
	}
	if err := s.store.Put(ctx, characterID, station, nil); err != nil {
		s.logger.Warn().Err(err).
			Str("character", characterID.String()).
			Str("station", station.String()).
			Msg("failed to clear cancelled batch job")
	}
	s.removeRunner(key, runner)

	s.observer.BatchCancelled(characterID, station, refund)
	s.logger.Info().
		Str("character", characterID.String()).
		Str("station", station.String()).
		Int("refunded_units", runner.job.RemainingUnits()).
		Msg("batch cancelled")
	return refund, nil
}

// Progress returns the read-only projection of the live batch, or
// ErrNoActiveBatch when the slot is idle
func (s *StationScheduler) Progress(
	characterID shared.CharacterID,
	station production.StationKind,
) (production.Progress, error) {
	s.mu.Lock()
	runner := s.runners[slotKey{characterID: characterID, station: station}]
	s.mu.Unlock()
	if runner == nil {
		return production.Progress{}, &production.ErrNoActiveBatch{CharacterID: characterID, Station: station}
	}

	runner.mu.Lock()
	defer runner.mu.Unlock()
	if runner.cancelled || runner.job == nil {
		return production.Progress{}, &production.ErrNoActiveBatch{CharacterID: characterID, Station: station}
	}
	return runner.job.Progress(), nil
}

// HasActive reports whether a live runner exists for the slot
func (s *StationScheduler) HasActive(characterID shared.CharacterID, station production.StationKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, active := s.runners[slotKey{characterID: characterID, station: station}]
	return active
}

// StopAll halts every live runner without cancelling the batches. Persisted
// jobs stay in the queue store and are picked up by the reconciler on the
// next boot. Blocks until all runner goroutines exit.
func (s *StationScheduler) StopAll() {
	s.mu.Lock()
	runners := make([]*batchRunner, 0, len(s.runners))
	for _, runner := range s.runners {
		runners = append(runners, runner)
	}
	s.runners = nil
	s.mu.Unlock()

	started := make([]*batchRunner, 0, len(runners))
	for _, runner := range runners {
		runner.mu.Lock()
		if !runner.cancelled {
			runner.cancelled = true
			close(runner.stop)
		}
		// A runner without a job is a Start still inside its deduction;
		// its loop goroutine has not launched, so there is nothing to
		// wait for.
		if runner.job != nil {
			started = append(started, runner)
		}
		runner.mu.Unlock()
	}
	for _, runner := range started {
		<-runner.done
	}
}

// run is the per-batch timer loop. Exactly one goroutine per live batch;
// unit n+1 is armed only after unit n's effects are applied, so ticks fire
// strictly in sequence.
func (s *StationScheduler) run(key slotKey, runner *batchRunner) {
	defer close(runner.done)
	for {
		wait := s.clock.Until(runner.job.NextTickAt())
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)
		select {
		case <-runner.stop:
			timer.Stop()
			return
		case <-timer.C:
		}
		if finished := s.tick(key, runner); finished {
			return
		}
	}
}

// tick applies one unit completion: credit output, grant experience, advance
// the job, persist. Returns true when the batch is exhausted. Steps 1-2 are
// fire-and-forget; the state transition in steps 3-5 does not depend on
// their success.
func (s *StationScheduler) tick(key slotKey, runner *batchRunner) bool {
	runner.mu.Lock()
	defer runner.mu.Unlock()
	if runner.cancelled {
		return true
	}

	ctx := context.Background()
	characterID := key.characterID
	recipe := runner.recipe

	if err := s.inventory.Credit(ctx, characterID, recipe.OutputFor(1)); err != nil {
		s.logger.Warn().Err(err).
			Str("character", characterID.String()).
			Str("recipe", string(recipe.ID)).
			Msg("output credit failed; unit completes anyway")
	}

	grant, err := s.experience.Grant(ctx, characterID, recipe.Station.Skill(), recipe.Experience)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("character", characterID.String()).
			Str("skill", recipe.Station.Skill()).
			Msg("experience grant failed; unit completes anyway")
	} else {
		s.observer.ExperienceGained(characterID, grant)
	}

	if err := runner.job.CompleteUnit(s.clock.Now()); err != nil {
		// Unreachable while the runner loop is the only mutator.
		s.logger.Error().Err(err).Msg("unit completion rejected")
		return true
	}

	if runner.job.IsFinished() {
		if err := s.store.Put(ctx, characterID, key.station, nil); err != nil {
			s.logger.Warn().Err(err).
				Str("character", characterID.String()).
				Str("station", key.station.String()).
				Msg("failed to clear finished batch job")
		}
		s.removeRunner(key, runner)
		s.observer.BatchCompleted(characterID, key.station, recipe.ID)
		s.logger.Info().
			Str("character", characterID.String()).
			Str("station", key.station.String()).
			Str("recipe", string(recipe.ID)).
			Msg("batch completed")
		return true
	}

	if err := s.store.Put(ctx, characterID, key.station, runner.job); err != nil {
		s.logger.Warn().Err(err).
			Str("character", characterID.String()).
			Str("station", key.station.String()).
			Msg("failed to persist batch progress")
	}
	s.observer.UnitCompleted(characterID, runner.job.Progress())
	return false
}

// removeRunner clears the slot if it is still held by this runner
func (s *StationScheduler) removeRunner(key slotKey, runner *batchRunner) {
	s.mu.Lock()
	if s.runners[key] == runner {
		delete(s.runners, key)
	}
	s.mu.Unlock()
}
