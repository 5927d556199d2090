package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/shared"
)

// GormBatchQueueRepository implements production.QueueStore using GORM
type GormBatchQueueRepository struct {
	db *gorm.DB
}

// NewGormBatchQueueRepository creates a new GORM batch queue repository
func NewGormBatchQueueRepository(db *gorm.DB) *GormBatchQueueRepository {
	return &GormBatchQueueRepository{db: db}
}

// Put mirrors the current batch job for the slot. A nil job writes the
// explicit cleared marker rather than deleting the row, so "no active job"
// survives as a persisted value.
func (r *GormBatchQueueRepository) Put(
	ctx context.Context,
	characterID shared.CharacterID,
	station production.StationKind,
	job *production.BatchJob,
) error {
	model := &StationQueueModel{
		CharacterID: characterID.Int64(),
		StationKind: station.String(),
	}
	if job != nil {
		model.Active = true
		model.JobID = job.ID()
		model.RecipeID = string(job.RecipeID())
		model.TotalUnits = job.TotalUnits()
		model.RemainingUnits = job.RemainingUnits()
		model.UnitDurationMs = job.UnitDuration().Milliseconds()
		model.UnitStartedAt = job.UnitStartedAt()
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "character_id"}, {Name: "station_kind"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"active", "job_id", "recipe_id", "total_units",
			"remaining_units", "unit_duration_ms", "unit_started_at", "updated_at",
		}),
	}).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to persist station queue slot: %w", result.Error)
	}
	return nil
}

// Get loads the mirrored batch job for the slot. Returns nil for both a
// never-written slot and an explicitly cleared one.
func (r *GormBatchQueueRepository) Get(
	ctx context.Context,
	characterID shared.CharacterID,
	station production.StationKind,
) (*production.BatchJob, error) {
	var model StationQueueModel
	result := r.db.WithContext(ctx).
		Where("character_id = ? AND station_kind = ?", characterID.Int64(), station.String()).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load station queue slot: %w", result.Error)
	}
	if !model.Active {
		return nil, nil
	}
	return r.modelToJob(&model)
}

// ActiveSlot identifies one persisted running batch
type ActiveSlot struct {
	CharacterID shared.CharacterID
	Station     production.StationKind
}

// ListActive returns every slot with a persisted running batch. Used on
// daemon boot to reconcile jobs that outlived the previous process.
func (r *GormBatchQueueRepository) ListActive(ctx context.Context) ([]ActiveSlot, error) {
	var models []StationQueueModel
	result := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("character_id ASC, station_kind ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list active station queue slots: %w", result.Error)
	}

	slots := make([]ActiveSlot, 0, len(models))
	for _, model := range models {
		station, err := production.ParseStationKind(model.StationKind)
		if err != nil {
			return nil, fmt.Errorf("corrupt station queue row for character %d: %w", model.CharacterID, err)
		}
		slots = append(slots, ActiveSlot{
			CharacterID: shared.CharacterID(model.CharacterID),
			Station:     station,
		})
	}
	return slots, nil
}

func (r *GormBatchQueueRepository) modelToJob(model *StationQueueModel) (*production.BatchJob, error) {
	station, err := production.ParseStationKind(model.StationKind)
	if err != nil {
		return nil, fmt.Errorf("corrupt station queue row: %w", err)
	}
	job, err := production.ReconstituteBatchJob(
		model.JobID,
		shared.CharacterID(model.CharacterID),
		station,
		production.RecipeID(model.RecipeID),
		model.TotalUnits,
		model.RemainingUnits,
		time.Duration(model.UnitDurationMs)*time.Millisecond,
		model.UnitStartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("corrupt station queue row: %w", err)
	}
	return job, nil
}
