package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/shared"
)

// GormExperienceRepository implements production.ExperienceService using GORM.
// Experience accumulates per (character, skill); the level is derived from
// the cumulative total and recomputed on every grant.
type GormExperienceRepository struct {
	db *gorm.DB
}

// NewGormExperienceRepository creates a new GORM experience repository
func NewGormExperienceRepository(db *gorm.DB) *GormExperienceRepository {
	return &GormExperienceRepository{db: db}
}

// Grant adds experience to a skill and returns the new totals
func (r *GormExperienceRepository) Grant(
	ctx context.Context,
	characterID shared.CharacterID,
	skill string,
	amount int,
) (production.ExperienceGrant, error) {
	if skill == "" {
		return production.ExperienceGrant{}, fmt.Errorf("skill cannot be empty")
	}
	if amount < 0 {
		return production.ExperienceGrant{}, fmt.Errorf("experience amount cannot be negative")
	}

	var grant production.ExperienceGrant
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row CharacterSkillModel
		err := tx.Where("character_id = ? AND skill = ?", characterID.Int64(), skill).
			First(&row).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to read skill row: %w", err)
			}
			row = CharacterSkillModel{
				CharacterID: characterID.Int64(),
				Skill:       skill,
				Experience:  0,
				Level:       1,
			}
		}

		row.Experience += amount
		row.Level = LevelForExperience(row.Experience)
		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("failed to save skill row: %w", err)
		}

		grant = production.ExperienceGrant{
			Skill:         skill,
			Amount:        amount,
			NewExperience: row.Experience,
			NewLevel:      row.Level,
		}
		return nil
	})
	if err != nil {
		return production.ExperienceGrant{}, err
	}
	return grant, nil
}

// SkillLevel returns the current level of one skill (1 if never trained)
func (r *GormExperienceRepository) SkillLevel(
	ctx context.Context,
	characterID shared.CharacterID,
	skill string,
) (int, error) {
	var row CharacterSkillModel
	err := r.db.WithContext(ctx).
		Where("character_id = ? AND skill = ?", characterID.Int64(), skill).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 1, nil
		}
		return 0, fmt.Errorf("failed to read skill row: %w", err)
	}
	return row.Level, nil
}

// LevelForExperience derives the level from cumulative experience.
// Reaching level L requires 100 x (L-1)^2 total experience, so levels come
// quickly at first and slow down quadratically.
func LevelForExperience(experience int) int {
	level := 1
	for experienceForLevel(level+1) <= experience {
		level++
	}
	return level
}

func experienceForLevel(level int) int {
	n := level - 1
	return 100 * n * n
}
