package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/shared"
)

// Character is the application-facing view of a character row
type Character struct {
	ID   shared.CharacterID
	Name string
}

// GormCharacterRepository persists character rows
type GormCharacterRepository struct {
	db *gorm.DB
}

// NewGormCharacterRepository creates a new GORM character repository
func NewGormCharacterRepository(db *gorm.DB) *GormCharacterRepository {
	return &GormCharacterRepository{db: db}
}

// Create inserts a new character and returns it with its assigned id
func (r *GormCharacterRepository) Create(ctx context.Context, name string) (*Character, error) {
	if name == "" {
		return nil, fmt.Errorf("character name cannot be empty")
	}
	model := &CharacterModel{Name: name}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, fmt.Errorf("failed to create character: %w", err)
	}
	return &Character{ID: shared.CharacterID(model.ID), Name: model.Name}, nil
}

// FindByID retrieves a character by id
func (r *GormCharacterRepository) FindByID(ctx context.Context, id shared.CharacterID) (*Character, error) {
	var model CharacterModel
	err := r.db.WithContext(ctx).Where("id = ?", id.Int64()).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("character %s not found", id)
		}
		return nil, fmt.Errorf("failed to find character: %w", err)
	}
	return &Character{ID: shared.CharacterID(model.ID), Name: model.Name}, nil
}

// FindByName retrieves a character by its unique name
func (r *GormCharacterRepository) FindByName(ctx context.Context, name string) (*Character, error) {
	var model CharacterModel
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("character %q not found", name)
		}
		return nil, fmt.Errorf("failed to find character: %w", err)
	}
	return &Character{ID: shared.CharacterID(model.ID), Name: model.Name}, nil
}
