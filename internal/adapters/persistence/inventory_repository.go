package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/shared"
)

// GormInventoryRepository implements production.InventoryService using GORM.
// Deduct runs in a single transaction so the whole cost applies or none of
// it does; the scheduler relies on that for its upfront-cost guarantee.
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GORM inventory repository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// Deduct atomically removes the given quantities. When any line falls short
// it returns *production.ErrInsufficientInputs listing every shortfall and
// deducts nothing.
func (r *GormInventoryRepository) Deduct(
	ctx context.Context,
	characterID shared.CharacterID,
	items map[production.ItemID]int,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		missing := make(map[production.ItemID]int)
		held := make(map[production.ItemID]int, len(items))

		for _, item := range sortedItems(items) {
			needed := items[item]
			var row InventoryItemModel
			err := tx.Where("character_id = ? AND item_id = ?", characterID.Int64(), string(item)).
				First(&row).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					missing[item] = needed
					continue
				}
				return fmt.Errorf("failed to read inventory line %s: %w", item, err)
			}
			if row.Quantity < needed {
				missing[item] = needed - row.Quantity
				continue
			}
			held[item] = row.Quantity
		}

		if len(missing) > 0 {
			return &production.ErrInsufficientInputs{CharacterID: characterID, Missing: missing}
		}

		for _, item := range sortedItems(items) {
			err := tx.Model(&InventoryItemModel{}).
				Where("character_id = ? AND item_id = ?", characterID.Int64(), string(item)).
				Update("quantity", held[item]-items[item]).Error
			if err != nil {
				return fmt.Errorf("failed to deduct inventory line %s: %w", item, err)
			}
		}
		return nil
	})
}

// Credit adds the given quantities, creating missing rows
func (r *GormInventoryRepository) Credit(
	ctx context.Context,
	characterID shared.CharacterID,
	items map[production.ItemID]int,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range sortedItems(items) {
			model := &InventoryItemModel{
				CharacterID: characterID.Int64(),
				ItemID:      string(item),
				Quantity:    items[item],
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "character_id"}, {Name: "item_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"quantity": gorm.Expr("quantity + ?", items[item]),
				}),
			}).Create(model).Error
			if err != nil {
				return fmt.Errorf("failed to credit inventory line %s: %w", item, err)
			}
		}
		return nil
	})
}

// Quantity returns the held amount of one item (0 if no row exists)
func (r *GormInventoryRepository) Quantity(
	ctx context.Context,
	characterID shared.CharacterID,
	item production.ItemID,
) (int, error) {
	var row InventoryItemModel
	err := r.db.WithContext(ctx).
		Where("character_id = ? AND item_id = ?", characterID.Int64(), string(item)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read inventory line %s: %w", item, err)
	}
	return row.Quantity, nil
}

// sortedItems returns map keys in a stable order so transactions touch rows
// deterministically (avoids deadlocks between concurrent multi-line writes)
func sortedItems(items map[production.ItemID]int) []production.ItemID {
	keys := make([]production.ItemID, 0, len(items))
	for item := range items {
		keys = append(keys, item)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
