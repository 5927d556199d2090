package persistence

import (
	"time"
)

// CharacterModel represents the characters table
type CharacterModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;unique;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (CharacterModel) TableName() string {
	return "characters"
}

// InventoryItemModel represents the inventory_items table.
// One row per (character, item); quantity may reach zero but never negative.
type InventoryItemModel struct {
	CharacterID int64           `gorm:"column:character_id;primaryKey;not null"`
	Character   *CharacterModel `gorm:"foreignKey:CharacterID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ItemID      string          `gorm:"column:item_id;primaryKey;not null"`
	Quantity    int             `gorm:"column:quantity;not null;default:0"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (InventoryItemModel) TableName() string {
	return "inventory_items"
}

// CharacterSkillModel represents the character_skills table
type CharacterSkillModel struct {
	CharacterID int64           `gorm:"column:character_id;primaryKey;not null"`
	Character   *CharacterModel `gorm:"foreignKey:CharacterID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Skill       string          `gorm:"column:skill;primaryKey;not null"`
	Experience  int             `gorm:"column:experience;not null;default:0"`
	Level       int             `gorm:"column:level;not null;default:1"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (CharacterSkillModel) TableName() string {
	return "character_skills"
}

// StationQueueModel represents the station_queues table: the durable mirror
// of at most one batch job per (character, station). A row with active=false
// is the explicit "no active job" marker, distinguishable from a slot that
// was never written.
type StationQueueModel struct {
	CharacterID    int64           `gorm:"column:character_id;primaryKey;not null"`
	Character      *CharacterModel `gorm:"foreignKey:CharacterID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	StationKind    string          `gorm:"column:station_kind;primaryKey;not null"`
	Active         bool            `gorm:"column:active;not null;default:false"`
	JobID          string          `gorm:"column:job_id"`
	RecipeID       string          `gorm:"column:recipe_id"`
	TotalUnits     int             `gorm:"column:total_units;not null;default:0"`
	RemainingUnits int             `gorm:"column:remaining_units;not null;default:0"`
	UnitDurationMs int64           `gorm:"column:unit_duration_ms;not null;default:0"`
	UnitStartedAt  time.Time       `gorm:"column:unit_started_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (StationQueueModel) TableName() string {
	return "station_queues"
}
