package shared

import "strconv"

// CharacterID identifies a player character. Every production job, inventory
// row and skill row is scoped to exactly one character.
type CharacterID int64

// NewCharacterID validates and wraps a raw character id
func NewCharacterID(raw int64) (CharacterID, error) {
	if raw <= 0 {
		return 0, NewValidationError("characterId", "must be a positive integer")
	}
	return CharacterID(raw), nil
}

// Int64 returns the raw numeric id
func (id CharacterID) Int64() int64 {
	return int64(id)
}

func (id CharacterID) String() string {
	return strconv.FormatInt(int64(id), 10)
}
