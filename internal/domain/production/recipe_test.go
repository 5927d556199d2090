package production

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecipeDefinition_Validation(t *testing.T) {
	inputs := map[ItemID]int{"copper_ore": 1}

	tests := []struct {
		name      string
		station   StationKind
		id        RecipeID
		inputs    map[ItemID]int
		duration  time.Duration
		output    ItemID
		outputQty int
		xp        int
		wantErr   bool
	}{
		{"valid", StationSmelting, "copper_bar", inputs, 4 * time.Second, "copper_bar", 1, 8, false},
		{"unknown station", StationKind("FORGE"), "copper_bar", inputs, 4 * time.Second, "copper_bar", 1, 8, true},
		{"empty id", StationSmelting, "", inputs, 4 * time.Second, "copper_bar", 1, 8, true},
		{"no inputs", StationSmelting, "copper_bar", map[ItemID]int{}, 4 * time.Second, "copper_bar", 1, 8, true},
		{"zero input qty", StationSmelting, "copper_bar", map[ItemID]int{"copper_ore": 0}, 4 * time.Second, "copper_bar", 1, 8, true},
		{"zero duration", StationSmelting, "copper_bar", inputs, 0, "copper_bar", 1, 8, true},
		{"empty output", StationSmelting, "copper_bar", inputs, 4 * time.Second, "", 1, 8, true},
		{"zero output qty", StationSmelting, "copper_bar", inputs, 4 * time.Second, "copper_bar", 0, 8, true},
		{"negative xp", StationSmelting, "copper_bar", inputs, 4 * time.Second, "copper_bar", 1, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecipeDefinition(tt.station, tt.id, tt.inputs, tt.duration, tt.output, tt.outputQty, tt.xp)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInputsFor_ScalesAndCopies(t *testing.T) {
	recipe, err := NewRecipeDefinition(
		StationSmelting,
		"bronze_bar",
		map[ItemID]int{"copper_ore": 1, "tin_ore": 1},
		6*time.Second,
		"bronze_bar",
		1,
		15,
	)
	require.NoError(t, err)

	scaled := recipe.InputsFor(10)

	assert.Equal(t, map[ItemID]int{"copper_ore": 10, "tin_ore": 10}, scaled)

	// Mutating the returned map must not touch the definition
	scaled["copper_ore"] = 999
	assert.Equal(t, 1, recipe.Inputs["copper_ore"])
}

func TestOutputFor(t *testing.T) {
	recipe, err := NewRecipeDefinition(
		StationCutting,
		"oak_plank",
		map[ItemID]int{"oak_log": 2},
		3*time.Second,
		"oak_plank",
		1,
		6,
	)
	require.NoError(t, err)

	assert.Equal(t, map[ItemID]int{"oak_plank": 3}, recipe.OutputFor(3))
}

func TestRecipeTable_Lookup(t *testing.T) {
	table := DefaultRecipeTable()

	recipe, err := table.Lookup(StationSmelting, "copper_bar")
	require.NoError(t, err)
	assert.Equal(t, RecipeID("copper_bar"), recipe.ID)

	// Same id at the wrong station is unknown
	_, err = table.Lookup(StationAssembly, "copper_bar")
	var unknown *ErrUnknownRecipe
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, StationAssembly, unknown.Station)
}

func TestRecipeTable_RejectsDuplicates(t *testing.T) {
	recipe, err := NewRecipeDefinition(
		StationSmelting, "copper_bar", map[ItemID]int{"copper_ore": 1}, 4*time.Second, "copper_bar", 1, 8,
	)
	require.NoError(t, err)

	_, err = NewRecipeTable(recipe, recipe)

	assert.Error(t, err)
}

func TestRecipeTable_ForStationSorted(t *testing.T) {
	table := DefaultRecipeTable()

	defs := table.ForStation(StationCutting)

	require.NotEmpty(t, defs)
	for i := 1; i < len(defs); i++ {
		assert.Less(t, string(defs[i-1].ID), string(defs[i].ID))
	}
	for _, def := range defs {
		assert.Equal(t, StationCutting, def.Station)
	}
}

func TestDefaultRecipeTable_CoversEveryStation(t *testing.T) {
	table := DefaultRecipeTable()

	for _, station := range AllStationKinds() {
		assert.NotEmpty(t, table.ForStation(station), "station %s has no recipes", station)
	}
}

func TestStationKind_Skill(t *testing.T) {
	assert.Equal(t, "smithing", StationSmelting.Skill())
	assert.Equal(t, "crafting", StationAssembly.Skill())
	assert.Equal(t, "carpentry", StationCutting.Skill())
}

func TestParseStationKind(t *testing.T) {
	kind, err := ParseStationKind("SMELTING")
	require.NoError(t, err)
	assert.Equal(t, StationSmelting, kind)

	_, err = ParseStationKind("smelting")
	assert.Error(t, err)
}
