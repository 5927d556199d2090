package production

import "time"

// mustRecipe panics on an invalid built-in definition. Only used for the
// compiled-in default table, which is covered by tests.
func mustRecipe(
	station StationKind,
	id RecipeID,
	inputs map[ItemID]int,
	unitDuration time.Duration,
	output ItemID,
	outputQty int,
	experience int,
) *RecipeDefinition {
	def, err := NewRecipeDefinition(station, id, inputs, unitDuration, output, outputQty, experience)
	if err != nil {
		panic(err)
	}
	return def
}

// DefaultRecipeTable returns the built-in recipe data for the three stations.
// Content editing lives elsewhere; this is the seed set the game ships with.
func DefaultRecipeTable() *RecipeTable {
	table, err := NewRecipeTable(
		// Smelting: ores -> bars
		mustRecipe(StationSmelting, "copper_bar",
			map[ItemID]int{"copper_ore": 1}, 4*time.Second, "copper_bar", 1, 8),
		mustRecipe(StationSmelting, "tin_bar",
			map[ItemID]int{"tin_ore": 1}, 4*time.Second, "tin_bar", 1, 8),
		mustRecipe(StationSmelting, "bronze_bar",
			map[ItemID]int{"copper_ore": 1, "tin_ore": 1}, 6*time.Second, "bronze_bar", 1, 15),
		mustRecipe(StationSmelting, "iron_bar",
			map[ItemID]int{"iron_ore": 2}, 8*time.Second, "iron_bar", 1, 25),
		mustRecipe(StationSmelting, "steel_bar",
			map[ItemID]int{"iron_ore": 2, "coal": 1}, 12*time.Second, "steel_bar", 1, 40),

		// Assembly: bars -> gear
		mustRecipe(StationAssembly, "bronze_dagger",
			map[ItemID]int{"bronze_bar": 1}, 6*time.Second, "bronze_dagger", 1, 12),
		mustRecipe(StationAssembly, "bronze_sword",
			map[ItemID]int{"bronze_bar": 2}, 10*time.Second, "bronze_sword", 1, 25),
		mustRecipe(StationAssembly, "iron_sword",
			map[ItemID]int{"iron_bar": 2}, 14*time.Second, "iron_sword", 1, 45),
		mustRecipe(StationAssembly, "steel_platebody",
			map[ItemID]int{"steel_bar": 5}, 30*time.Second, "steel_platebody", 1, 150),

		// Cutting: logs -> planks
		mustRecipe(StationCutting, "oak_plank",
			map[ItemID]int{"oak_log": 2}, 3*time.Second, "oak_plank", 1, 6),
		mustRecipe(StationCutting, "willow_plank",
			map[ItemID]int{"willow_log": 2}, 5*time.Second, "willow_plank", 1, 14),
		mustRecipe(StationCutting, "maple_plank",
			map[ItemID]int{"maple_log": 2}, 8*time.Second, "maple_plank", 1, 28),
	)
	if err != nil {
		panic(err)
	}
	return table
}
