package production

import (
	"fmt"
	"sort"
	"time"
)

// ItemID identifies a stackable inventory item (ore, bar, log, plank, gear)
type ItemID string

// RecipeID identifies a recipe within its station's table
type RecipeID string

// RecipeDefinition describes one craftable recipe: what a single unit costs,
// how long it takes, and what it yields. Definitions are immutable data -
// they are looked up at batch start and never mutated at runtime. A running
// batch keeps the duration captured at creation even if the table is edited.
type RecipeDefinition struct {
	Station      StationKind
	ID           RecipeID
	Inputs       map[ItemID]int
	UnitDuration time.Duration
	Output       ItemID
	OutputQty    int
	Experience   int
}

// NewRecipeDefinition validates and builds a recipe definition
func NewRecipeDefinition(
	station StationKind,
	id RecipeID,
	inputs map[ItemID]int,
	unitDuration time.Duration,
	output ItemID,
	outputQty int,
	experience int,
) (*RecipeDefinition, error) {
	if !station.IsValid() {
		return nil, fmt.Errorf("recipe %s: unknown station kind %q", id, station)
	}
	if id == "" {
		return nil, fmt.Errorf("recipe id cannot be empty")
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("recipe %s: must consume at least one input", id)
	}
	for item, qty := range inputs {
		if item == "" || qty <= 0 {
			return nil, fmt.Errorf("recipe %s: invalid input line %q x%d", id, item, qty)
		}
	}
	if unitDuration <= 0 {
		return nil, fmt.Errorf("recipe %s: unit duration must be positive", id)
	}
	if output == "" || outputQty <= 0 {
		return nil, fmt.Errorf("recipe %s: invalid output %q x%d", id, output, outputQty)
	}
	if experience < 0 {
		return nil, fmt.Errorf("recipe %s: experience reward cannot be negative", id)
	}

	return &RecipeDefinition{
		Station:      station,
		ID:           id,
		Inputs:       inputs,
		UnitDuration: unitDuration,
		Output:       output,
		OutputQty:    outputQty,
		Experience:   experience,
	}, nil
}

// InputsFor returns the total input cost for the given number of units.
// The returned map is a fresh copy, safe for the caller to hand to the
// inventory service.
func (r *RecipeDefinition) InputsFor(units int) map[ItemID]int {
	scaled := make(map[ItemID]int, len(r.Inputs))
	for item, qty := range r.Inputs {
		scaled[item] = qty * units
	}
	return scaled
}

// OutputFor returns the output credit for the given number of units
func (r *RecipeDefinition) OutputFor(units int) map[ItemID]int {
	return map[ItemID]int{r.Output: r.OutputQty * units}
}

func (r *RecipeDefinition) String() string {
	return fmt.Sprintf("Recipe[%s/%s -> %dx%s, %s/unit]",
		r.Station, r.ID, r.OutputQty, r.Output, r.UnitDuration)
}

type recipeKey struct {
	station StationKind
	id      RecipeID
}

// RecipeTable is the read-only lookup of recipe definitions keyed by
// (station, recipe id). It supplies unit durations, input costs, outputs and
// experience rewards to both the scheduler and the reconciler.
type RecipeTable struct {
	recipes map[recipeKey]*RecipeDefinition
}

// NewRecipeTable builds a table from definitions, rejecting duplicates
func NewRecipeTable(defs ...*RecipeDefinition) (*RecipeTable, error) {
	recipes := make(map[recipeKey]*RecipeDefinition, len(defs))
	for _, def := range defs {
		key := recipeKey{station: def.Station, id: def.ID}
		if _, exists := recipes[key]; exists {
			return nil, fmt.Errorf("duplicate recipe %s at station %s", def.ID, def.Station)
		}
		recipes[key] = def
	}
	return &RecipeTable{recipes: recipes}, nil
}

// Lookup finds the recipe for (station, id)
func (t *RecipeTable) Lookup(station StationKind, id RecipeID) (*RecipeDefinition, error) {
	def, ok := t.recipes[recipeKey{station: station, id: id}]
	if !ok {
		return nil, &ErrUnknownRecipe{Station: station, RecipeID: id}
	}
	return def, nil
}

// ForStation returns all recipes of one station, sorted by id
func (t *RecipeTable) ForStation(station StationKind) []*RecipeDefinition {
	var defs []*RecipeDefinition
	for key, def := range t.recipes {
		if key.station == station {
			defs = append(defs, def)
		}
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

// Len returns the number of recipes in the table
func (t *RecipeTable) Len() int {
	return len(t.recipes)
}
