// Package snapshot reads and writes the transportable recipe snapshot
// format and loads it into the catalog database.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/arcaneering/planner-server/internal/planner/catalog"
	"github.com/arcaneering/planner-server/pkg/planner"
)

// Importer loads snapshot files into the catalog database.
type Importer struct {
	db       *catalog.DB
	validate *validator.Validate
}

// NewImporter creates a new Importer.
func NewImporter(db *catalog.DB) *Importer {
	return &Importer{
		db:       db,
		validate: validator.New(),
	}
}

// Snapshot is the on-disk snapshot format. Recipe inputs and outputs are
// JSON objects (resource -> quantity); the enum maps carried by older
// snapshots are tolerated but unused.
type Snapshot struct {
	Timestamp       string                    `json:"timestamp"`
	Recipes         map[string]RecipeSnapshot `json:"recipes" validate:"required,dive"`
	DisplayNameMap  map[string]string         `json:"display_name_map,omitempty"`
	ResourceEnumMap map[string]string         `json:"resource_enum_map,omitempty"`
	BuildingEnumMap map[string]string         `json:"building_enum_map,omitempty"`
}

// RecipeSnapshot is one recipe entry in the snapshot.
type RecipeSnapshot struct {
	ID                string         `json:"id" validate:"required"`
	DisplayName       string         `json:"display_name"`
	Inputs            map[string]int `json:"inputs"`
	Outputs           map[string]int `json:"outputs" validate:"required,min=1"`
	ProductionTime    float64        `json:"production_time" validate:"gt=0"`
	BuildingType      string         `json:"building_type"`
	RequiredResearch  string         `json:"required_research"`
	EnergyConsumption int            `json:"energy_consumption"`
	ManaConsumption   float64        `json:"mana_consumption"`
	Phase             int            `json:"phase" validate:"gte=1"`
	AlternateRecipe   bool           `json:"alternate_recipe"`
}

// ImportFromFile imports a snapshot file into the database, replacing the
// stored catalog wholesale.
func (imp *Importer) ImportFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading snapshot file: %w", err)
	}
	return imp.Import(ctx, data)
}

// Import parses, validates, and stores a snapshot.
func (imp *Importer) Import(ctx context.Context, data []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parsing snapshot JSON: %w", err)
	}

	recipes, err := imp.transform(&snap)
	if err != nil {
		return err
	}

	store := catalog.NewRecipeStore(imp.db)
	if err := store.ReplaceAllRecipes(ctx, recipes); err != nil {
		return fmt.Errorf("storing recipes: %w", err)
	}
	if err := store.ReplaceDisplayNames(ctx, snap.DisplayNameMap); err != nil {
		return fmt.Errorf("storing display names: %w", err)
	}

	if err := imp.db.SetMetadata(ctx, "snapshot_timestamp", snap.Timestamp); err != nil {
		return err
	}
	if err := imp.db.SetMetadata(ctx, "recipes_last_import", time.Now().Format(time.RFC3339)); err != nil {
		return err
	}
	if err := imp.db.SetMetadata(ctx, "recipes_count", fmt.Sprintf("%d", len(recipes))); err != nil {
		return err
	}

	return nil
}

// transform validates snapshot entries and converts them into catalog
// recipes. JSON objects carry no order, so recipes are ordered by ID and
// stacks by resource; the ordering is arbitrary but stable, which is what
// selection tie-breaking needs.
func (imp *Importer) transform(snap *Snapshot) ([]planner.Recipe, error) {
	if len(snap.Recipes) == 0 {
		return nil, fmt.Errorf("snapshot contains no recipes")
	}

	ids := make([]string, 0, len(snap.Recipes))
	for id := range snap.Recipes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	recipes := make([]planner.Recipe, 0, len(ids))
	for _, id := range ids {
		rs := snap.Recipes[id]
		if rs.ID == "" {
			rs.ID = id
		}
		if rs.Phase == 0 {
			rs.Phase = 1
		}

		if err := imp.validate.Struct(rs); err != nil {
			return nil, fmt.Errorf("invalid recipe %s: %w", id, err)
		}
		for resource := range rs.Inputs {
			if resource == planner.PlaceholderResource {
				continue
			}
			if _, both := rs.Outputs[resource]; both {
				return nil, fmt.Errorf("invalid recipe %s: %s is both input and output", id, resource)
			}
		}

		recipe := planner.Recipe{
			ID:                rs.ID,
			DisplayName:       rs.DisplayName,
			Inputs:            stacksFromMap(rs.Inputs),
			Outputs:           stacksFromMap(rs.Outputs),
			ProductionTime:    rs.ProductionTime,
			BuildingType:      rs.BuildingType,
			RequiredResearch:  rs.RequiredResearch,
			EnergyConsumption: rs.EnergyConsumption,
			ManaConsumption:   rs.ManaConsumption,
			Phase:             rs.Phase,
			AlternateRecipe:   rs.AlternateRecipe,
		}
		if recipe.DisplayName == "" {
			recipe.DisplayName = rs.ID
		}
		recipes = append(recipes, recipe)
	}

	return recipes, nil
}

func stacksFromMap(m map[string]int) []planner.Stack {
	resources := make([]string, 0, len(m))
	for resource := range m {
		resources = append(resources, resource)
	}
	sort.Strings(resources)

	stacks := make([]planner.Stack, 0, len(resources))
	for _, resource := range resources {
		stacks = append(stacks, planner.Stack{Resource: resource, Quantity: m[resource]})
	}
	return stacks
}

// Export writes the current stored catalog back out in snapshot form.
func Export(ctx context.Context, db *catalog.DB, path string) error {
	cat, err := catalog.Load(ctx, db)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	snap := Snapshot{
		Timestamp:      time.Now().Format(time.RFC3339),
		Recipes:        make(map[string]RecipeSnapshot, cat.Len()),
		DisplayNameMap: cat.DisplayNames(),
	}
	for _, r := range cat.Recipes() {
		snap.Recipes[r.ID] = RecipeSnapshot{
			ID:                r.ID,
			DisplayName:       r.DisplayName,
			Inputs:            mapFromStacks(r.Inputs),
			Outputs:           mapFromStacks(r.Outputs),
			ProductionTime:    r.ProductionTime,
			BuildingType:      r.BuildingType,
			RequiredResearch:  r.RequiredResearch,
			EnergyConsumption: r.EnergyConsumption,
			ManaConsumption:   r.ManaConsumption,
			Phase:             r.Phase,
			AlternateRecipe:   r.AlternateRecipe,
		}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot file: %w", err)
	}

	return nil
}

func mapFromStacks(stacks []planner.Stack) map[string]int {
	m := make(map[string]int, len(stacks))
	for _, st := range stacks {
		m[st.Resource] = st.Quantity
	}
	return m
}
