package catalog

import (
	"context"
	"fmt"

	"github.com/arcaneering/planner-server/pkg/planner"
)

// Catalog is an immutable, ordered recipe catalog. It is built once (from
// the store or an import) and never modified; a reload constructs a fresh
// Catalog and swaps it in wholesale.
type Catalog struct {
	recipes      []planner.Recipe
	byID         map[string]*planner.Recipe
	displayNames map[string]string
}

// New builds a Catalog from recipes in catalog order plus an optional
// display name table. The inputs are copied; callers may reuse them.
func New(recipes []planner.Recipe, displayNames map[string]string) *Catalog {
	c := &Catalog{
		recipes:      make([]planner.Recipe, len(recipes)),
		byID:         make(map[string]*planner.Recipe, len(recipes)),
		displayNames: make(map[string]string, len(displayNames)),
	}
	copy(c.recipes, recipes)
	for i := range c.recipes {
		c.byID[c.recipes[i].ID] = &c.recipes[i]
	}
	for k, v := range displayNames {
		c.displayNames[k] = v
	}
	return c
}

// Load reads the whole catalog from the database.
func Load(ctx context.Context, db *DB) (*Catalog, error) {
	store := NewRecipeStore(db)

	recipes, err := store.GetAllRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading recipes: %w", err)
	}

	names, err := store.GetDisplayNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading display names: %w", err)
	}

	return New(recipes, names), nil
}

// Len returns the number of recipes in the catalog.
func (c *Catalog) Len() int {
	return len(c.recipes)
}

// Recipes returns the recipes in catalog order. Callers must not modify
// the returned slice.
func (c *Catalog) Recipes() []planner.Recipe {
	return c.recipes
}

// Recipe returns the recipe with the given ID, or nil.
func (c *Catalog) Recipe(id string) *planner.Recipe {
	return c.byID[id]
}

// DisplayName returns the display name for a resource and whether one is
// registered.
func (c *Catalog) DisplayName(resource string) (string, bool) {
	name, ok := c.displayNames[resource]
	return name, ok
}

// DisplayNames returns the display name table. Callers must not modify it.
func (c *Catalog) DisplayNames() map[string]string {
	return c.displayNames
}
