// Package engine implements the production chain resolution core: recipe
// selection under phase and alternate constraints, recursive chain
// construction, and aggregation of per-node results into chain totals.
package engine

import (
	"errors"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/arcaneering/planner-server/internal/planner/catalog"
	"github.com/arcaneering/planner-server/pkg/planner"
)

// baseResources is the closed set of resources with no recipe. They are
// supplied directly by extraction at a cost of 1 unit-equivalent per unit.
var baseResources = map[string]struct{}{
	"ORE":            {},
	"MAGIC_ESSENCE":  {},
	"SUNDROP":        {},
	"GOLD_ORE":       {},
	"ARCANE_CRYSTAL": {},
	"COAL":           {},
	"CINDER":         {},
	"WATER":          {},
	"OIL":            {},
	"LIMESTONE":      {},
	"COPPER_ORE":     {},
	"TIN_ORE":        {},
	"SLAG":           {},
	"SILVER_ORE":     {},
	"CRYSTAL_ORE":    {},
	"ADAMANTINE_ORE": {},
	"VOIDSTONE_ORE":  {},
}

// IsBaseResource reports whether the resource is supplied by extraction
// rather than produced by a recipe.
func IsBaseResource(resource string) bool {
	_, ok := baseResources[resource]
	return ok
}

// Engine resolves production chains against one immutable catalog.
// It holds no mutable state after construction, so a single Engine is safe
// for concurrent queries; replacing the catalog means building a new Engine
// and swapping it through a Holder.
type Engine struct {
	catalog  *catalog.Catalog
	byOutput map[string][]*planner.Recipe
}

// ErrEmptyCatalog is returned when constructing an engine over a catalog
// with no recipes.
var ErrEmptyCatalog = errors.New("catalog contains no recipes")

// New indexes the catalog's recipes by output resource, in catalog order.
func New(cat *catalog.Catalog) (*Engine, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, ErrEmptyCatalog
	}

	e := &Engine{
		catalog:  cat,
		byOutput: make(map[string][]*planner.Recipe),
	}
	recipes := cat.Recipes()
	for i := range recipes {
		for _, out := range recipes[i].Outputs {
			e.byOutput[out.Resource] = append(e.byOutput[out.Resource], &recipes[i])
		}
	}

	return e, nil
}

// Catalog returns the catalog this engine resolves against.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Recipe returns the recipe with the given ID, or nil.
func (e *Engine) Recipe(id string) *planner.Recipe {
	return e.catalog.Recipe(id)
}

// DisplayName returns the human label for a resource, falling back to a
// title-cased transform of the identifier when none is registered.
func (e *Engine) DisplayName(resource string) string {
	if name, ok := e.catalog.DisplayName(resource); ok {
		return name
	}
	return titleCaseIdentifier(resource)
}

// titleCaseIdentifier turns an identifier like "IRON_INGOT" into "Iron Ingot".
func titleCaseIdentifier(id string) string {
	words := strings.ReplaceAll(strings.ToLower(id), "_", " ")
	return cases.Title(language.English).String(words)
}

// ResourceList returns the sorted distinct resources appearing as any
// recipe's output.
func (e *Engine) ResourceList() []string {
	resources := make([]string, 0, len(e.byOutput))
	for resource := range e.byOutput {
		resources = append(resources, resource)
	}
	sort.Strings(resources)
	return resources
}

// CraftableResources returns producible resources with display names,
// excluding the placeholder and base resources. Used by selection UIs.
func (e *Engine) CraftableResources() []planner.ResourceInfo {
	var infos []planner.ResourceInfo
	for _, resource := range e.ResourceList() {
		if resource == planner.PlaceholderResource || IsBaseResource(resource) {
			continue
		}
		infos = append(infos, planner.ResourceInfo{
			ID:          resource,
			DisplayName: e.DisplayName(resource),
		})
	}
	return infos
}

// AlternateRecipes returns every alternate recipe in the catalog with phase
// at or below maxPhase, sorted by display name. A maxPhase below 1 disables
// the phase filter.
func (e *Engine) AlternateRecipes(maxPhase int) []planner.AlternateInfo {
	var alternates []planner.AlternateInfo
	for _, r := range e.catalog.Recipes() {
		if !r.AlternateRecipe {
			continue
		}
		if maxPhase >= 1 && r.Phase > maxPhase {
			continue
		}
		alternates = append(alternates, planner.AlternateInfo{
			ID:          r.ID,
			DisplayName: r.DisplayName,
			Building:    r.BuildingType,
		})
	}
	sort.Slice(alternates, func(i, j int) bool {
		return alternates[i].DisplayName < alternates[j].DisplayName
	})
	return alternates
}
